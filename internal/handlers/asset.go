package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/services"
	"github.com/cursolab/cursolab-backend/internal/types"
)

const maxUploadBytes = 64 << 20

type AssetHandler struct {
	log      *logger.Logger
	sessions *services.SessionManager
	blobs    *blobs.Store
	art      services.MascotArtService
}

func NewAssetHandler(log *logger.Logger, sessions *services.SessionManager, store *blobs.Store, art services.MascotArtService) *AssetHandler {
	return &AssetHandler{
		log:      log.With("handler", "AssetHandler"),
		sessions: sessions,
		blobs:    store,
		art:      art,
	}
}

// UploadMedia attaches a multipart file as a course media asset.
func (h *AssetHandler) UploadMedia(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	kind := types.MediaKind(c.DefaultPostForm("kind", string(types.MediaImage)))
	name, mimeType, data, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	asset, err := session.AttachMedia(name, kind, mimeType, data)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "attach_failed", err)
		return
	}
	RespondOK(c, gin.H{"media": asset})
}

func (h *AssetHandler) RemoveMedia(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	if err := session.RemoveMedia(c.Param("mediaId")); err != nil {
		RespondError(c, http.StatusNotFound, "media_not_found", err)
		return
	}
	RespondOK(c, gin.H{"removed": true})
}

// UploadPose attaches mascot art for a pose tag, replacing any prior pose
// with the same tag.
func (h *AssetHandler) UploadPose(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	tag := types.PoseTag(c.Param("tag"))
	_, mimeType, data, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	pose, err := session.SetMascotPose(tag, mimeType, data)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "attach_failed", err)
		return
	}
	RespondOK(c, gin.H{"pose": pose})
}

// GenerateMascot fills in placeholder art for uncovered well-known poses.
func (h *AssetHandler) GenerateMascot(c *gin.Context) {
	if h.art == nil {
		RespondError(c, http.StatusServiceUnavailable, "mascot_art_unavailable", nil)
		return
	}
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	if err := session.EnsureDefaultMascot(c.Request.Context(), h.art); err != nil {
		RespondError(c, http.StatusInternalServerError, "generate_mascot_failed", err)
		return
	}
	RespondOK(c, gin.H{"mascot": session.Course().Mascot})
}

// ServeMediaContent streams a media asset's bytes for renderers. An asset
// whose content is absent or released is a 404: unavailable, not broken.
func (h *AssetHandler) ServeMediaContent(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	asset := session.Course().MediaByID(c.Param("mediaId"))
	if asset == nil {
		RespondError(c, http.StatusNotFound, "media_not_found", nil)
		return
	}
	h.serveContent(c, asset.Content)
}

// ServePoseContent streams the active pose art for a tag.
func (h *AssetHandler) ServePoseContent(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	pose := session.Course().PoseByTag(types.PoseTag(c.Param("tag")))
	if pose == nil {
		RespondError(c, http.StatusNotFound, "pose_not_found", nil)
		return
	}
	h.serveContent(c, pose.Content)
}

func (h *AssetHandler) serveContent(c *gin.Context, content types.Content) {
	var data []byte
	var mimeType string
	switch v := content.(type) {
	case types.PendingUpload:
		data, mimeType = v.Data, v.MimeType
	case types.ResolvedRef:
		var err error
		data, mimeType, err = h.blobs.Get(v.Handle)
		if err != nil {
			RespondError(c, http.StatusNotFound, "content_unavailable", err)
			return
		}
	default:
		RespondError(c, http.StatusNotFound, "content_unavailable", nil)
		return
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Data(http.StatusOK, mimeType, data)
}

func readUpload(c *gin.Context) (name, mimeType string, data []byte, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, err
	}
	if fh.Size > maxUploadBytes {
		return "", "", nil, io.ErrShortBuffer
	}
	f, err := fh.Open()
	if err != nil {
		return "", "", nil, err
	}
	defer f.Close()
	data, err = io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return "", "", nil, err
	}
	return fh.Filename, fh.Header.Get("Content-Type"), data, nil
}
