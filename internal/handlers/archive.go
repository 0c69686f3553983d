package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab-backend/internal/packing"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/services"
)

type ArchiveHandler struct {
	log      *logger.Logger
	sessions *services.SessionManager
	packer   packing.Packer
	unpacker packing.Unpacker
}

func NewArchiveHandler(log *logger.Logger, sessions *services.SessionManager, packer packing.Packer, unpacker packing.Unpacker) *ArchiveHandler {
	return &ArchiveHandler{
		log:      log.With("handler", "ArchiveHandler"),
		sessions: sessions,
		packer:   packer,
		unpacker: unpacker,
	}
}

// Export packs the course (optionally a module subset, ?modules=m1,m2) and
// streams the archive as a download. Selecting modules but resolving none is
// the zero-module usage error and is rejected here, before the packer runs.
func (h *ArchiveHandler) Export(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}

	// A present-but-empty ?modules= is an explicit zero-module selection and
	// is rejected; only an absent parameter means "everything".
	var moduleIDs []string
	if raw, present := c.GetQuery("modules"); present {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				moduleIDs = append(moduleIDs, id)
			}
		}
		if len(moduleIDs) == 0 {
			RespondError(c, http.StatusBadRequest, "empty_module_selection",
				fmt.Errorf("export requires at least one module selected"))
			return
		}
	}

	course := session.Course()
	result, err := h.packer.Pack(c.Request.Context(), course, moduleIDs)
	if err != nil {
		h.log.Error("export failed", "course_id", course.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	for _, w := range result.Warnings {
		c.Writer.Header().Add("X-Cursolab-Warning", w)
	}
	filename := packing.MascotSlug(course.Settings.Name) + ".zip"
	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", result.Data)
}

// Import unpacks an uploaded archive and opens an editing session for it.
func (h *ArchiveHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}

	course, err := h.unpacker.Unpack(c.Request.Context(), data)
	if err != nil {
		h.log.Error("import failed", "error", err)
		RespondError(c, http.StatusUnprocessableEntity, "import_failed", err)
		return
	}
	session := h.sessions.Open(course)
	RespondOK(c, gin.H{"course": session.Course()})
}
