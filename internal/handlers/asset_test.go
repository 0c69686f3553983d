package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/services"
	"github.com/cursolab/cursolab-backend/internal/types"
)

type stubCache struct{}

func (stubCache) Put(ctx context.Context, course *types.Course) error { return nil }

func (stubCache) Get(ctx context.Context, id string) (*types.Course, error) { return nil, nil }

func testLogger(t testing.TB) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newTestSessions(t testing.TB) (*services.SessionManager, *blobs.Store) {
	t.Helper()
	log := testLogger(t)
	store := blobs.NewStore(log)
	return services.NewSessionManager(log, store, stubCache{}, time.Hour), store
}

func getContext(t testing.TB, target string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Params = params
	return c, w
}

func TestServeMediaContentStreamsUploadedBytes(t *testing.T) {
	sessions, store := newTestSessions(t)
	course := services.NewCourse("Media")
	session := sessions.Open(course)
	payload := []byte{0x89, 0x50, 0x4E, 0x47}
	asset, err := session.AttachMedia("pic.png", types.MediaImage, "image/png", payload)
	if err != nil {
		t.Fatalf("AttachMedia: %v", err)
	}

	h := NewAssetHandler(testLogger(t), sessions, store, nil)
	c, w := getContext(t, "/content", gin.Params{
		{Key: "id", Value: course.ID},
		{Key: "mediaId", Value: asset.ID},
	})
	h.ServeMediaContent(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Error("served bytes differ from upload")
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
}

func TestServePoseContentFromResolvedHandle(t *testing.T) {
	sessions, store := newTestSessions(t)
	handle := store.Put([]byte("pose-bytes"), "image/png")
	course := services.NewCourse("Pose")
	course.Mascot = []*types.MascotPose{{
		Tag:     types.PoseHappy,
		Content: types.ResolvedRef{Handle: handle},
	}}
	sessions.Open(course)

	h := NewAssetHandler(testLogger(t), sessions, store, nil)
	c, w := getContext(t, "/content", gin.Params{
		{Key: "id", Value: course.ID},
		{Key: "tag", Value: string(types.PoseHappy)},
	})
	h.ServePoseContent(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "pose-bytes" {
		t.Error("served bytes differ from stored blob")
	}
}

func TestServeMediaContentUnknownAsset(t *testing.T) {
	sessions, store := newTestSessions(t)
	course := services.NewCourse("Empty")
	sessions.Open(course)

	h := NewAssetHandler(testLogger(t), sessions, store, nil)
	c, w := getContext(t, "/content", gin.Params{
		{Key: "id", Value: course.ID},
		{Key: "mediaId", Value: "nope"},
	})
	h.ServeMediaContent(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
