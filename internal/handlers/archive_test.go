package handlers

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"

	"github.com/cursolab/cursolab-backend/internal/packing"
	"github.com/cursolab/cursolab-backend/internal/services"
	"github.com/cursolab/cursolab-backend/internal/types"
)

func TestExportRejectsExplicitEmptySelection(t *testing.T) {
	sessions, _ := newTestSessions(t)
	course := services.NewCourse("Export")
	sessions.Open(course)

	// The packer must never run for a zero-module selection, so nil is safe.
	h := NewArchiveHandler(testLogger(t), sessions, nil, nil)

	for _, target := range []string{"/export?modules=", "/export?modules=,,"} {
		c, w := getContext(t, target, gin.Params{{Key: "id", Value: course.ID}})
		h.Export(c)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("empty_module_selection")) {
			t.Errorf("%s: unexpected body %s", target, w.Body.String())
		}
	}
}

func TestExportWithoutFilterPacksEverything(t *testing.T) {
	log := testLogger(t)
	sessions, store := newTestSessions(t)
	course := services.NewCourse("Full")
	session := sessions.Open(course)
	if err := session.AddModule(&types.Module{
		Type: types.ModuleText, Title: "intro", Text: &types.TextPayload{HTML: "<p/>"},
	}); err != nil {
		t.Fatalf("AddModule: %v", err)
	}

	packer := packing.NewPacker(log, services.NewAssetResolver(log, store), services.NewPoseNormalizer(log), 2)
	h := NewArchiveHandler(log, sessions, packer, nil)

	c, w := getContext(t, "/export", gin.Params{{Key: "id", Value: course.ID}})
	h.Export(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == packing.DocumentEntryName {
			found = true
		}
	}
	if !found {
		t.Errorf("archive missing %s", packing.DocumentEntryName)
	}
}
