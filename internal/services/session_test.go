package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/cache"
	"github.com/cursolab/cursolab-backend/internal/types"
)

type fakeCache struct {
	mu   sync.Mutex
	puts int
	last *types.Course
}

func (c *fakeCache) Put(ctx context.Context, course *types.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.last = course
	return nil
}

func (c *fakeCache) Get(ctx context.Context, id string) (*types.Course, error) {
	return nil, nil
}

func (c *fakeCache) lastWrite() *types.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func newTestSession(t testing.TB) (*EditorSession, *blobs.Store) {
	t.Helper()
	log := testLogger(t)
	store := blobs.NewStore(log)
	scheduler := cache.NewWriteScheduler(log, &fakeCache{}, time.Hour)
	return NewEditorSession(log, NewCourse("Test course"), store, scheduler), store
}

func TestAttachMediaAssignsStablePath(t *testing.T) {
	session, _ := newTestSession(t)
	asset, err := session.AttachMedia("photo.JPG", types.MediaImage, "image/jpeg", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("AttachMedia: %v", err)
	}
	if !strings.HasPrefix(asset.Path, "media/") || !strings.HasSuffix(asset.Path, ".jpg") {
		t.Errorf("unexpected path %q", asset.Path)
	}
	if _, ok := asset.Content.(types.PendingUpload); !ok {
		t.Errorf("fresh upload should be pending, got %T", asset.Content)
	}
	if session.Course().MediaByID(asset.ID) == nil {
		t.Error("asset not registered on course")
	}
}

func TestAttachMediaRejectsUnknownKind(t *testing.T) {
	session, _ := newTestSession(t)
	if _, err := session.AttachMedia("x.bin", types.MediaKind("hologram"), "", []byte{1}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSetMascotPoseReplacesSameTag(t *testing.T) {
	session, _ := newTestSession(t)
	if _, err := session.SetMascotPose(types.PoseHappy, "image/png", []byte{1}); err != nil {
		t.Fatalf("first pose: %v", err)
	}
	if _, err := session.SetMascotPose(types.PoseHappy, "image/png", []byte{2}); err != nil {
		t.Fatalf("second pose: %v", err)
	}
	course := session.Course()
	if len(course.Mascot) != 1 {
		t.Fatalf("expected one pose for the tag, got %d", len(course.Mascot))
	}
	pending, ok := course.Mascot[0].Content.(types.PendingUpload)
	if !ok || pending.Data[0] != 2 {
		t.Error("pose was not replaced by the newer upload")
	}
}

func TestSetMascotPoseAcceptsCustomTag(t *testing.T) {
	session, _ := newTestSession(t)
	pose, err := session.SetMascotPose(types.PoseTag("celebrating"), "image/png", []byte{1})
	if err != nil {
		t.Fatalf("SetMascotPose: %v", err)
	}
	if pose.Tag != types.PoseTag("celebrating") {
		t.Errorf("custom tag not kept: %q", pose.Tag)
	}
}

func TestModuleCRUDAndOrdering(t *testing.T) {
	session, _ := newTestSession(t)
	mods := []*types.Module{
		{Type: types.ModuleText, Title: "a", Text: &types.TextPayload{}},
		{Type: types.ModuleText, Title: "b", Text: &types.TextPayload{}},
		{Type: types.ModuleText, Title: "c", Text: &types.TextPayload{}},
	}
	for _, m := range mods {
		if err := session.AddModule(m); err != nil {
			t.Fatalf("AddModule: %v", err)
		}
		if m.ID == "" {
			t.Fatal("AddModule must assign an id")
		}
	}

	if err := session.MoveModule(mods[2].ID, 0); err != nil {
		t.Fatalf("MoveModule: %v", err)
	}
	course := session.Course()
	if course.Modules[0].Title != "c" || course.Modules[1].Title != "a" {
		t.Errorf("unexpected order after move: %s %s %s",
			course.Modules[0].Title, course.Modules[1].Title, course.Modules[2].Title)
	}

	if err := session.RemoveModule(mods[0].ID); err != nil {
		t.Fatalf("RemoveModule: %v", err)
	}
	if len(session.Course().Modules) != 2 {
		t.Errorf("expected 2 modules after removal")
	}
	if err := session.RemoveModule("nope"); err == nil {
		t.Error("expected error removing unknown module")
	}
}

func TestCloseReleasesHandles(t *testing.T) {
	session, store := newTestSession(t)
	h := store.Put([]byte("img"), "image/png")
	session.AdoptCourse(&types.Course{
		ID: "c-adopted",
		Media: []*types.MediaAsset{{
			ID: "a1", Path: "media/a1.png",
			Content: types.ResolvedRef{Handle: h},
		}},
	})

	if err := session.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := store.Get(h); err == nil {
		t.Error("handle survived session close")
	}
}

func TestCourseReturnsDetachedSnapshot(t *testing.T) {
	session, _ := newTestSession(t)
	if err := session.AddModule(&types.Module{Type: types.ModuleText, Title: "a", Text: &types.TextPayload{}}); err != nil {
		t.Fatalf("AddModule: %v", err)
	}

	snap := session.Course()
	if err := session.AddModule(&types.Module{Type: types.ModuleText, Title: "b", Text: &types.TextPayload{}}); err != nil {
		t.Fatalf("AddModule: %v", err)
	}

	if len(snap.Modules) != 1 {
		t.Errorf("snapshot gained modules after a later edit: %d", len(snap.Modules))
	}
	if len(session.Course().Modules) != 2 {
		t.Errorf("live course should have 2 modules")
	}
}

// Scheduled cache writes marshal on the timer goroutine; they must see a
// snapshot, never the course the session keeps mutating.
func TestScheduledWriteIsDetachedFromLiveCourse(t *testing.T) {
	log := testLogger(t)
	store := blobs.NewStore(log)
	rec := &fakeCache{}
	scheduler := cache.NewWriteScheduler(log, rec, time.Hour)
	session := NewEditorSession(log, NewCourse("Snap"), store, scheduler)

	m := &types.Module{Type: types.ModuleText, Title: "before", Text: &types.TextPayload{HTML: "<p/>"}}
	if err := session.AddModule(m); err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if err := scheduler.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	m.Title = "after"
	m.Text.HTML = "<div/>"

	written := rec.lastWrite()
	if written == nil || len(written.Modules) != 1 {
		t.Fatalf("expected one flushed module, got %+v", written)
	}
	if written.Modules[0].Title != "before" || written.Modules[0].Text.HTML != "<p/>" {
		t.Errorf("cache write observed a later edit: %+v", written.Modules[0])
	}
}
