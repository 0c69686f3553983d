package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/cache"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// EditorSession owns one open course: the in-memory state, the blob handles
// its assets reference, and the debounced cache writer. All mutations go
// through it so every edit schedules a cache write.
type EditorSession struct {
	log       *logger.Logger
	blobs     *blobs.Store
	scheduler *cache.WriteScheduler

	mu     sync.Mutex
	course *types.Course
}

func NewEditorSession(log *logger.Logger, course *types.Course, store *blobs.Store, scheduler *cache.WriteScheduler) *EditorSession {
	return &EditorSession{
		log:       log.With("service", "EditorSession", "course_id", course.ID),
		blobs:     store,
		scheduler: scheduler,
		course:    course,
	}
}

// NewCourse builds an empty course ready for editing.
func NewCourse(name string) *types.Course {
	return &types.Course{
		ID: uuid.NewString(),
		Settings: types.CourseSettings{
			Name:       name,
			MascotName: "Dino",
		},
	}
}

// Course returns a snapshot of the current course state. The copy is
// detached from the session, so callers can read and serialize it without
// holding the session lock.
func (s *EditorSession) Course() *types.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.course.Clone()
}

func (s *EditorSession) UpdateSettings(settings types.CourseSettings) {
	s.mu.Lock()
	s.course.Settings = settings
	s.mu.Unlock()
	s.touch()
}

func (s *EditorSession) AddModule(m *types.Module) error {
	if m == nil {
		return fmt.Errorf("module required")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.course.Modules = append(s.course.Modules, m)
	s.mu.Unlock()
	s.touch()
	return nil
}

func (s *EditorSession) UpdateModule(m *types.Module) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("module with id required")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.course.Modules {
		if existing != nil && existing.ID == m.ID {
			s.course.Modules[i] = m
			s.touchLocked()
			return nil
		}
	}
	return fmt.Errorf("module %s not found", m.ID)
}

func (s *EditorSession) RemoveModule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.course.Modules {
		if m != nil && m.ID == id {
			s.course.Modules = append(s.course.Modules[:i], s.course.Modules[i+1:]...)
			s.touchLocked()
			return nil
		}
	}
	return fmt.Errorf("module %s not found", id)
}

// MoveModule reorders a module to index. Indexes clamp to the valid range.
func (s *EditorSession) MoveModule(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := -1
	for i, m := range s.course.Modules {
		if m != nil && m.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("module %s not found", id)
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.course.Modules) {
		index = len(s.course.Modules) - 1
	}
	m := s.course.Modules[from]
	rest := append(s.course.Modules[:from], s.course.Modules[from+1:]...)
	s.course.Modules = append(rest[:index], append([]*types.Module{m}, rest[index:]...)...)
	s.touchLocked()
	return nil
}

// AttachMedia registers an uploaded file as a media asset. The canonical
// path is assigned here and never changes for the asset's life.
func (s *EditorSession) AttachMedia(name string, kind types.MediaKind, mimeType string, data []byte) (*types.MediaAsset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	switch kind {
	case types.MediaImage, types.MediaVideo, types.MediaAudio:
	default:
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}

	asset := &types.MediaAsset{
		ID:      uuid.NewString(),
		Name:    name,
		Kind:    kind,
		Content: types.PendingUpload{Data: data, MimeType: mimeType},
	}
	asset.Path = fmt.Sprintf("media/%s%s", asset.ID, uploadExt(name))

	s.mu.Lock()
	s.course.Media = append(s.course.Media, asset)
	s.mu.Unlock()
	s.touch()
	return asset, nil
}

func (s *EditorSession) RemoveMedia(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.course.Media {
		if a != nil && a.ID == id {
			s.releaseContentLocked(a.Content)
			s.course.Media = append(s.course.Media[:i], s.course.Media[i+1:]...)
			s.touchLocked()
			return nil
		}
	}
	return fmt.Errorf("media %s not found", id)
}

// SetMascotPose attaches pose art for a tag, replacing any prior pose with
// the same tag.
func (s *EditorSession) SetMascotPose(tag types.PoseTag, mimeType string, data []byte) (*types.MascotPose, error) {
	if tag == "" {
		return nil, fmt.Errorf("pose tag required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	pose := &types.MascotPose{
		Tag:     tag,
		Content: types.PendingUpload{Data: data, MimeType: mimeType},
	}

	s.mu.Lock()
	replaced := false
	for i, p := range s.course.Mascot {
		if p != nil && p.Tag == tag {
			s.releaseContentLocked(p.Content)
			s.course.Mascot[i] = pose
			replaced = true
			break
		}
	}
	if !replaced {
		s.course.Mascot = append(s.course.Mascot, pose)
	}
	s.mu.Unlock()
	s.touch()
	return pose, nil
}

// EnsureDefaultMascot fills in generated art for any well-known pose the
// creator has not covered yet.
func (s *EditorSession) EnsureDefaultMascot(ctx context.Context, art MascotArtService) error {
	if art == nil {
		return fmt.Errorf("mascot art service unavailable")
	}
	s.mu.Lock()
	name := s.course.Settings.MascotName
	missing := make([]types.PoseTag, 0, len(types.WellKnownPoses))
	for _, tag := range types.WellKnownPoses {
		if s.course.PoseByTag(tag) == nil {
			missing = append(missing, tag)
		}
	}
	s.mu.Unlock()

	for _, tag := range missing {
		img, err := art.RenderPose(ctx, name, tag)
		if err != nil {
			return fmt.Errorf("render default pose %s: %w", tag, err)
		}
		if _, err := s.SetMascotPose(tag, "image/png", img); err != nil {
			return err
		}
	}
	return nil
}

// AdoptCourse swaps in a freshly unpacked course, releasing handles held by
// the previous one.
func (s *EditorSession) AdoptCourse(course *types.Course) {
	s.mu.Lock()
	old := s.course
	s.course = course
	if old != nil {
		s.releaseCourseLocked(old)
	}
	s.mu.Unlock()
	s.touch()
}

// Close flushes pending cache writes and releases every blob handle the
// course still references.
func (s *EditorSession) Close(ctx context.Context) error {
	s.mu.Lock()
	s.releaseCourseLocked(s.course)
	s.mu.Unlock()
	return s.scheduler.Close(ctx)
}

func (s *EditorSession) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
}

func (s *EditorSession) touchLocked() {
	// Snapshot under the session lock; the scheduler marshals on its own
	// goroutine after the window elapses, long after this lock is gone.
	s.scheduler.Schedule(s.course.Clone())
}

func (s *EditorSession) releaseCourseLocked(course *types.Course) {
	for _, a := range course.Media {
		if a != nil {
			s.releaseContentLocked(a.Content)
		}
	}
	for _, p := range course.Mascot {
		if p != nil {
			s.releaseContentLocked(p.Content)
		}
	}
}

func (s *EditorSession) releaseContentLocked(content types.Content) {
	if ref, ok := content.(types.ResolvedRef); ok {
		s.blobs.Release(ref.Handle)
	}
}

func uploadExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ".bin"
	}
	return ext
}
