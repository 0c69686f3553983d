package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cursolab/cursolab-backend/internal/blobs"
	"github.com/cursolab/cursolab-backend/internal/cache"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// SessionManager tracks the open editing sessions by course id. One session
// per course; opening an already-open course returns the existing session.
type SessionManager struct {
	log      *logger.Logger
	blobs    *blobs.Store
	cache    cache.CourseCache
	debounce time.Duration

	mu       sync.Mutex
	sessions map[string]*EditorSession
}

func NewSessionManager(log *logger.Logger, store *blobs.Store, courseCache cache.CourseCache, debounce time.Duration) *SessionManager {
	return &SessionManager{
		log:      log.With("service", "SessionManager"),
		blobs:    store,
		cache:    courseCache,
		debounce: debounce,
		sessions: make(map[string]*EditorSession),
	}
}

// Open registers a session for the course, creating the per-session write
// scheduler. An existing session for the same course is returned unchanged.
func (m *SessionManager) Open(course *types.Course) *EditorSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[course.ID]; ok {
		return existing
	}
	scheduler := cache.NewWriteScheduler(m.log, m.cache, m.debounce)
	session := NewEditorSession(m.log, course, m.blobs, scheduler)
	m.sessions[course.ID] = session
	return session
}

func (m *SessionManager) Get(courseID string) (*EditorSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[courseID]
	if !ok {
		return nil, fmt.Errorf("no open session for course %s", courseID)
	}
	return session, nil
}

// Close tears down the session for a course; safe to call for unknown ids.
func (m *SessionManager) Close(ctx context.Context, courseID string) error {
	m.mu.Lock()
	session, ok := m.sessions[courseID]
	delete(m.sessions, courseID)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return session.Close(ctx)
}

// CloseAll tears down every open session, flushing pending cache writes.
func (m *SessionManager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*EditorSession)
	m.mu.Unlock()
	for id, session := range sessions {
		if err := session.Close(ctx); err != nil {
			m.log.Warn("session close failed", "course_id", id, "error", err)
		}
	}
}
