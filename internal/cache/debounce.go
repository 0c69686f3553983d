package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// WriteScheduler coalesces rapid successive cache writes into one. It is
// owned by an editing session and torn down with it; the debounce window is
// an accepted staleness bound, since the in-memory course stays
// authoritative until the next load.
type WriteScheduler struct {
	log    *logger.Logger
	cache  CourseCache
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *types.Course
	closed  bool
}

func NewWriteScheduler(log *logger.Logger, cache CourseCache, window time.Duration) *WriteScheduler {
	if window <= 0 {
		window = 1500 * time.Millisecond
	}
	return &WriteScheduler{
		log:    log.With("service", "CacheWriteScheduler"),
		cache:  cache,
		window: window,
	}
}

// Schedule records the latest course state and (re)arms the write timer.
// Only the most recent state is written when the window elapses. The course
// must be a detached snapshot: the write runs on the timer goroutine, well
// after the caller's locks are released.
func (s *WriteScheduler) Schedule(course *types.Course) {
	if course == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = course
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, s.fire)
}

func (s *WriteScheduler) fire() {
	s.mu.Lock()
	course := s.pending
	s.pending = nil
	s.mu.Unlock()
	if course == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.cache.Put(ctx, course); err != nil {
		s.log.Warn("debounced cache write failed", "course_id", course.ID, "error", err)
	}
}

// Flush writes any pending state immediately.
func (s *WriteScheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	course := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if course == nil {
		return nil
	}
	return s.cache.Put(ctx, course)
}

// Close flushes and stops the scheduler; further Schedule calls are no-ops.
func (s *WriteScheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}
