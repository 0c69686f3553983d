package blobs

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
)

// Handle is a session-local reference to binary content. Handles are only
// valid against the Store that issued them and die with it.
type Handle string

// ErrUnknownHandle is returned when a handle was never issued by this store
// or has already been released.
var ErrUnknownHandle = fmt.Errorf("blobs: unknown or released handle")

type entry struct {
	data     []byte
	mimeType string
}

// Store keeps uploaded and unpacked binary content in memory for the lifetime
// of an editing/playback session. The owning session must call ReleaseAll when
// the course is discarded; nothing here expires on its own.
type Store struct {
	log *logger.Logger

	mu      sync.RWMutex
	entries map[Handle]entry
}

func NewStore(log *logger.Logger) *Store {
	return &Store{
		log:     log.With("service", "BlobStore"),
		entries: make(map[Handle]entry),
	}
}

func (s *Store) Put(data []byte, mimeType string) Handle {
	h := Handle("blob:" + uuid.NewString())
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.entries[h] = entry{data: cp, mimeType: mimeType}
	s.mu.Unlock()
	return h
}

func (s *Store) Get(h Handle) ([]byte, string, error) {
	s.mu.RLock()
	e, ok := s.entries[h]
	s.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return e.data, e.mimeType, nil
}

func (s *Store) Release(h Handle) {
	s.mu.Lock()
	delete(s.entries, h)
	s.mu.Unlock()
}

func (s *Store) ReleaseAll() {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[Handle]entry)
	s.mu.Unlock()
	if n > 0 {
		s.log.Debug("released session blobs", "count", n)
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
