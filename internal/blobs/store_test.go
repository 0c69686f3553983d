package blobs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
)

func newTestStore(t testing.TB) *Store {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewStore(log)
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	h := s.Put([]byte("hello"), "text/plain")
	data, mimeType, err := s.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data, []byte("hello")) || mimeType != "text/plain" {
		t.Errorf("got %q %q", data, mimeType)
	}
}

func TestPutCopiesInput(t *testing.T) {
	s := newTestStore(t)
	raw := []byte("mutable")
	h := s.Put(raw, "")
	raw[0] = 'X'
	data, _, err := s.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data, []byte("mutable")) {
		t.Errorf("stored data aliased the caller's slice: %q", data)
	}
}

func TestReleasedHandleIsGone(t *testing.T) {
	s := newTestStore(t)
	h := s.Put([]byte("x"), "")
	s.Release(h)
	if _, _, err := s.Get(h); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestReleaseAll(t *testing.T) {
	s := newTestStore(t)
	h1 := s.Put([]byte("1"), "")
	h2 := s.Put([]byte("2"), "")
	s.ReleaseAll()
	if s.Len() != 0 {
		t.Errorf("Len = %d after ReleaseAll", s.Len())
	}
	for _, h := range []Handle{h1, h2} {
		if _, _, err := s.Get(h); err == nil {
			t.Errorf("handle %s still resolves after ReleaseAll", h)
		}
	}
}

func TestHandlesAreUnique(t *testing.T) {
	s := newTestStore(t)
	if s.Put([]byte("a"), "") == s.Put([]byte("a"), "") {
		t.Error("two Puts returned the same handle")
	}
}
