package filestore

import (
	"context"
	"slices"
	"sync"
)

// memoryStore keeps uploads in process memory.
type memoryStore struct {
	mu       sync.RWMutex
	files    map[string]*File
	maxBytes int64
}

func newMemoryStore(maxBytes int64) *memoryStore {
	return &memoryStore{files: make(map[string]*File), maxBytes: maxBytes}
}

func (s *memoryStore) Put(_ context.Context, u Upload) (File, error) {
	f, err := newFile(u, s.maxBytes)
	if err != nil {
		return File{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f
	return f.meta(), nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *f
	out.Data = slices.Clone(f.Data)
	return &out, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*File)
	return nil
}
