package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// diskStore writes each upload as <id>.bin with an <id>.json metadata file.
type diskStore struct {
	dir      string
	maxBytes int64
}

func newDiskStore(dir string, maxBytes int64) (*diskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &diskStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *diskStore) paths(id string) (data, meta string) {
	return filepath.Join(s.dir, id+".bin"), filepath.Join(s.dir, id+".json")
}

func (s *diskStore) Put(_ context.Context, u Upload) (File, error) {
	f, err := newFile(u, s.maxBytes)
	if err != nil {
		return File{}, err
	}

	dataPath, metaPath := s.paths(f.ID)
	if err := os.WriteFile(dataPath, f.Data, 0o640); err != nil {
		return File{}, fmt.Errorf("writing upload: %w", err)
	}
	meta := f.meta()
	b, err := json.Marshal(meta)
	if err != nil {
		return File{}, fmt.Errorf("encoding upload metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, b, 0o640); err != nil {
		_ = os.Remove(dataPath)
		return File{}, fmt.Errorf("writing upload metadata: %w", err)
	}
	return meta, nil
}

func (s *diskStore) Get(_ context.Context, id string) (*File, error) {
	// Ids are generated by Put; anything else cannot name a stored file and
	// must not be joined into a path.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	dataPath, metaPath := s.paths(id)
	b, err := os.ReadFile(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading upload metadata: %w", err)
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decoding upload metadata: %w", err)
	}
	f.Data, err = os.ReadFile(dataPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return &f, nil
}

func (s *diskStore) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	dataPath, metaPath := s.paths(id)
	for _, p := range []string{metaPath, dataPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing upload: %w", err)
		}
	}
	return nil
}

func (s *diskStore) Close() error { return nil }
