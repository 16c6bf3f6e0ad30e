package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tbourn/resume-gate/internal/domain"
)

// JSONFileStore keeps the collection as one JSON array (2-space indent) in a
// single file. Writes go to a temporary file in the same directory which is
// then renamed over the target, so readers never observe a partial document.
//
// The mutex serializes access within one process only; two processes sharing
// the file can still overwrite each other.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileStore returns a store backed by the file at path. The file is
// created on the first Save.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// Path returns the backing file path.
func (s *JSONFileStore) Path() string { return s.path }

// Load reads all requests. A missing or empty file yields an empty slice.
func (s *JSONFileStore) Load(ctx context.Context) ([]domain.DownloadRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the file contents with reqs.
func (s *JSONFileStore) Save(ctx context.Context, reqs []domain.DownloadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, reqs)
}

// Update runs a locked read-modify-write cycle.
func (s *JSONFileStore) Update(ctx context.Context, fn func([]domain.DownloadRequest) ([]domain.DownloadRequest, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return s.save(ctx, next)
}

func (s *JSONFileStore) load(ctx context.Context) ([]domain.DownloadRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.DownloadRequest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.DownloadRequest{}, nil
	}
	var out []domain.DownloadRequest
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if out == nil {
		out = []domain.DownloadRequest{}
	}
	return out, nil
}

func (s *JSONFileStore) save(ctx context.Context, reqs []domain.DownloadRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reqs == nil {
		reqs = []domain.DownloadRequest{}
	}
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode requests: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".requests-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
