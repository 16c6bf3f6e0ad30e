package repo

import (
	"context"
	"sync"

	"github.com/tbourn/resume-gate/internal/domain"
)

// MemoryStore keeps requests in process memory. Slices are copied on the way
// in and out so callers cannot mutate stored records in place.
type MemoryStore struct {
	mu   sync.Mutex
	reqs []domain.DownloadRequest

	// Fail hooks let tests simulate broken backends.
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns an empty store, optionally seeded with reqs.
func NewMemoryStore(seed ...domain.DownloadRequest) *MemoryStore {
	return &MemoryStore{reqs: clone(seed)}
}

// Load returns a copy of all requests.
func (s *MemoryStore) Load(ctx context.Context) ([]domain.DownloadRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return clone(s.reqs), ctx.Err()
}

// Save replaces the stored requests with a copy of reqs.
func (s *MemoryStore) Save(ctx context.Context, reqs []domain.DownloadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.reqs = clone(reqs)
	return nil
}

// Update runs fn against a copy and stores the result.
func (s *MemoryStore) Update(ctx context.Context, fn func([]domain.DownloadRequest) ([]domain.DownloadRequest, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return s.LoadErr
	}
	next, err := fn(clone(s.reqs))
	if err != nil {
		return err
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.reqs = clone(next)
	return nil
}
