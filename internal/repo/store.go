// Package repo implements the persistence layer for download requests.
//
// The whole collection is small (one record per visitor email), so every
// store exposes the same coarse contract: read everything, write everything,
// or run a read-modify-write cycle atomically.
//
// Implementations:
//   - JSONFileStore: a single pretty-printed JSON array on disk (default).
//   - GormStore:     SQLite or PostgreSQL via GORM.
//   - MemoryStore:   process-local slice, used by tests and the "memory" driver.
//
// Error semantics:
//   - Load on a store with no backing data yet returns an empty slice and nil.
//   - Update writes nothing when the load fails or fn returns an error; the
//     error is returned unchanged (wrapped for load/save failures).
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/resume-gate/internal/config"
	"github.com/tbourn/resume-gate/internal/domain"
)

// RequestStore persists the ordered collection of download requests.
type RequestStore interface {
	// Load returns all requests in insertion order.
	Load(ctx context.Context) ([]domain.DownloadRequest, error)

	// Save replaces the stored collection with reqs.
	Save(ctx context.Context, reqs []domain.DownloadRequest) error

	// Update loads the collection, passes it to fn and saves fn's result,
	// holding the store lock for the whole cycle.
	Update(ctx context.Context, fn func([]domain.DownloadRequest) ([]domain.DownloadRequest, error)) error
}

// ErrUnknownDriver is returned by Open for an unsupported STORE_DRIVER.
var ErrUnknownDriver = errors.New("unknown store driver")

// Open builds the RequestStore selected by cfg.Store.Driver. The returned
// close function releases database handles and is safe to call once.
func Open(cfg config.Config) (RequestStore, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Store.Driver) {
	case "json", "":
		return NewJSONFileStore(cfg.Store.RequestsFile), noop, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	case "sqlite", "postgres":
		open := OpenSQLite
		target := cfg.Store.DBPath
		if strings.EqualFold(cfg.Store.Driver, "postgres") {
			open = OpenPostgres
			target = cfg.Store.DatabaseURL
		}
		db, err := open(target)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
		}
		if cfg.OTEL.Enabled {
			if err := EnableTracing(db); err != nil {
				return nil, nil, fmt.Errorf("gorm tracing: %w", err)
			}
		}
		if err := AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		closeFn := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return NewGormStore(db), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Store.Driver)
	}
}

// clone returns a deep copy so callers never share RespondedAt pointers
// with a store's internal state.
func clone(in []domain.DownloadRequest) []domain.DownloadRequest {
	out := make([]domain.DownloadRequest, len(in))
	for i, r := range in {
		if r.RespondedAt != nil {
			at := *r.RespondedAt
			r.RespondedAt = &at
		}
		out[i] = r
	}
	return out
}
