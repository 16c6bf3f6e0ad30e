package repo

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/resume-gate/internal/domain"
)

// GormStore persists requests in the download_requests table. Save and
// Update replace the table contents inside a single transaction, mirroring
// the whole-document semantics of JSONFileStore.
type GormStore struct {
	DB *gorm.DB
	mu sync.Mutex
}

// requestRow is the table shape: a request plus its position in the saved
// collection. Load follows Seq so rows come back in insertion order.
type requestRow struct {
	domain.DownloadRequest
	Seq int64 `gorm:"not null;default:0;index:idx_request_seq"`
}

func (requestRow) TableName() string { return "download_requests" }

// NewGormStore wraps an opened and migrated database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Load returns all requests in the order they were saved. Rows written
// before the seq column existed share seq 0 and fall back to creation
// time, then id.
func (s *GormStore) Load(ctx context.Context) ([]domain.DownloadRequest, error) {
	return loadAll(s.DB.WithContext(ctx))
}

// Save replaces all rows with reqs.
func (s *GormStore) Save(ctx context.Context, reqs []domain.DownloadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceAll(tx, reqs)
	})
}

// Update runs a read-modify-write cycle in one transaction. The in-process
// mutex keeps SQLite from failing concurrent writers with SQLITE_BUSY.
func (s *GormStore) Update(ctx context.Context, fn func([]domain.DownloadRequest) ([]domain.DownloadRequest, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := loadAll(tx)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		return replaceAll(tx, next)
	})
}

func loadAll(db *gorm.DB) ([]domain.DownloadRequest, error) {
	var rows []requestRow
	err := db.Order("seq asc").Order("requested_at asc").Order("id asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.DownloadRequest, len(rows))
	for i := range rows {
		out[i] = rows[i].DownloadRequest
	}
	return out, nil
}

func replaceAll(tx *gorm.DB, reqs []domain.DownloadRequest) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&requestRow{}).Error; err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}
	rows := make([]requestRow, len(reqs))
	for i, r := range clone(reqs) {
		rows[i] = requestRow{DownloadRequest: r, Seq: int64(i + 1)}
	}
	return tx.CreateInBatches(&rows, 100).Error
}
