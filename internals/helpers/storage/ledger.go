package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingUpload marks an object that was uploaded but whose row is not written yet.
// A marker that outlives the reaper grace period points at a possible orphan.
type PendingUpload struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Bucket    string    `gorm:"type:varchar(64);not null" json:"bucket"`
	ObjectKey string    `gorm:"type:text;not null" json:"object_key"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (PendingUpload) TableName() string { return "pending_uploads" }

type Ledger interface {
	Begin(ctx context.Context, bucket, key string, at time.Time) (uuid.UUID, error)
	Forget(ctx context.Context, id uuid.UUID) error
	Stale(ctx context.Context, before time.Time, limit int) ([]PendingUpload, error)
}

/* ===================== gorm ===================== */

type GormLedger struct{ DB *gorm.DB }

func NewGormLedger(db *gorm.DB) *GormLedger { return &GormLedger{DB: db} }

func (l *GormLedger) Begin(ctx context.Context, bucket, key string, at time.Time) (uuid.UUID, error) {
	row := PendingUpload{ID: uuid.New(), Bucket: bucket, ObjectKey: NormalizeKey(key), CreatedAt: at.UTC()}
	if err := l.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

func (l *GormLedger) Forget(ctx context.Context, id uuid.UUID) error {
	return l.DB.WithContext(ctx).Where("id = ?", id).Delete(&PendingUpload{}).Error
}

func (l *GormLedger) Stale(ctx context.Context, before time.Time, limit int) ([]PendingUpload, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []PendingUpload
	err := l.DB.WithContext(ctx).
		Where("created_at < ?", before.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

/* ===================== memory ===================== */

type MemoryLedger struct {
	mu   sync.Mutex
	rows map[uuid.UUID]PendingUpload
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{rows: map[uuid.UUID]PendingUpload{}}
}

func (l *MemoryLedger) Begin(ctx context.Context, bucket, key string, at time.Time) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	l.rows[id] = PendingUpload{ID: id, Bucket: bucket, ObjectKey: NormalizeKey(key), CreatedAt: at.UTC()}
	return id, nil
}

func (l *MemoryLedger) Forget(ctx context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rows, id)
	return nil
}

func (l *MemoryLedger) Stale(ctx context.Context, before time.Time, limit int) ([]PendingUpload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PendingUpload, 0)
	for _, r := range l.rows {
		if r.CreatedAt.Before(before) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}
