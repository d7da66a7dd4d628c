package audit

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Sink persists audit rows.
type Sink interface {
	Write(ctx context.Context, entry models.AuditLog) error
}

// Filter narrows an audit listing. SalonID is always applied.
type Filter struct {
	SalonID uint
	Action  string
	Entity  string
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Limit
}

// Reader lists audit rows, newest first.
type Reader interface {
	List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error)
}

// ======================================================
// GORM
// ======================================================

type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Write(ctx context.Context, entry models.AuditLog) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *GormSink) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	q := s.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("salon_id = ?", f.SalonID)

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.offset()).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ======================================================
// MEMORY
// ======================================================

// MemorySink keeps audit rows in process for STORAGE=memory.
type MemorySink struct {
	mu     sync.Mutex
	nextID uint
	rows   []models.AuditLog
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, entry models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, entry)
	return nil
}

func (s *MemorySink) List(_ context.Context, f Filter) ([]models.AuditLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.AuditLog, 0)
	for _, r := range s.rows {
		switch {
		case r.SalonID != f.SalonID,
			f.Action != "" && r.Action != f.Action,
			f.Entity != "" && r.Entity != f.Entity,
			f.From != nil && r.CreatedAt.Before(*f.From),
			f.To != nil && !r.CreatedAt.Before(*f.To):
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	from := f.offset()
	if from >= len(matched) {
		return []models.AuditLog{}, total, nil
	}
	to := from + f.Limit
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], total, nil
}

// entryFor turns an event into a row. Metadata that cannot be encoded is dropped.
func entryFor(ev Event) models.AuditLog {
	var meta string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			meta = string(b)
		}
	}

	return models.AuditLog{
		SalonID:  ev.SalonID,
		ActorID:  ev.ActorID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Metadata: meta,
	}
}
