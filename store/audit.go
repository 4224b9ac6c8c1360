// Package store archives the ledger's audit trail in a relational database.
package store

import (
	"context"
	"fmt"

	"github.com/yourusername/insure-dao/models"
	"gorm.io/gorm"
)

const DefaultRecentLimit = 100

type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Migrate creates or updates the archive table.
func (s *AuditStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.AuditRecord{}); err != nil {
		return fmt.Errorf("failed to migrate audit archive: %w", err)
	}
	return nil
}

// Append archives e. It satisfies ledger.AuditSink.
func (s *AuditStore) Append(ctx context.Context, e models.AuditEvent) error {
	rec := models.AuditRecord{
		EventID: e.ID,
		Time:    e.Time,
		Event:   e.Event,
		Details: e.Details,
		Actor:   e.Actor,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to archive audit event %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit archived events, newest first, optionally
// restricted to one actor.
func (s *AuditStore) Recent(ctx context.Context, actor string, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}
	q := s.db.WithContext(ctx).Model(&models.AuditRecord{})
	if actor != "" {
		q = q.Where("actor = ?", actor)
	}

	var records []models.AuditRecord
	if err := q.Order("time desc").Order("id desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit archive: %w", err)
	}

	events := make([]models.AuditEvent, 0, len(records))
	for _, r := range records {
		events = append(events, r.ToEvent())
	}
	return events, nil
}

// Count reports how many events have been archived.
func (s *AuditStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.AuditRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count audit archive: %w", err)
	}
	return n, nil
}
