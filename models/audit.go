package models

import (
	"time"

	"gorm.io/gorm"
)

type AuditEvent struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	Details string    `json:"details"`
	Actor   string    `json:"actor"`
}

// AuditRecord is the archived form of an AuditEvent. Event ids restart
// when the ledger is reset, so EventID is not unique across the archive.
type AuditRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	EventID   string         `gorm:"index;size:32;not null" json:"event_id"`
	Time      time.Time      `gorm:"index;not null" json:"time"`
	Event     string         `gorm:"size:64;index;not null" json:"event"`
	Details   string         `gorm:"type:text" json:"details"`
	Actor     string         `gorm:"size:56;index" json:"actor"`
}

// TableName overrides the table name
func (AuditRecord) TableName() string {
	return "audit_events"
}

// ToEvent converts the archived row back to its ledger form.
func (r AuditRecord) ToEvent() AuditEvent {
	return AuditEvent{ID: r.EventID, Time: r.Time, Event: r.Event, Details: r.Details, Actor: r.Actor}
}
