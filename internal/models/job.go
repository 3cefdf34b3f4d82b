package models

import (
	"time"
)

// TriggerKind represents what initiated a backup job
type TriggerKind string

const (
	TriggerScheduled TriggerKind = "scheduled" // emitted by the scheduler
	TriggerManual    TriggerKind = "manual"    // externally requested
)

// BackupJob is one unit of work placed on the queue. The row is written at
// enqueue time as a record of emission; the same struct is serialized as the
// queue message. The id is generated exactly once, at enqueue time, and is
// the idempotency key across redeliveries.
type BackupJob struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"-"`

	DatabaseID   string      `gorm:"index:idx_jobs_db_tier;size:36;not null" json:"database_id"`
	Tier         TierKind    `gorm:"index:idx_jobs_db_tier;size:20;not null" json:"tier"`
	Trigger      TriggerKind `gorm:"size:20;not null" json:"trigger"`
	ScheduledFor time.Time   `gorm:"not null" json:"scheduled_for"`
	EnqueuedAt   time.Time   `gorm:"not null" json:"enqueued_at"`
}

// TableName specifies the table name
func (BackupJob) TableName() string {
	return "backup_jobs"
}
