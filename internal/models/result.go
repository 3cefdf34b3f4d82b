package models

import (
	"time"
)

// BackupStatus represents the status of a backup attempt
type BackupStatus string

const (
	BackupStatusPending    BackupStatus = "pending"     // result created, work not started
	BackupStatusInProgress BackupStatus = "in_progress" // dump/upload running
	BackupStatusCompleted  BackupStatus = "completed"   // artifact stored
	BackupStatusFailed     BackupStatus = "failed"      // attempt failed, error captured
	BackupStatusCancelled  BackupStatus = "cancelled"   // attempt abandoned before execution
)

// Terminal reports whether the status is final. Transitions are monotonic;
// a terminal result is never revived.
func (s BackupStatus) Terminal() bool {
	return s == BackupStatusCompleted || s == BackupStatusFailed || s == BackupStatusCancelled
}

// BackupResult is the durable history record of one executed job attempt
type BackupResult struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	JobID      string   `gorm:"index;size:36;not null" json:"job_id"`
	DatabaseID string   `gorm:"index:idx_results_db_tier;size:36;not null" json:"database_id"`
	Tier       TierKind `gorm:"index:idx_results_db_tier;size:20;not null" json:"tier"`
	Trigger    TriggerKind `gorm:"size:20;not null" json:"trigger"`

	Status      BackupStatus `gorm:"size:20;not null;index" json:"status"`
	StartedAt   time.Time    `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`

	// Artifact metadata (set on completion)
	SizeBytes int64  `json:"size_bytes"`
	Location  string `gorm:"size:1024" json:"location,omitempty"`

	// Set on failure
	ErrorMessage string `gorm:"size:2048" json:"error_message,omitempty"`
}

// TableName specifies the table name
func (BackupResult) TableName() string {
	return "backup_results"
}
