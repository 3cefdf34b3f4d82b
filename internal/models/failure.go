package models

import (
	"time"
)

// FailureCounter tracks consecutive failed backup attempts for a database,
// across all tiers. Incremented on each failed result, reset to zero on the
// next completed result. Updates are atomic SQL increments; multiple
// processor workers may complete jobs for the same database concurrently.
type FailureCounter struct {
	DatabaseID          string    `gorm:"primaryKey;size:36" json:"database_id"`
	ConsecutiveFailures int       `gorm:"default:0;not null" json:"consecutive_failures"`
	LastError           string    `gorm:"size:2048" json:"last_error,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (FailureCounter) TableName() string {
	return "failure_counters"
}

// Alerting reports whether the counter has reached the alert threshold
func (f *FailureCounter) Alerting(threshold int) bool {
	return f.ConsecutiveFailures >= threshold
}
