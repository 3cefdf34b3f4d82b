package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BackupEvent represents a backup lifecycle event for monitoring and analytics
type BackupEvent struct {
	gorm.Model
	EventID    string         `gorm:"uniqueIndex;size:255" json:"event_id"`
	Type       string         `gorm:"index;size:100" json:"type"`
	Timestamp  time.Time      `gorm:"index" json:"timestamp"`
	Source     string         `gorm:"size:100" json:"source"`
	DatabaseID string         `gorm:"index;size:255" json:"database_id,omitempty"`
	Data       datatypes.JSON `gorm:"type:jsonb" json:"data"`
}

// TableName overrides the table name
func (BackupEvent) TableName() string {
	return "backup_events"
}
