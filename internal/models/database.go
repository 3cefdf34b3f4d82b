package models

import (
	"time"
)

// DatabaseConfig represents one database to protect. Records are managed by
// the registry; the backup core only ever reads them.
type DatabaseConfig struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ServerID string          `gorm:"index;size:36;not null"`
	Server   *DatabaseServer `gorm:"foreignKey:ServerID"`

	// Name of the database on the server
	Name    string `gorm:"size:255;not null"`
	Enabled bool   `gorm:"default:false;not null"`

	// Every enabled config references exactly one existing policy
	PolicyID string `gorm:"index;size:36;not null"`
}

// TableName specifies the table name
func (DatabaseConfig) TableName() string {
	return "database_configs"
}
