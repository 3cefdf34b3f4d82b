package models

import (
	"time"
)

// EngineType represents the database engine of an inventoried server
type EngineType string

const (
	EngineMySQL     EngineType = "mysql"
	EnginePostgres  EngineType = "postgres"
	EngineSQLServer EngineType = "sqlserver"
)

// DatabaseServer represents an inventoried database server instance
type DatabaseServer struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name   string     `gorm:"size:255;not null;uniqueIndex"`
	Engine EngineType `gorm:"size:50;not null"`

	// Connection parameters
	Host     string `gorm:"size:255;not null"`
	Port     int    `gorm:"not null"`
	Username string `gorm:"size:255;not null"`
	Password string `gorm:"size:255;not null" json:"-"`
}

// TableName specifies the table name
func (DatabaseServer) TableName() string {
	return "database_servers"
}
