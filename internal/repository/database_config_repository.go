package repository

import (
	"github.com/dbward/dbward/internal/models"
	"gorm.io/gorm"
)

// DatabaseConfigRepository handles reads of the backup target registry.
// The registry is owned by the management surface; the core never writes it.
type DatabaseConfigRepository struct {
	db *gorm.DB
}

// NewDatabaseConfigRepository creates a new database config repository
func NewDatabaseConfigRepository(db *gorm.DB) *DatabaseConfigRepository {
	return &DatabaseConfigRepository{db: db}
}

// FindEnabled returns all enabled database configs with their servers
func (r *DatabaseConfigRepository) FindEnabled() ([]models.DatabaseConfig, error) {
	var configs []models.DatabaseConfig
	err := r.db.Preload("Server").
		Where("enabled = ?", true).
		Find(&configs).Error
	return configs, err
}

// FindByID finds a database config by ID with its server
func (r *DatabaseConfigRepository) FindByID(id string) (*models.DatabaseConfig, error) {
	var cfg models.DatabaseConfig
	err := r.db.Preload("Server").Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindAll returns every registered database config
func (r *DatabaseConfigRepository) FindAll() ([]models.DatabaseConfig, error) {
	var configs []models.DatabaseConfig
	err := r.db.Preload("Server").Order("name ASC").Find(&configs).Error
	return configs, err
}
