package repository

import (
	"github.com/dbward/dbward/internal/models"
	"gorm.io/gorm"
)

// ServerRepository handles reads of the database server inventory
type ServerRepository struct {
	db *gorm.DB
}

// NewServerRepository creates a new server repository
func NewServerRepository(db *gorm.DB) *ServerRepository {
	return &ServerRepository{db: db}
}

// FindByID finds a server by ID
func (r *ServerRepository) FindByID(id string) (*models.DatabaseServer, error) {
	var server models.DatabaseServer
	err := r.db.Where("id = ?", id).First(&server).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// FindAll returns every inventoried server
func (r *ServerRepository) FindAll() ([]models.DatabaseServer, error) {
	var servers []models.DatabaseServer
	err := r.db.Order("name ASC").Find(&servers).Error
	return servers, err
}
