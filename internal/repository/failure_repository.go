package repository

import (
	"errors"
	"time"

	"github.com/dbward/dbward/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FailureRepository maintains per-database consecutive-failure counters.
// Increments and resets are single atomic statements so concurrent job
// completions for different tiers of the same database cannot lose updates.
type FailureRepository struct {
	db *gorm.DB
}

// NewFailureRepository creates a new failure repository
func NewFailureRepository(db *gorm.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

// RecordFailure atomically increments the counter and stores the last error
func (r *FailureRepository) RecordFailure(databaseID, errMsg string) error {
	counter := models.FailureCounter{
		DatabaseID:          databaseID,
		ConsecutiveFailures: 1,
		LastError:           errMsg,
		UpdatedAt:           time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "database_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"consecutive_failures": gorm.Expr("failure_counters.consecutive_failures + 1"),
			"last_error":           errMsg,
			"updated_at":           time.Now(),
		}),
	}).Create(&counter).Error
}

// Reset atomically resets the counter to zero after a completed backup
func (r *FailureRepository) Reset(databaseID string) error {
	counter := models.FailureCounter{
		DatabaseID:          databaseID,
		ConsecutiveFailures: 0,
		UpdatedAt:           time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "database_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"consecutive_failures": 0,
			"last_error":           "",
			"updated_at":           time.Now(),
		}),
	}).Create(&counter).Error
}

// Get returns the counter for a database; a missing row means zero failures
func (r *FailureRepository) Get(databaseID string) (*models.FailureCounter, error) {
	var counter models.FailureCounter
	err := r.db.Where("database_id = ?", databaseID).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.FailureCounter{DatabaseID: databaseID}, nil
		}
		return nil, err
	}
	return &counter, nil
}

// FindAll returns all failure counters
func (r *FailureRepository) FindAll() ([]models.FailureCounter, error) {
	var counters []models.FailureCounter
	err := r.db.Find(&counters).Error
	return counters, err
}

// FindAlerting returns counters at or above the alert threshold
func (r *FailureRepository) FindAlerting(threshold int) ([]models.FailureCounter, error) {
	var counters []models.FailureCounter
	err := r.db.Where("consecutive_failures >= ?", threshold).
		Order("consecutive_failures DESC").
		Find(&counters).Error
	return counters, err
}
