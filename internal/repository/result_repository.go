package repository

import (
	"errors"
	"time"

	"github.com/dbward/dbward/internal/models"
	"gorm.io/gorm"
)

// ResultRepository handles database operations for backup history
type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create creates a new backup result record
func (r *ResultRepository) Create(result *models.BackupResult) error {
	return r.db.Create(result).Error
}

// Update updates a backup result record
func (r *ResultRepository) Update(result *models.BackupResult) error {
	return r.db.Save(result).Error
}

// FindByID finds a result by ID
func (r *ResultRepository) FindByID(id string) (*models.BackupResult, error) {
	var result models.BackupResult
	err := r.db.Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TerminalExistsForJob reports whether a terminal result already exists for
// the given job id. This is the idempotency check for queue redelivery.
func (r *ResultRepository) TerminalExistsForJob(jobID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BackupResult{}).
		Where("job_id = ? AND status IN ?", jobID,
			[]models.BackupStatus{models.BackupStatusCompleted, models.BackupStatusFailed, models.BackupStatusCancelled}).
		Count(&count).Error
	return count > 0, err
}

// LastCompletedPerTier returns the completion time of the most recent
// completed result for each tier of a database. Failed attempts are
// excluded; they never reset the due-date clock.
func (r *ResultRepository) LastCompletedPerTier(databaseID string) (map[models.TierKind]time.Time, error) {
	last := make(map[models.TierKind]time.Time)

	for _, tier := range models.AllTiers {
		var result models.BackupResult
		err := r.db.Where("database_id = ? AND tier = ? AND status = ?",
			databaseID, tier, models.BackupStatusCompleted).
			Order("completed_at DESC").
			First(&result).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if result.CompletedAt != nil {
			last[tier] = *result.CompletedAt
		}
	}

	return last, nil
}

// CompletedDesc returns all completed results for (database, tier) ordered
// by completion time descending
func (r *ResultRepository) CompletedDesc(databaseID string, tier models.TierKind) ([]models.BackupResult, error) {
	var results []models.BackupResult
	err := r.db.Where("database_id = ? AND tier = ? AND status = ?",
		databaseID, tier, models.BackupStatusCompleted).
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

// FindByDatabase returns recent results for a database, optionally filtered
// by tier, newest first
func (r *ResultRepository) FindByDatabase(databaseID string, tier models.TierKind, limit int) ([]models.BackupResult, error) {
	query := r.db.Where("database_id = ?", databaseID)
	if tier != "" {
		query = query.Where("tier = ?", tier)
	}
	if limit <= 0 {
		limit = 100
	}

	var results []models.BackupResult
	err := query.Order("started_at DESC").Limit(limit).Find(&results).Error
	return results, err
}

// Delete removes a result record. Only retention uses this, and only for
// completed results whose artifacts have been evicted.
func (r *ResultRepository) Delete(id string) error {
	return r.db.Delete(&models.BackupResult{}, "id = ?", id).Error
}
