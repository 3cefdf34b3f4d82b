package repository

import (
	"github.com/dbward/dbward/internal/models"
	"gorm.io/gorm"
)

// JobRepository records job emissions. A job row plus the absence of a
// terminal result for its id is what makes "in flight" computable for the
// scheduler's duplicate suppression.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create records a job at enqueue time
func (r *JobRepository) Create(job *models.BackupJob) error {
	return r.db.Create(job).Error
}

// FindByID finds a job by ID
func (r *JobRepository) FindByID(id string) (*models.BackupJob, error) {
	var job models.BackupJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// HasOpenJob reports whether a job for (database, tier) has been enqueued
// without reaching a terminal BackupResult yet
func (r *JobRepository) HasOpenJob(databaseID string, tier models.TierKind) (bool, error) {
	var count int64
	err := r.db.Model(&models.BackupJob{}).
		Where("database_id = ? AND tier = ?", databaseID, tier).
		Where("NOT EXISTS (SELECT 1 FROM backup_results r WHERE r.job_id = backup_jobs.id AND r.status IN ?)",
			[]models.BackupStatus{models.BackupStatusCompleted, models.BackupStatusFailed, models.BackupStatusCancelled}).
		Count(&count).Error
	return count > 0, err
}
