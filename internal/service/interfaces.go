package service

import (
	"time"

	"github.com/dbward/dbward/internal/models"
)

// DatabaseRegistry resolves protected database configurations
type DatabaseRegistry interface {
	FindEnabled() ([]models.DatabaseConfig, error)
	FindByID(id string) (*models.DatabaseConfig, error)
}

// PolicyStore resolves backup policies with their tier rules
type PolicyStore interface {
	FindByID(id string) (*models.BackupPolicy, error)
}

// JobStore persists emitted jobs and answers in-flight queries
type JobStore interface {
	Create(job *models.BackupJob) error
	HasOpenJob(databaseID string, tier models.TierKind) (bool, error)
}

// HistoryStore persists backup results
type HistoryStore interface {
	Create(result *models.BackupResult) error
	Update(result *models.BackupResult) error
	TerminalExistsForJob(jobID string) (bool, error)
	LastCompletedPerTier(databaseID string) (map[models.TierKind]time.Time, error)
	CompletedDesc(databaseID string, tier models.TierKind) ([]models.BackupResult, error)
	Delete(id string) error
}

// FailureStore tracks per-database consecutive failures
type FailureStore interface {
	RecordFailure(databaseID, errMsg string) error
	Reset(databaseID string) error
	Get(databaseID string) (*models.FailureCounter, error)
	FindAlerting(threshold int) ([]models.FailureCounter, error)
}
