package service

import (
	"context"
	"fmt"

	"github.com/dbward/dbward/internal/events"
	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/internal/monitoring"
	"github.com/dbward/dbward/internal/storage"
	"github.com/dbward/dbward/pkg/logger"
)

// RetentionService prunes completed backups beyond a tier's keep-count,
// oldest first. Failed and in-progress results are never touched; each
// (database, tier) pair keeps its own independent window.
type RetentionService struct {
	history HistoryStore
	blobs   storage.BlobStore
}

// NewRetentionService creates a new retention service
func NewRetentionService(history HistoryStore, blobs storage.BlobStore) *RetentionService {
	return &RetentionService{
		history: history,
		blobs:   blobs,
	}
}

// Enforce applies the keep-count for one (database, tier) pair. It returns
// the number of backups evicted.
func (s *RetentionService) Enforce(ctx context.Context, databaseID string, tier models.TierKind, keepCount int) (int, error) {
	if keepCount <= 0 {
		return 0, nil
	}

	completed, err := s.history.CompletedDesc(databaseID, tier)
	if err != nil {
		return 0, fmt.Errorf("failed to list completed backups: %w", err)
	}

	if len(completed) <= keepCount {
		return 0, nil
	}

	evicted := 0
	for _, result := range completed[keepCount:] {
		if result.Location != "" {
			if err := s.blobs.Delete(ctx, result.Location); err != nil {
				// Keep the record so the next pass retries the artifact.
				logger.Warn("Failed to delete backup artifact, will retry on next pass", map[string]interface{}{
					"result_id": result.ID,
					"location":  result.Location,
					"error":     err.Error(),
				})
				continue
			}
		}

		if err := s.history.Delete(result.ID); err != nil {
			return evicted, fmt.Errorf("failed to delete backup record %s: %w", result.ID, err)
		}

		evicted++
		monitoring.RecordRetentionDeleted(databaseID, string(tier))
		events.PublishBackupEvicted(databaseID, result.ID, string(tier), result.Location)

		logger.Info("Backup evicted by retention", map[string]interface{}{
			"database_id": databaseID,
			"tier":        tier,
			"result_id":   result.ID,
			"location":    result.Location,
		})
	}

	return evicted, nil
}
