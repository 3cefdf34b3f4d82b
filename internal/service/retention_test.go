package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbward/dbward/internal/models"
)

func seedCompleted(t *testing.T, store *memStore, blobs *fakeBlobStore, databaseID string, tier models.TierKind, day int) models.BackupResult {
	t.Helper()

	completedAt := time.Date(2026, time.March, day, 2, 0, 0, 0, time.UTC)
	location := fmt.Sprintf("databases/%s/%s/day-%d.sql.gz", databaseID, tier, day)
	result := models.BackupResult{
		ID:          fmt.Sprintf("res-%s-%d", tier, day),
		JobID:       fmt.Sprintf("job-%s-%d", tier, day),
		DatabaseID:  databaseID,
		Tier:        tier,
		Status:      models.BackupStatusCompleted,
		StartedAt:   completedAt.Add(-time.Minute),
		CompletedAt: &completedAt,
		Location:    location,
	}
	require.NoError(t, historyStoreAdapter{store}.Create(&result))

	_, err := blobs.Put(context.Background(), location, []byte("artifact"))
	require.NoError(t, err)
	return result
}

func TestEnforceKeepsNewestWithinKeepCount(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	retention := NewRetentionService(historyStoreAdapter{store}, blobs)

	// Five daily completions, keep-count 3: days 1 and 2 go, days 3-5 stay
	for day := 1; day <= 5; day++ {
		seedCompleted(t, store, blobs, "db-1", models.TierDaily, day)
	}

	evicted, err := retention.Enforce(context.Background(), "db-1", models.TierDaily, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, evicted)

	remaining, err := store.CompletedDesc("db-1", models.TierDaily)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, "res-daily-5", remaining[0].ID)
	assert.Equal(t, "res-daily-4", remaining[1].ID)
	assert.Equal(t, "res-daily-3", remaining[2].ID)
	assert.Equal(t, 3, blobs.count())
}

func TestEnforceNoopUnderKeepCount(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	retention := NewRetentionService(historyStoreAdapter{store}, blobs)

	seedCompleted(t, store, blobs, "db-1", models.TierDaily, 1)

	evicted, err := retention.Enforce(context.Background(), "db-1", models.TierDaily, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 1, blobs.count())
}

func TestEnforceIgnoresFailedResults(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	retention := NewRetentionService(historyStoreAdapter{store}, blobs)

	for day := 1; day <= 3; day++ {
		seedCompleted(t, store, blobs, "db-1", models.TierDaily, day)
	}
	failedAt := time.Date(2026, time.February, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, historyStoreAdapter{store}.Create(&models.BackupResult{
		ID: "res-failed", JobID: "job-failed", DatabaseID: "db-1", Tier: models.TierDaily,
		Status: models.BackupStatusFailed, StartedAt: failedAt, CompletedAt: &failedAt,
		ErrorMessage: "timeout",
	}))

	evicted, err := retention.Enforce(context.Background(), "db-1", models.TierDaily, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	// The failed row stays in history
	failed := store.resultsByStatus(models.BackupStatusFailed)
	assert.Len(t, failed, 1)
}

func TestEnforceScopedToTier(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	retention := NewRetentionService(historyStoreAdapter{store}, blobs)

	for day := 1; day <= 3; day++ {
		seedCompleted(t, store, blobs, "db-1", models.TierDaily, day)
	}
	seedCompleted(t, store, blobs, "db-1", models.TierWeekly, 1)

	evicted, err := retention.Enforce(context.Background(), "db-1", models.TierDaily, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	weekly, err := store.CompletedDesc("db-1", models.TierWeekly)
	require.NoError(t, err)
	assert.Len(t, weekly, 1)
}

func TestEnforceKeepsRecordWhenBlobDeleteFails(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	blobs.failDelete = true
	retention := NewRetentionService(historyStoreAdapter{store}, blobs)

	for day := 1; day <= 3; day++ {
		seedCompleted(t, store, blobs, "db-1", models.TierDaily, day)
	}

	evicted, err := retention.Enforce(context.Background(), "db-1", models.TierDaily, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, evicted)

	// All records survive so the next pass can retry the artifacts
	remaining, err := store.CompletedDesc("db-1", models.TierDaily)
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}
