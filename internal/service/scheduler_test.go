package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbward/dbward/internal/models"
)

func schedulerFixture() (*Scheduler, *fakeRegistry, *memStore, *fakeQueue) {
	server := &models.DatabaseServer{ID: "srv-1", Engine: models.EngineMySQL, Host: "db.internal", Port: 3306}
	registry := &fakeRegistry{databases: map[string]*models.DatabaseConfig{
		"db-1": {ID: "db-1", ServerID: "srv-1", Server: server, Name: "orders", Enabled: true, PolicyID: "pol-1"},
	}}
	policies := &fakePolicies{policies: map[string]*models.BackupPolicy{
		"pol-1": dailyPolicy(),
	}}
	store := newMemStore()
	q := &fakeQueue{}

	scheduler := NewScheduler(registry, policies, jobStoreAdapter{store}, historyStoreAdapter{store}, q, time.Minute)
	return scheduler, registry, store, q
}

func TestEvaluatePassEnqueuesDueJob(t *testing.T) {
	scheduler, _, store, q := schedulerFixture()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	scheduler.EvaluatePass(now)

	require.Equal(t, 1, q.size())
	job := q.jobs[0]
	assert.Equal(t, "db-1", job.DatabaseID)
	assert.Equal(t, models.TierDaily, job.Tier)
	assert.Equal(t, models.TriggerScheduled, job.Trigger)
	assert.Equal(t, now, job.ScheduledFor)
	assert.NotEmpty(t, job.ID)

	// The open-job row was persisted before the push
	open, err := store.HasOpenJob("db-1", models.TierDaily)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestEvaluatePassSuppressesInFlightJob(t *testing.T) {
	scheduler, _, store, q := schedulerFixture()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	scheduler.EvaluatePass(now)
	require.Equal(t, 1, q.size())

	// Next tick, same job still open: nothing new is emitted
	scheduler.EvaluatePass(now.Add(time.Minute))
	assert.Equal(t, 1, q.size())

	// Terminal result closes the job; the tier was satisfied so nothing is due
	job := store.jobs[0]
	completedAt := now.Add(2 * time.Minute)
	require.NoError(t, historyStoreAdapter{store}.Create(&models.BackupResult{
		ID: "res-1", JobID: job.ID, DatabaseID: "db-1", Tier: models.TierDaily,
		Status: models.BackupStatusCompleted, StartedAt: now, CompletedAt: &completedAt,
	}))
	scheduler.EvaluatePass(now.Add(3 * time.Minute))
	assert.Equal(t, 1, q.size())

	// After the next daily slot, a new job goes out
	scheduler.EvaluatePass(time.Date(2026, time.March, 11, 2, 30, 0, 0, time.UTC))
	assert.Equal(t, 2, q.size())
}

func TestEvaluatePassSkipsMissingPolicy(t *testing.T) {
	scheduler, registry, _, q := schedulerFixture()
	registry.databases["db-2"] = &models.DatabaseConfig{
		ID: "db-2", ServerID: "srv-1", Name: "billing", Enabled: true, PolicyID: "missing",
	}

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	scheduler.EvaluatePass(now)

	// db-2 is skipped without aborting the pass; db-1 still gets its job
	require.Equal(t, 1, q.size())
	assert.Equal(t, "db-1", q.jobs[0].DatabaseID)
}

func TestEvaluatePassIgnoresDisabledDatabases(t *testing.T) {
	scheduler, registry, _, q := schedulerFixture()
	registry.databases["db-1"].Enabled = false

	scheduler.EvaluatePass(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, q.size())
}

func TestEnqueueManual(t *testing.T) {
	scheduler, _, _, q := schedulerFixture()

	job, err := scheduler.EnqueueManual("db-1", models.TierDaily)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerManual, job.Trigger)
	assert.Equal(t, 1, q.size())

	// A second manual trigger collides with the open job
	_, err = scheduler.EnqueueManual("db-1", models.TierDaily)
	assert.ErrorIs(t, err, ErrJobInFlight)
	assert.Equal(t, 1, q.size())
}

func TestEnqueueManualValidation(t *testing.T) {
	scheduler, _, _, _ := schedulerFixture()

	_, err := scheduler.EnqueueManual("unknown", models.TierDaily)
	assert.Error(t, err)

	// Policy has no yearly rule
	_, err = scheduler.EnqueueManual("db-1", models.TierYearly)
	assert.Error(t, err)
}
