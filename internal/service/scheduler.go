package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbward/dbward/internal/events"
	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/internal/monitoring"
	"github.com/dbward/dbward/internal/queue"
	"github.com/dbward/dbward/pkg/logger"
)

// Scheduler periodically evaluates which databases are due for a backup and
// emits jobs onto the queue. It never runs backups itself; the processor owns
// execution and result writes.
type Scheduler struct {
	registry DatabaseRegistry
	policies PolicyStore
	jobs     JobStore
	history  HistoryStore
	queue    queue.Queue

	interval time.Duration
	ticker   *time.Ticker
	stopChan chan bool
	mu       sync.Mutex
}

// NewScheduler creates a new scheduler
func NewScheduler(registry DatabaseRegistry, policies PolicyStore, jobs JobStore, history HistoryStore, q queue.Queue, interval time.Duration) *Scheduler {
	return &Scheduler{
		registry: registry,
		policies: policies,
		jobs:     jobs,
		history:  history,
		queue:    q,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the evaluation loop
func (s *Scheduler) Start() {
	logger.Info("Starting backup scheduler", map[string]interface{}{
		"interval": s.interval.String(),
	})

	// Evaluate immediately on startup
	go s.EvaluatePass(time.Now())

	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.EvaluatePass(time.Now())
			case <-s.stopChan:
				logger.Info("Stopping backup scheduler", nil)
				return
			}
		}
	}()
}

// Stop stops the evaluation loop
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.stopChan <- true
}

// EvaluatePass runs one evaluation over all enabled databases. A failure for
// one database is logged and does not abort the pass.
func (s *Scheduler) EvaluatePass(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	databases, err := s.registry.FindEnabled()
	if err != nil {
		logger.Error("Failed to fetch enabled databases", err, nil)
		return
	}

	for _, database := range databases {
		if err := s.evaluateDatabase(&database, now); err != nil {
			logger.Error("Failed to evaluate database", err, map[string]interface{}{
				"database_id": database.ID,
			})
		}
	}
}

func (s *Scheduler) evaluateDatabase(database *models.DatabaseConfig, now time.Time) error {
	policy, err := s.policies.FindByID(database.PolicyID)
	if err != nil {
		logger.Warn("Database references unknown policy, skipping", map[string]interface{}{
			"database_id": database.ID,
			"policy_id":   database.PolicyID,
		})
		return nil
	}

	lastSuccess, err := s.history.LastCompletedPerTier(database.ID)
	if err != nil {
		return fmt.Errorf("failed to load backup history: %w", err)
	}

	for _, rule := range DueTiers(policy, lastSuccess, now) {
		open, err := s.jobs.HasOpenJob(database.ID, rule.Kind)
		if err != nil {
			return fmt.Errorf("failed to check in-flight jobs: %w", err)
		}
		if open {
			// A job for this database and tier is already queued or running;
			// emitting another would double-run the same backup.
			monitoring.RecordJobSuppressed(database.ID, string(rule.Kind))
			logger.Debug("Backup due but job already in flight", map[string]interface{}{
				"database_id": database.ID,
				"tier":        rule.Kind,
			})
			continue
		}

		if err := s.enqueueJob(database.ID, rule.Kind, models.TriggerScheduled, now); err != nil {
			return err
		}
	}

	return nil
}

// EnqueueManual emits an on-demand job for a database and tier, bypassing the
// due-date evaluation but not the in-flight suppression.
func (s *Scheduler) EnqueueManual(databaseID string, tier models.TierKind) (*models.BackupJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	database, err := s.registry.FindByID(databaseID)
	if err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}

	policy, err := s.policies.FindByID(database.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("policy not found: %w", err)
	}
	if policy.Tier(tier) == nil {
		return nil, fmt.Errorf("policy %s has no %s tier", policy.ID, tier)
	}

	open, err := s.jobs.HasOpenJob(databaseID, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to check in-flight jobs: %w", err)
	}
	if open {
		return nil, ErrJobInFlight
	}

	now := time.Now()
	job, err := s.createJob(databaseID, tier, models.TriggerManual, now)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ErrJobInFlight is returned when a manual request collides with a queued or
// running job for the same database and tier.
var ErrJobInFlight = fmt.Errorf("a backup job for this database and tier is already in flight")

func (s *Scheduler) enqueueJob(databaseID string, tier models.TierKind, trigger models.TriggerKind, scheduledFor time.Time) error {
	_, err := s.createJob(databaseID, tier, trigger, scheduledFor)
	return err
}

func (s *Scheduler) createJob(databaseID string, tier models.TierKind, trigger models.TriggerKind, scheduledFor time.Time) (*models.BackupJob, error) {
	job := &models.BackupJob{
		ID:           uuid.New().String(),
		DatabaseID:   databaseID,
		Tier:         tier,
		Trigger:      trigger,
		ScheduledFor: scheduledFor,
		EnqueuedAt:   time.Now(),
	}

	// Row first, queue second: the in-flight check must see the job before
	// it can be delivered.
	if err := s.jobs.Create(job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.queue.Enqueue(ctx, *job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	monitoring.RecordJobEnqueued(databaseID, string(tier), string(trigger))
	events.PublishJobEnqueued(databaseID, job.ID, string(tier), string(trigger))

	logger.Info("Backup job enqueued", map[string]interface{}{
		"job_id":      job.ID,
		"database_id": databaseID,
		"tier":        tier,
		"trigger":     trigger,
	})

	return job, nil
}
