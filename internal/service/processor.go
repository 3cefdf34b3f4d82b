package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/dbward/dbward/internal/engine"
	"github.com/dbward/dbward/internal/events"
	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/internal/monitoring"
	"github.com/dbward/dbward/internal/queue"
	"github.com/dbward/dbward/internal/storage"
	"github.com/dbward/dbward/pkg/logger"
)

// Processor consumes backup jobs from the queue and executes them end-to-end:
// dump, compress, upload, record the result, update failure counters, run
// retention. It is the only component that writes BackupResult rows.
//
// Workers share nothing in memory; coordination happens through the durable
// store and the queue's at-least-once contract. Redelivered jobs are detected
// by their terminal result and acked without re-executing.
type Processor struct {
	queue     queue.Queue
	registry  DatabaseRegistry
	policies  PolicyStore
	history   HistoryStore
	failures  FailureStore
	drivers   *engine.Registry
	blobs     storage.BlobStore
	retention *RetentionService

	workers       int
	backupTimeout time.Duration
	uploadTimeout time.Duration
}

// ProcessorOptions configures a Processor
type ProcessorOptions struct {
	Workers       int
	BackupTimeout time.Duration
	UploadTimeout time.Duration
}

// NewProcessor creates a new processor
func NewProcessor(q queue.Queue, registry DatabaseRegistry, policies PolicyStore, history HistoryStore, failures FailureStore, drivers *engine.Registry, blobs storage.BlobStore, retention *RetentionService, opts ProcessorOptions) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Processor{
		queue:         q,
		registry:      registry,
		policies:      policies,
		history:       history,
		failures:      failures,
		drivers:       drivers,
		blobs:         blobs,
		retention:     retention,
		workers:       opts.Workers,
		backupTimeout: opts.BackupTimeout,
		uploadTimeout: opts.UploadTimeout,
	}
}

// Run starts the worker pool and blocks until ctx is cancelled
func (p *Processor) Run(ctx context.Context) error {
	logger.Info("Starting backup processor", map[string]interface{}{
		"workers": p.workers,
	})

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		worker := i
		g.Go(func() error {
			return p.runWorker(ctx, worker)
		})
	}
	return g.Wait()
}

func (p *Processor) runWorker(ctx context.Context, worker int) error {
	for {
		delivery, err := p.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("Backup worker stopping", map[string]interface{}{
					"worker": worker,
				})
				return nil
			}
			logger.Error("Failed to receive job", err, map[string]interface{}{
				"worker": worker,
			})
			time.Sleep(time.Second)
			continue
		}

		if err := p.Handle(ctx, &delivery.Job); err != nil {
			// Handle only errors on store/queue plumbing failures; leaving
			// the delivery unacked lets the visibility timeout redeliver it.
			logger.Error("Failed to handle job, leaving for redelivery", err, map[string]interface{}{
				"worker": worker,
				"job_id": delivery.Job.ID,
			})
			continue
		}

		if err := p.queue.Ack(ctx, delivery); err != nil {
			logger.Error("Failed to ack job", err, map[string]interface{}{
				"worker": worker,
				"job_id": delivery.Job.ID,
			})
		}
	}
}

// Handle executes one job. Backup failures are recorded as failed results and
// return nil; a non-nil error means the attempt could not be recorded at all
// and the job should be redelivered.
func (p *Processor) Handle(ctx context.Context, job *models.BackupJob) error {
	done, err := p.history.TerminalExistsForJob(job.ID)
	if err != nil {
		return fmt.Errorf("failed to check for terminal result: %w", err)
	}
	if done {
		// At-least-once redelivery of a finished job. Ack without rerunning
		// so retention counts and failure counters stay correct.
		events.PublishJobRedelivered(job.DatabaseID, job.ID)
		logger.Debug("Job already has terminal result, skipping", map[string]interface{}{
			"job_id": job.ID,
		})
		return nil
	}

	result := &models.BackupResult{
		ID:         uuid.New().String(),
		JobID:      job.ID,
		DatabaseID: job.DatabaseID,
		Tier:       job.Tier,
		Trigger:    job.Trigger,
		Status:     models.BackupStatusInProgress,
		StartedAt:  time.Now(),
	}
	if err := p.history.Create(result); err != nil {
		return fmt.Errorf("failed to create backup result: %w", err)
	}

	events.PublishJobStarted(job.DatabaseID, job.ID, string(job.Tier))

	database, err := p.registry.FindByID(job.DatabaseID)
	if err != nil {
		return p.markFailed(result, fmt.Errorf("database not found: %w", err))
	}
	if !database.Enabled {
		// Disabled after the job was emitted; abandon without counting a failure.
		return p.markCancelled(result, "database disabled")
	}
	if database.Server == nil {
		return p.markFailed(result, fmt.Errorf("database %s has no server record", database.ID))
	}

	artifact, err := p.runBackup(ctx, database)
	if err != nil {
		return p.markFailed(result, err)
	}

	location, err := p.upload(ctx, database, job, artifact)
	if err != nil {
		return p.markFailed(result, err)
	}

	return p.markCompleted(ctx, database, job, result, location, int64(len(artifact)))
}

// runBackup dumps the database and compresses the artifact
func (p *Processor) runBackup(ctx context.Context, database *models.DatabaseConfig) ([]byte, error) {
	driver, err := p.drivers.ForEngine(database.Server.Engine)
	if err != nil {
		return nil, err
	}

	dumpCtx, cancel := context.WithTimeout(ctx, p.backupTimeout)
	defer cancel()

	dump, err := driver.Dump(dumpCtx, engine.Target{
		Host:     database.Server.Host,
		Port:     database.Server.Port,
		Username: database.Server.Username,
		Password: database.Server.Password,
		Database: database.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("backup driver failed: %w", err)
	}

	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	if _, err := gz.Write(dump); err != nil {
		gz.Close()
		return nil, fmt.Errorf("failed to compress dump: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress dump: %w", err)
	}

	return buf.Bytes(), nil
}

// upload stores the compressed artifact and returns its location
func (p *Processor) upload(ctx context.Context, database *models.DatabaseConfig, job *models.BackupJob, artifact []byte) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, p.uploadTimeout)
	defer cancel()

	path := fmt.Sprintf("databases/%s/%s/%s.sql.gz",
		database.ID, job.Tier, time.Now().UTC().Format("20060102T150405Z"))

	location, err := p.blobs.Put(uploadCtx, path, artifact)
	if err != nil {
		return "", fmt.Errorf("failed to store backup artifact: %w", err)
	}
	return location, nil
}

func (p *Processor) markCompleted(ctx context.Context, database *models.DatabaseConfig, job *models.BackupJob, result *models.BackupResult, location string, sizeBytes int64) error {
	now := time.Now()
	result.Status = models.BackupStatusCompleted
	result.CompletedAt = &now
	result.Location = location
	result.SizeBytes = sizeBytes
	if err := p.history.Update(result); err != nil {
		return fmt.Errorf("failed to record completed backup: %w", err)
	}

	if err := p.failures.Reset(job.DatabaseID); err != nil {
		logger.Error("Failed to reset failure counter", err, map[string]interface{}{
			"database_id": job.DatabaseID,
		})
	}

	duration := now.Sub(result.StartedAt).Seconds()
	monitoring.RecordBackupCompleted(job.DatabaseID, string(job.Tier), sizeBytes, duration)
	events.PublishBackupCompleted(job.DatabaseID, job.ID, string(job.Tier), location, sizeBytes, duration)

	logger.Info("Backup completed", map[string]interface{}{
		"job_id":      job.ID,
		"database_id": job.DatabaseID,
		"tier":        job.Tier,
		"location":    location,
		"size_bytes":  sizeBytes,
		"duration_s":  duration,
	})

	p.enforceRetention(ctx, database, job)
	return nil
}

// enforceRetention runs after a completed backup. Retention failures are
// logged but never fail the job; the next completion retries.
func (p *Processor) enforceRetention(ctx context.Context, database *models.DatabaseConfig, job *models.BackupJob) {
	policy, err := p.policies.FindByID(database.PolicyID)
	if err != nil {
		logger.Warn("Skipping retention, policy not found", map[string]interface{}{
			"database_id": database.ID,
			"policy_id":   database.PolicyID,
		})
		return
	}

	rule := policy.Tier(job.Tier)
	if rule == nil {
		logger.Warn("Skipping retention, policy has no rule for tier", map[string]interface{}{
			"database_id": database.ID,
			"policy_id":   policy.ID,
			"tier":        job.Tier,
		})
		return
	}

	if _, err := p.retention.Enforce(ctx, database.ID, job.Tier, rule.KeepCount); err != nil {
		logger.Error("Retention enforcement failed", err, map[string]interface{}{
			"database_id": database.ID,
			"tier":        job.Tier,
		})
	}
}

func (p *Processor) markFailed(result *models.BackupResult, cause error) error {
	now := time.Now()
	result.Status = models.BackupStatusFailed
	result.CompletedAt = &now
	result.ErrorMessage = cause.Error()
	if err := p.history.Update(result); err != nil {
		return fmt.Errorf("failed to record failed backup: %w", err)
	}

	if err := p.failures.RecordFailure(result.DatabaseID, cause.Error()); err != nil {
		logger.Error("Failed to record failure counter", err, map[string]interface{}{
			"database_id": result.DatabaseID,
		})
	}

	duration := now.Sub(result.StartedAt).Seconds()
	monitoring.RecordBackupFailed(result.DatabaseID, string(result.Tier), duration)
	events.PublishBackupFailed(result.DatabaseID, result.JobID, string(result.Tier), cause.Error())

	logger.Error("Backup failed", cause, map[string]interface{}{
		"job_id":      result.JobID,
		"database_id": result.DatabaseID,
		"tier":        result.Tier,
	})

	return nil
}

func (p *Processor) markCancelled(result *models.BackupResult, reason string) error {
	now := time.Now()
	result.Status = models.BackupStatusCancelled
	result.CompletedAt = &now
	result.ErrorMessage = reason
	if err := p.history.Update(result); err != nil {
		return fmt.Errorf("failed to record cancelled backup: %w", err)
	}

	logger.Info("Backup cancelled", map[string]interface{}{
		"job_id":      result.JobID,
		"database_id": result.DatabaseID,
		"reason":      reason,
	})

	return nil
}
