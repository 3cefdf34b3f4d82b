package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dbward/dbward/internal/engine"
	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/internal/queue"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the job, history, and failure
// repositories, with the same open-job and terminal-result semantics.
type memStore struct {
	mu       sync.Mutex
	jobs     []*models.BackupJob
	results  map[string]*models.BackupResult
	counters map[string]*models.FailureCounter
}

func newMemStore() *memStore {
	return &memStore{
		results:  make(map[string]*models.BackupResult),
		counters: make(map[string]*models.FailureCounter),
	}
}

// JobStore

func (s *memStore) CreateJob(job *models.BackupJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs = append(s.jobs, &copied)
	return nil
}

func (s *memStore) HasOpenJob(databaseID string, tier models.TierKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.DatabaseID != databaseID || job.Tier != tier {
			continue
		}
		if !s.terminalExistsLocked(job.ID) {
			return true, nil
		}
	}
	return false, nil
}

// HistoryStore

func (s *memStore) CreateResult(result *models.BackupResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *result
	s.results[result.ID] = &copied
	return nil
}

func (s *memStore) Update(result *models.BackupResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *result
	s.results[result.ID] = &copied
	return nil
}

func (s *memStore) TerminalExistsForJob(jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminalExistsLocked(jobID), nil
}

func (s *memStore) terminalExistsLocked(jobID string) bool {
	for _, result := range s.results {
		if result.JobID == jobID && result.Status.Terminal() {
			return true
		}
	}
	return false
}

func (s *memStore) LastCompletedPerTier(databaseID string) (map[models.TierKind]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := make(map[models.TierKind]time.Time)
	for _, result := range s.results {
		if result.DatabaseID != databaseID || result.Status != models.BackupStatusCompleted || result.CompletedAt == nil {
			continue
		}
		if result.CompletedAt.After(last[result.Tier]) {
			last[result.Tier] = *result.CompletedAt
		}
	}
	return last, nil
}

func (s *memStore) CompletedDesc(databaseID string, tier models.TierKind) ([]models.BackupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var completed []models.BackupResult
	for _, result := range s.results {
		if result.DatabaseID == databaseID && result.Tier == tier && result.Status == models.BackupStatusCompleted {
			completed = append(completed, *result)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	return completed, nil
}

func (s *memStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
	return nil
}

// FailureStore

func (s *memStore) RecordFailure(databaseID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	counter, ok := s.counters[databaseID]
	if !ok {
		counter = &models.FailureCounter{DatabaseID: databaseID}
		s.counters[databaseID] = counter
	}
	counter.ConsecutiveFailures++
	counter.LastError = errMsg
	counter.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) Reset(databaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[databaseID] = &models.FailureCounter{DatabaseID: databaseID, UpdatedAt: time.Now()}
	return nil
}

func (s *memStore) Get(databaseID string) (*models.FailureCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if counter, ok := s.counters[databaseID]; ok {
		copied := *counter
		return &copied, nil
	}
	return &models.FailureCounter{DatabaseID: databaseID}, nil
}

func (s *memStore) FindAlerting(threshold int) ([]models.FailureCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var alerting []models.FailureCounter
	for _, counter := range s.counters {
		if counter.ConsecutiveFailures >= threshold {
			alerting = append(alerting, *counter)
		}
	}
	return alerting, nil
}

func (s *memStore) resultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *memStore) resultsByStatus(status models.BackupStatus) []models.BackupResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.BackupResult
	for _, result := range s.results {
		if result.Status == status {
			matched = append(matched, *result)
		}
	}
	return matched
}

// jobStoreAdapter exposes memStore as a JobStore
type jobStoreAdapter struct{ *memStore }

func (a jobStoreAdapter) Create(job *models.BackupJob) error { return a.CreateJob(job) }

// historyStoreAdapter exposes memStore as a HistoryStore
type historyStoreAdapter struct{ *memStore }

func (a historyStoreAdapter) Create(result *models.BackupResult) error { return a.CreateResult(result) }

// fakeRegistry serves database configs from a map
type fakeRegistry struct {
	databases map[string]*models.DatabaseConfig
}

func (r *fakeRegistry) FindEnabled() ([]models.DatabaseConfig, error) {
	var enabled []models.DatabaseConfig
	var ids []string
	for id := range r.databases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if r.databases[id].Enabled {
			enabled = append(enabled, *r.databases[id])
		}
	}
	return enabled, nil
}

func (r *fakeRegistry) FindByID(id string) (*models.DatabaseConfig, error) {
	if database, ok := r.databases[id]; ok {
		copied := *database
		return &copied, nil
	}
	return nil, fmt.Errorf("database %s: %w", id, gorm.ErrRecordNotFound)
}

// fakePolicies serves policies from a map
type fakePolicies struct {
	policies map[string]*models.BackupPolicy
}

func (p *fakePolicies) FindByID(id string) (*models.BackupPolicy, error) {
	if policy, ok := p.policies[id]; ok {
		return policy, nil
	}
	return nil, fmt.Errorf("policy %s: %w", id, gorm.ErrRecordNotFound)
}

// fakeQueue captures enqueued jobs without delivering them
type fakeQueue struct {
	mu   sync.Mutex
	jobs []models.BackupJob
}

func (q *fakeQueue) Enqueue(ctx context.Context, job models.BackupJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Receive(ctx context.Context) (*queue.Delivery, error) {
	return nil, fmt.Errorf("fakeQueue does not deliver")
}

func (q *fakeQueue) Ack(ctx context.Context, d *queue.Delivery) error { return nil }

func (q *fakeQueue) Close() {}

func (q *fakeQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// fakeDriver returns canned dump output or a canned error
type fakeDriver struct {
	engine models.EngineType
	dump   []byte
	err    error
	calls  int
}

func (d *fakeDriver) Engine() models.EngineType { return d.engine }

func (d *fakeDriver) Dump(ctx context.Context, target engine.Target) ([]byte, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.dump, nil
}

// fakeBlobStore stores artifacts in a map
type fakeBlobStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failDelete bool
	deletes    []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (b *fakeBlobStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = data
	return path, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, location string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete {
		return fmt.Errorf("blob store unavailable")
	}
	delete(b.objects, location)
	b.deletes = append(b.deletes, location)
	return nil
}

func (b *fakeBlobStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
