package queue

import (
	"context"
	"sync"
	"time"

	"github.com/dbward/dbward/internal/models"
	"github.com/google/uuid"
)

type inflightEntry struct {
	job      models.BackupJob
	deadline time.Time
}

// MemoryQueue is an in-process Queue with the same at-least-once semantics
// as the Redis queue: unacknowledged deliveries return to pending once
// their visibility timeout expires. Used in development and tests.
type MemoryQueue struct {
	mu         sync.Mutex
	pending    []models.BackupJob
	inflight   map[string]inflightEntry
	visibility time.Duration
	notify     chan struct{}
}

// NewMemoryQueue creates an in-memory job queue
func NewMemoryQueue(visibility time.Duration) *MemoryQueue {
	return &MemoryQueue{
		inflight:   make(map[string]inflightEntry),
		visibility: visibility,
		notify:     make(chan struct{}, 1),
	}
}

// Enqueue adds a job to the pending queue
func (q *MemoryQueue) Enqueue(ctx context.Context, job models.BackupJob) error {
	q.mu.Lock()
	q.pending = append(q.pending, job)
	q.mu.Unlock()

	q.wake()
	return nil
}

// Receive blocks until a job is available or the context is done
func (q *MemoryQueue) Receive(ctx context.Context) (*Delivery, error) {
	for {
		if d := q.tryReceive(); d != nil {
			return d, nil
		}

		wait := q.visibility / 2
		if wait < 10*time.Millisecond {
			wait = 10 * time.Millisecond
		} else if wait > 5*time.Second {
			wait = 5 * time.Second
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		case <-time.After(wait):
			// Re-check for expired in-flight deliveries
		}
	}
}

// Ack removes a delivery from the in-flight set
func (q *MemoryQueue) Ack(ctx context.Context, d *Delivery) error {
	q.mu.Lock()
	delete(q.inflight, d.Receipt)
	q.mu.Unlock()
	return nil
}

// Close is a no-op; the memory queue holds no background resources
func (q *MemoryQueue) Close() {}

// Size returns the number of pending jobs
func (q *MemoryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *MemoryQueue) tryReceive() *Delivery {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()

	// Expired in-flight deliveries go back to pending first (FIFO order
	// between them is not guaranteed; consumers are idempotent anyway)
	for receipt, entry := range q.inflight {
		if now.After(entry.deadline) {
			q.pending = append(q.pending, entry.job)
			delete(q.inflight, receipt)
		}
	}

	if len(q.pending) == 0 {
		return nil
	}

	job := q.pending[0]
	q.pending = q.pending[1:]

	receipt := uuid.New().String()
	q.inflight[receipt] = inflightEntry{job: job, deadline: now.Add(q.visibility)}

	return &Delivery{Job: job, Receipt: receipt}
}

func (q *MemoryQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
