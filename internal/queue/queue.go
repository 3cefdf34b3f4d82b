package queue

import (
	"context"

	"github.com/dbward/dbward/internal/models"
)

// Delivery is one received job plus the receipt needed to acknowledge it.
// Until acknowledged, the delivery is redelivered after the queue's
// visibility timeout elapses.
type Delivery struct {
	Job     models.BackupJob
	Receipt string
}

// Queue is the at-least-once delivery channel between the scheduler and the
// processor. Consumers must treat redelivered job ids idempotently.
type Queue interface {
	// Enqueue places a job on the queue
	Enqueue(ctx context.Context, job models.BackupJob) error

	// Receive blocks until a job is available or the context is done
	Receive(ctx context.Context) (*Delivery, error)

	// Ack marks a delivery as handled so it will not be redelivered
	Ack(ctx context.Context, d *Delivery) error

	// Close releases background resources held by the queue
	Close()
}
