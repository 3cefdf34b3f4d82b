package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbward/dbward/internal/models"
)

func job(id string) models.BackupJob {
	return models.BackupJob{
		ID:         id,
		DatabaseID: "db-1",
		Tier:       models.TierDaily,
		Trigger:    models.TriggerScheduled,
		EnqueuedAt: time.Now(),
	}
}

func TestMemoryQueueDeliversInOrder(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, job("a")))
	require.NoError(t, q.Enqueue(ctx, job("b")))

	first, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Job.ID)

	second, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", second.Job.ID)
}

func TestMemoryQueueAckPreventsRedelivery(t *testing.T) {
	q := NewMemoryQueue(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, job("a")))

	d, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, d))

	// Past the visibility timeout, nothing comes back
	recvCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = q.Receive(recvCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueueRedeliversAfterVisibilityTimeout(t *testing.T) {
	q := NewMemoryQueue(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, job("a")))

	first, err := q.Receive(ctx)
	require.NoError(t, err)

	// Never acked: the delivery returns after the deadline with a new receipt
	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	second, err := q.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, first.Job.ID, second.Job.ID)
	assert.NotEqual(t, first.Receipt, second.Receipt)
}

func TestMemoryQueueReceiveHonorsContext(t *testing.T) {
	q := NewMemoryQueue(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
