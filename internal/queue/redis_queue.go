package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements Queue on Redis. Pending jobs live in a list;
// received jobs are moved to a processing list and tracked in a sorted set
// keyed by their redelivery deadline. A reaper goroutine moves expired
// in-flight entries back to pending, which gives at-least-once delivery
// with a visibility timeout.
type RedisQueue struct {
	client     *redis.Client
	pendingKey string
	workingKey string
	deadlines  string
	visibility time.Duration
	stopReaper context.CancelFunc
}

// NewRedisQueue creates a Redis-backed job queue and starts its reaper
func NewRedisQueue(client *redis.Client, keyPrefix string, visibility time.Duration) *RedisQueue {
	q := &RedisQueue{
		client:     client,
		pendingKey: keyPrefix + ":pending",
		workingKey: keyPrefix + ":working",
		deadlines:  keyPrefix + ":deadlines",
		visibility: visibility,
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.stopReaper = cancel
	go q.reapLoop(ctx)

	return q
}

// Close stops the redelivery reaper
func (q *RedisQueue) Close() {
	q.stopReaper()
}

// Enqueue places a job on the pending list
func (q *RedisQueue) Enqueue(ctx context.Context, job models.BackupJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	if err := q.client.LPush(ctx, q.pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return nil
}

// Receive blocks until a job is available, moving it to the working list
// and registering its redelivery deadline
func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Short block so context cancellation is observed promptly
		payload, err := q.client.BLMove(ctx, q.pendingKey, q.workingKey, "RIGHT", "LEFT", time.Second).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to receive job: %w", err)
		}

		deadline := float64(time.Now().Add(q.visibility).Unix())
		if err := q.client.ZAdd(ctx, q.deadlines, redis.Z{Score: deadline, Member: payload}).Err(); err != nil {
			logger.Warn("QUEUE: Failed to register redelivery deadline", map[string]interface{}{
				"error": err.Error(),
			})
		}

		var job models.BackupJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			// Poison message: drop it rather than redeliver forever
			logger.Error("QUEUE: Dropping undecodable job payload", err, nil)
			q.client.LRem(ctx, q.workingKey, 1, payload)
			q.client.ZRem(ctx, q.deadlines, payload)
			continue
		}

		return &Delivery{Job: job, Receipt: payload}, nil
	}
}

// Ack removes a delivery from the working list and deadline set
func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	if err := q.client.LRem(ctx, q.workingKey, 1, d.Receipt).Err(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return q.client.ZRem(ctx, q.deadlines, d.Receipt).Err()
}

// reapLoop periodically re-queues in-flight jobs whose visibility timeout
// has expired
func (q *RedisQueue) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.reapExpired(ctx)
		}
	}
}

func (q *RedisQueue) reapExpired(ctx context.Context) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	expired, err := q.client.ZRangeByScore(ctx, q.deadlines, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		logger.Warn("QUEUE: Failed to scan for expired deliveries", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, payload := range expired {
		// Only redeliver if we win the removal; another reaper instance
		// may have claimed it first
		removed, err := q.client.ZRem(ctx, q.deadlines, payload).Result()
		if err != nil || removed == 0 {
			continue
		}

		q.client.LRem(ctx, q.workingKey, 1, payload)
		if err := q.client.LPush(ctx, q.pendingKey, payload).Err(); err != nil {
			logger.Error("QUEUE: Failed to redeliver expired job", err, nil)
			continue
		}

		logger.Warn("QUEUE: Redelivered job after visibility timeout", map[string]interface{}{
			"visibility": q.visibility.String(),
		})
	}
}
