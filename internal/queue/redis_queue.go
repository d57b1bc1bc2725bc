package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civicguard/internal/domain"
)

const dequeuePoll = 2 * time.Second

// RedisQueue is a durable work queue on a Redis list. Jobs are JSON encoded;
// LPUSH to publish, BRPOP to consume.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue constructs the queue over an existing client.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Enqueue publishes one filing job.
func (q *RedisQueue) Enqueue(ctx context.Context, job domain.FilingJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal filing job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue filing job: %w", err)
	}
	return nil
}

// Dequeue blocks up to the poll window for the next job.
func (q *RedisQueue) Dequeue(ctx context.Context) (*domain.FilingJob, error) {
	res, err := q.client.BRPop(ctx, dequeuePoll, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(res))
	}

	var job domain.FilingJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal filing job: %w", err)
	}
	return &job, nil
}
