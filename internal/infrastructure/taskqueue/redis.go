package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultRedisKey  = "marketplace:tasks"
	redisPollTimeout = 5 * time.Second
)

// RedisQueue keeps tasks in a Redis list: producers LPUSH, workers BRPOP
type RedisQueue struct {
	client  redis.UniversalClient
	key     string
	workers int
	logger  *zap.Logger
}

var _ Queue = (*RedisQueue)(nil)

// NewRedisQueue creates a queue on list key
func NewRedisQueue(client redis.UniversalClient, key string, workers int, logger *zap.Logger) *RedisQueue {
	if key == "" {
		key = defaultRedisKey
	}
	if workers <= 0 {
		workers = 1
	}
	return &RedisQueue{client: client, key: key, workers: workers, logger: logger}
}

// Enqueue pushes task onto the list
func (q *RedisQueue) Enqueue(ctx context.Context, task shared.Task) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("taskqueue: enqueue %s: %w", task.Name, err)
	}
	return nil
}

// Consume pops tasks with one BRPOP loop per worker until ctx is done
func (q *RedisQueue) Consume(ctx context.Context, handler shared.TaskHandler) error {
	var wg sync.WaitGroup
	for range q.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.consumeLoop(ctx, handler)
		}()
	}
	wg.Wait()
	return nil
}

func (q *RedisQueue) consumeLoop(ctx context.Context, handler shared.TaskHandler) {
	for ctx.Err() == nil {
		result, err := q.client.BRPop(ctx, redisPollTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.logger.Error("Failed to pop task", zap.String("key", q.key), zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		// result is [key, value]
		if len(result) != 2 {
			continue
		}
		task, err := decodeTask([]byte(result[1]))
		if err != nil {
			q.logger.Error("Dropping malformed task", zap.Error(err))
			continue
		}
		_ = handler.Handle(ctx, task)
	}
}

// Len returns the number of queued tasks
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Close is a no-op; the Redis client is owned by the caller
func (q *RedisQueue) Close() error {
	return nil
}
