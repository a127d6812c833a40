// Package taskqueue carries named tasks from the API process to workers.
//
// Delivery is at-least-once and fire-and-forget: Enqueue returns once the
// backend has accepted the task, and a failed handler is logged, never
// retried.
package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend names accepted in tasks.backend
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendKafka  = "kafka"
)

var (
	ErrQueueClosed = errors.New("taskqueue: queue closed")
	ErrUnknownTask = errors.New("taskqueue: no handler for task")
)

// Queue is a task queue with its consumer side
type Queue interface {
	shared.TaskQueue
	// Consume runs handler for every received task until ctx is done
	Consume(ctx context.Context, handler shared.TaskHandler) error
	Close() error
}

// New builds the backend selected by cfg. rdb is only used by the redis
// backend and may be nil otherwise.
func New(cfg config.TasksConfig, rdb redis.UniversalClient, logger *zap.Logger) (Queue, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryQueue(cfg.Workers, logger), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("taskqueue: redis backend needs a redis client")
		}
		return NewRedisQueue(rdb, cfg.RedisKey, cfg.Workers, logger), nil
	case BackendKafka:
		return NewKafkaQueue(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger), nil
	default:
		return nil, fmt.Errorf("taskqueue: unknown backend %q", cfg.Backend)
	}
}

func encodeTask(task shared.Task) ([]byte, error) {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now()
	}
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("taskqueue: encode task %s: %w", task.Name, err)
	}
	return data, nil
}

func decodeTask(data []byte) (shared.Task, error) {
	var task shared.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return shared.Task{}, fmt.Errorf("taskqueue: decode task: %w", err)
	}
	if task.Name == "" {
		return shared.Task{}, fmt.Errorf("taskqueue: decode task: missing name")
	}
	return task, nil
}
