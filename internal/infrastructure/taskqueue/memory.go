package taskqueue

import (
	"context"
	"sync"

	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const memoryBufferPerWorker = 64

// MemoryQueue runs tasks on a pool of goroutines in the same process
type MemoryQueue struct {
	tasks   chan shared.Task
	done    chan struct{}
	workers int
	logger  *zap.Logger

	closeOnce sync.Once
}

var _ Queue = (*MemoryQueue)(nil)

// NewMemoryQueue creates a queue consumed by workers goroutines
func NewMemoryQueue(workers int, logger *zap.Logger) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	return &MemoryQueue{
		tasks:   make(chan shared.Task, workers*memoryBufferPerWorker),
		done:    make(chan struct{}),
		workers: workers,
		logger:  logger,
	}
}

// Enqueue buffers task, waiting for room while ctx allows
func (q *MemoryQueue) Enqueue(ctx context.Context, task shared.Task) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("Task enqueued", zap.String("task", task.Name), zap.String("task_id", task.ID.String()))
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume starts the worker pool and blocks until ctx is done or the queue
// is closed. Tasks still buffered at that point are dropped.
func (q *MemoryQueue) Consume(ctx context.Context, handler shared.TaskHandler) error {
	var wg sync.WaitGroup
	for range q.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-q.done:
					return
				case task := <-q.tasks:
					// Failures are logged by the handler chain and dropped
					_ = handler.Handle(ctx, task)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

// Pending returns the number of buffered tasks
func (q *MemoryQueue) Pending() int {
	return len(q.tasks)
}

// Close stops the workers and rejects further tasks
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
