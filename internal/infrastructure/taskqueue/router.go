package taskqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Router dispatches tasks to the handler registered for their name
type Router struct {
	mu        sync.RWMutex
	handlers  map[string]shared.TaskHandler
	onFailure []FailureHook
	logger    *zap.Logger
}

// FailureHook observes tasks whose handler returned an error or panicked
type FailureHook func(ctx context.Context, task shared.Task, err error)

var _ shared.TaskHandler = (*Router)(nil)

// NewRouter creates an empty router
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		handlers: make(map[string]shared.TaskHandler),
		logger:   logger,
	}
}

// Register binds handler to name, replacing any earlier binding
func (r *Router) Register(name string, handler shared.TaskHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// OnFailure adds a hook run after every failed task
func (r *Router) OnFailure(hook FailureHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFailure = append(r.onFailure, hook)
}

// RegisterAll binds every entry of handlers
func (r *Router) RegisterAll(handlers map[string]shared.TaskHandler) {
	for name, h := range handlers {
		r.Register(name, h)
	}
}

// Names returns the registered task names
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Handle runs the handler for task.Name. A panicking handler is reported
// as an error.
func (r *Router) Handle(ctx context.Context, task shared.Task) (err error) {
	r.mu.RLock()
	h, ok := r.handlers[task.Name]
	hooks := r.onFailure
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("No handler for task", zap.String("task", task.Name))
		return fmt.Errorf("%w: %s", ErrUnknownTask, task.Name)
	}

	ctx, span := telemetry.StartSpan(ctx, "task."+task.Name,
		telemetry.AttrTaskName, task.Name,
		telemetry.AttrTaskID, task.ID)
	defer span.End()

	log := r.logger.With(logger.Fields(ctx)...).With(
		zap.String("task", task.Name),
		zap.String("task_id", task.ID.String()))
	ctx = logger.WithContext(ctx, log)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Task handler panicked", zap.Any("panic", rec))
			err = fmt.Errorf("task %s panicked: %v", task.Name, rec)
			telemetry.RecordError(span, err)
			for _, hook := range hooks {
				hook(ctx, task, err)
			}
		}
	}()

	start := time.Now()
	if err = h.Handle(ctx, task); err != nil {
		log.Error("Task failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		telemetry.RecordError(span, err)
		for _, hook := range hooks {
			hook(ctx, task, err)
		}
		return err
	}
	log.Info("Task completed", zap.Duration("duration", time.Since(start)))
	return nil
}
