package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Names of the asynchronous tasks the worker knows how to run
const (
	TaskSyncWhatsAppApps      = "sync_whatsapp_apps"
	TaskSyncCloudWABAs        = "sync_whatsapp_cloud_wabas"
	TaskSyncCloudPhoneNumbers = "sync_whatsapp_cloud_phone_numbers"
	TaskCreateProductsByFeed  = "create_products_by_feed"
)

// Task is a named unit of deferred work with JSON keyword arguments.
// Delivery is at-least-once: handlers must tolerate duplicates.
type Task struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Kwargs     json.RawMessage `json:"kwargs,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewTask builds a task, encoding kwargs as JSON. A nil kwargs yields an
// empty argument set.
func NewTask(name string, kwargs any) (Task, error) {
	t := Task{
		ID:         uuid.New(),
		Name:       name,
		EnqueuedAt: time.Now(),
	}
	if kwargs != nil {
		raw, err := json.Marshal(kwargs)
		if err != nil {
			return Task{}, fmt.Errorf("encode kwargs for task %s: %w", name, err)
		}
		t.Kwargs = raw
	}
	return t, nil
}

// Decode unmarshals the task arguments into v
func (t Task) Decode(v any) error {
	if len(t.Kwargs) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Kwargs, v); err != nil {
		return fmt.Errorf("decode kwargs for task %s: %w", t.Name, err)
	}
	return nil
}

// TaskQueue submits tasks for out-of-process execution. Callers never wait
// for the result.
type TaskQueue interface {
	Enqueue(ctx context.Context, task Task) error
}

// TaskHandler executes one kind of task
type TaskHandler interface {
	Handle(ctx context.Context, task Task) error
}

// TaskHandlerFunc adapts a function to TaskHandler
type TaskHandlerFunc func(ctx context.Context, task Task) error

// Handle calls f(ctx, task)
func (f TaskHandlerFunc) Handle(ctx context.Context, task Task) error {
	return f(ctx, task)
}

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker provides key-based mutual exclusion across processes.
// TryAcquire never blocks: acquired is false when another holder owns key.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (lock Lock, acquired bool, err error)
}
