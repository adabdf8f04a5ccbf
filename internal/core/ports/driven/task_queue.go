package driven

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// TaskQueue hands background jobs (conversation title generation) to the
// worker. Backed by Redis; when Redis is absent the queue is nil and the
// features that need it degrade silently.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next task, waiting up to timeout
	// seconds. Returns nil, nil when no task arrives in time.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task
	Ack(ctx context.Context, taskID string) error

	// Nack returns a failed task to the queue for retry; once MaxAttempts
	// is exhausted the task is parked as failed.
	Nack(ctx context.Context, taskID string, reason string) error

	// Ping checks if the queue backend is healthy
	Ping(ctx context.Context) error

	// Close cleans up resources
	Close() error
}
