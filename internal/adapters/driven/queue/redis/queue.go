package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

const (
	taskStream = "campuschat:tasks"
	taskGroup  = "campuschat:workers"

	taskKeyPrefix = "campuschat:task:"

	consumerPrefix = "worker-"

	// Task payloads expire on their own so a crashed worker cannot leak
	// keys forever
	taskTTL = 24 * time.Hour

	// How long before a claimed task is considered abandoned
	claimTimeout = 5 * time.Minute
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams. Consumer groups give
// at-least-once delivery across worker replicas; abandoned deliveries are
// reclaimed after claimTimeout.
//
// Each task lives in two places: its JSON payload under taskKey, and a
// slim stream entry carrying only the task ID. The payload survives
// redelivery; the stream entry is what gets acked.
type Queue struct {
	client       *redis.Client
	consumerName string
}

// taskKey addresses the JSON payload of a task.
func taskKey(taskID string) string { return taskKeyPrefix + taskID }

// deliveryKey remembers which stream entry delivered the task to us, so
// Ack and Nack can settle the right one.
func deliveryKey(taskID string) string { return taskKeyPrefix + taskID + ":msg" }

// NewQueue builds a queue on an existing Redis client and ensures the
// consumer group exists. consumerName must differ per worker replica;
// when empty a timestamped one is generated.
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = fmt.Sprintf("%s%d", consumerPrefix, time.Now().UnixNano())
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
	}

	err := q.client.XGroupCreateMkStream(context.Background(), taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return q, nil
}

// Enqueue stores the task payload and announces it on the stream
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, taskKey(task.ID), taskData, taskTTL)
	announce(ctx, pipe, task)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// announce adds the slim stream entry pointing at a stored payload
func announce(ctx context.Context, pipe redis.Pipeliner, task *domain.Task) {
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: taskStream,
		Values: map[string]interface{}{
			"task_id": task.ID,
			"type":    string(task.Type),
		},
	})
}

// DequeueWithTimeout retrieves the next available task, waiting up to
// timeout seconds. Returns nil, nil when no task arrives in time.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	// Reclaim work abandoned by a dead worker first
	if task, err := q.reclaimIdle(ctx); err == nil && task != nil {
		return task, nil
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    time.Duration(timeout) * time.Second,
	}).Result()

	if err != nil {
		switch {
		case errors.Is(err, redis.Nil),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}
	return q.checkout(ctx, streams[0].Messages[0])
}

// Ack settles a finished task: the stream entry, the payload and the
// delivery marker all go away
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	msgID, err := q.client.Get(ctx, deliveryKey(taskID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get message ID: %w", err)
	}

	pipe := q.client.Pipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}
	pipe.Del(ctx, taskKey(taskID))
	pipe.Del(ctx, deliveryKey(taskID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return nil
}

// Nack returns a failed task to the queue for retry; once MaxAttempts is
// exhausted the task is parked as failed until its payload key expires.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	task, err := q.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return errors.New("task not found")
	}

	msgID, _ := q.client.Get(ctx, deliveryKey(taskID)).Result()

	task.Attempts++
	task.Error = reason
	task.UpdatedAt = time.Now()
	retry := task.Attempts < task.MaxAttempts
	if retry {
		task.Status = domain.TaskStatusPending
	} else {
		task.Status = domain.TaskStatusFailed
	}
	taskData, _ := json.Marshal(task)

	pipe := q.client.Pipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}
	pipe.Del(ctx, deliveryKey(taskID))
	pipe.Set(ctx, taskKey(taskID), taskData, taskTTL)
	if retry {
		announce(ctx, pipe, task)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to nack task: %w", err)
	}
	return nil
}

// Ping checks if the queue backend is healthy
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close is a no-op; the Redis client is shared and closed by its owner
func (q *Queue) Close() error {
	return nil
}

// checkout loads the payload behind a stream entry, marks it processing
// and records which entry delivered it. Entries whose payload already
// expired are settled and skipped.
func (q *Queue) checkout(ctx context.Context, msg redis.XMessage) (*domain.Task, error) {
	taskID, ok := msg.Values["task_id"].(string)
	if !ok {
		q.settle(ctx, msg.ID)
		return nil, nil
	}

	task, err := q.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		q.settle(ctx, msg.ID)
		return nil, nil
	}

	task.Status = domain.TaskStatusProcessing
	task.UpdatedAt = time.Now()

	taskData, _ := json.Marshal(task)
	q.client.Set(ctx, taskKey(task.ID), taskData, taskTTL)
	q.client.Set(ctx, deliveryKey(task.ID), msg.ID, taskTTL)

	return task, nil
}

// settle acks and deletes a stream entry that will never be processed
func (q *Queue) settle(ctx context.Context, msgID string) {
	q.client.XAck(ctx, taskStream, taskGroup, msgID)
	q.client.XDel(ctx, taskStream, msgID)
}

func (q *Queue) loadTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKey(taskID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task := new(domain.Task)
	if err := json.Unmarshal([]byte(data), task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return task, nil
}

// reclaimIdle claims a delivery another worker took but never settled
func (q *Queue) reclaimIdle(ctx context.Context) (*domain.Task, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: taskStream,
		Group:  taskGroup,
		Start:  "-",
		End:    "+",
		Count:  10,
		Idle:   claimTimeout,
	}).Result()
	if err != nil {
		return nil, err
	}

	for _, p := range pending {
		claimed, err := q.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   taskStream,
			Group:    taskGroup,
			Consumer: q.consumerName,
			MinIdle:  claimTimeout,
			Messages: []string{p.ID},
		}).Result()
		if err != nil || len(claimed) == 0 {
			continue
		}

		task, err := q.checkout(ctx, claimed[0])
		if err != nil || task == nil {
			continue
		}
		return task, nil
	}
	return nil, nil
}

func isGroupExistsError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
