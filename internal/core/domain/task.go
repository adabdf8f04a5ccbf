package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeTitle asks the LLM for a short conversation title
	TaskTypeTitle TaskType = "conversation_title"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is a background job handed to the worker through the queue. The
// payload is a flat string map so new task types do not need new wire
// types; accessors below name the keys the title task uses.
type Task struct {
	ID      string            `json:"id"`
	Type    TaskType          `json:"type"`
	Payload map[string]string `json:"payload"`

	Status      TaskStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`

	// Error holds the most recent failure reason
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a pending task with three attempts
func NewTask(taskType TaskType, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:          GenerateID(),
		Type:        taskType,
		Payload:     payload,
		Status:      TaskStatusPending,
		MaxAttempts: 3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTitleTask asks the worker to title a conversation. guestID is empty
// for staff threads; when set, the worker looks the thread up in the
// guest store instead.
func NewTitleTask(conversationID, guestID string) *Task {
	return NewTask(TaskTypeTitle, map[string]string{
		"conversation_id": conversationID,
		"guest_id":        guestID,
	})
}

// ConversationID extracts the conversation_id from the payload
func (t *Task) ConversationID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["conversation_id"]
}

// GuestID extracts the guest_id from the payload (empty for user threads)
func (t *Task) GuestID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["guest_id"]
}
