package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
	"github.com/campushq/campuschat-core/internal/runtime"
)

const (
	// titlePrompt asks for a short label, not an answer
	titlePrompt = "Summarize the following conversation in at most five words. " +
		"Reply with the title only, no quotes and no punctuation at the end."

	// maxTitleLen caps the stored title length in runes
	maxTitleLen = 60

	// titleLockTTL bounds how long a replica may hold a conversation's
	// title lock
	titleLockTTL = time.Minute

	// titleHistoryLimit is how many messages feed the title prompt
	titleHistoryLimit = 6
)

// Worker processes tasks from the task queue. Its only job today is
// conversation title generation: after the first exchange the chat service
// enqueues a title task, and the worker asks the LLM for a short label.
type Worker struct {
	taskQueue  driven.TaskQueue
	services   *runtime.Services
	userConvs  driven.ConversationStore
	guestConvs driven.ConversationStore
	lock       driven.DistributedLock // may be nil when running a single replica
	logger     *slog.Logger

	concurrency    int
	dequeueTimeout int // seconds

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue      driven.TaskQueue
	Services       *runtime.Services
	UserConvs      driven.ConversationStore
	GuestConvs     driven.ConversationStore
	Lock           driven.DistributedLock
	Logger         *slog.Logger
	Concurrency    int // Number of concurrent task processors
	DequeueTimeout int // Seconds to wait for a task before checking again
}

// New builds a worker from cfg, filling in a default logger, a single
// processor and a five second dequeue wait where unset.
func New(cfg Config) *Worker {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = 5
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		services:       cfg.Services,
		userConvs:      cfg.UserConvs,
		guestConvs:     cfg.GuestConvs,
		lock:           cfg.Lock,
		logger:         cfg.Logger,
		concurrency:    cfg.Concurrency,
		dequeueTimeout: cfg.DequeueTimeout,
	}
}

// Start launches the processor goroutines. Calling Start on a running
// worker is a no-op; the loops run until Stop or context cancellation.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop signals the loops and blocks until every in-flight task settles
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop polls the queue until told to stop
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // back off so a down Redis is not hammered
			continue
		}
		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask dispatches one task and settles it: ack on success, nack
// with the failure reason otherwise
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type)
	logger.Info("processing task")

	started := time.Now()

	var err error
	switch task.Type {
	case domain.TaskTypeTitle:
		err = w.handleTitle(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	if err != nil {
		logger.Error("task failed", "duration", time.Since(started), "error", err)
		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed", "duration", time.Since(started))
	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleTitle generates and stores a title for a conversation.
func (w *Worker) handleTitle(ctx context.Context, task *domain.Task) error {
	convID := task.ConversationID()
	if convID == "" {
		return fmt.Errorf("conversation_id not found in task payload")
	}

	store := w.userConvs
	if task.GuestID() != "" {
		store = w.guestConvs
	}

	// Another replica may already be titling this thread
	if w.lock != nil {
		acquired, err := w.lock.Acquire(ctx, "title:"+convID, titleLockTTL)
		if err != nil {
			return fmt.Errorf("acquire title lock: %w", err)
		}
		if !acquired {
			return nil
		}
		defer func() {
			_ = w.lock.Release(ctx, "title:"+convID)
		}()
	}

	llm := w.services.LLMService()
	if llm == nil {
		return domain.ErrProviderNotConfigured
	}

	msgs, err := store.GetMessages(ctx, convID, titleHistoryLimit)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	if len(msgs) == 0 {
		// Thread vanished (guest TTL) or has no content; nothing to title
		return nil
	}

	var transcript strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	title, err := llm.Chat(ctx,
		[]domain.ChatMessage{
			{Role: domain.RoleSystem, Content: titlePrompt},
			{Role: domain.RoleUser, Content: transcript.String()},
		},
		domain.ChatOptions{Temperature: 0.3, MaxTokens: 20},
	)
	if err != nil {
		return fmt.Errorf("generate title: %w", err)
	}

	title = cleanTitle(title)
	if title == "" {
		return nil
	}

	if err := store.UpdateTitle(ctx, convID, title); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("store title: %w", err)
	}

	return nil
}

// cleanTitle strips quotes and whitespace the model tends to add and caps
// the length.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}
	return title
}

// Health reports whether the loops run and the queue answers
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health probes the worker and its queue backend
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	health := Health{Running: w.running}
	w.mu.RUnlock()

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}
	return health
}
