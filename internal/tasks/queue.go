// Package tasks provides an in-memory queue for advisory background work.
// Tasks are published fire-and-forget after a statement commit; a handler
// failure is logged and dropped, never surfaced to the publisher. Suitable
// for a single-process CLI; a broker-backed queue would slot in behind the
// same interface.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tallyflow/tally/internal/service"
)

// Task kinds published by the ingestion pipeline.
const (
	KindGenerateInsight = "generate_insight"
)

// Handler processes one task. Returning an error only affects logging.
type Handler func(ctx context.Context, task service.Task) error

// Queue is a channel-backed task queue with a fixed worker pool. It is safe
// for concurrent use.
type Queue struct {
	taskChan  chan service.Task
	closeChan chan struct{}
	handler   Handler
	logger    *slog.Logger
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

// NewQueue creates a queue and starts its workers. bufferSize bounds how many
// tasks may be pending before Publish blocks.
func NewQueue(bufferSize, workers int, handler Handler, logger *slog.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		taskChan:  make(chan service.Task, bufferSize),
		closeChan: make(chan struct{}),
		handler:   handler,
		logger:    logger,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

// Publish enqueues a task. It blocks only when the buffer is full, never on
// task execution.
func (q *Queue) Publish(ctx context.Context, task service.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("task queue is closed")
	}

	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	select {
	case q.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("task queue is closed")
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.closeChan:
			// Drain what is already buffered before exiting.
			for {
				select {
				case task := <-q.taskChan:
					q.run(task)
				default:
					return
				}
			}
		case task := <-q.taskChan:
			q.run(task)
		}
	}
}

func (q *Queue) run(task service.Task) {
	if q.handler == nil {
		return
	}

	if err := q.handler(context.Background(), task); err != nil {
		q.logger.Warn("background task failed",
			"task_id", task.ID,
			"kind", task.Kind,
			"statement_id", task.StatementID,
			"error", err)
		return
	}

	q.logger.Debug("background task completed",
		"task_id", task.ID,
		"kind", task.Kind)
}

// Close stops accepting tasks and waits for in-flight and buffered tasks to
// finish.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

var _ service.TaskQueue = (*Queue)(nil)
