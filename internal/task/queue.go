package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// QueueConfig holds configuration for the task queue and its worker
type QueueConfig struct {
	// Size determines the buffer capacity of the FIFO hand-off channel
	Size int
}

// DefaultQueueConfig returns a QueueConfig with reasonable defaults
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Size: 32,
	}
}

// Queue is the FIFO hand-off between registration and execution. A single
// long-lived worker goroutine drains it and invokes the matching handler,
// so exactly one task is in flight at any instant; the synthesis backends
// are not safe to share across concurrent invocations, and serializing here
// avoids device-level locking everywhere else.
type Queue struct {
	registry *Registry
	handlers *HandlerRegistry
	ids      chan string
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewQueue creates a task queue wired to the given registries. The worker
// is not started until Start or the first Enqueue.
func NewQueue(registry *Registry, handlers *HandlerRegistry, config QueueConfig, logger *slog.Logger) *Queue {
	if config.Size <= 0 {
		config.Size = DefaultQueueConfig().Size
	}
	return &Queue{
		registry: registry,
		handlers: handlers,
		ids:      make(chan string, config.Size),
		logger:   logger.With("component", "task_queue"),
	}
}

// Enqueue moves a registered task into the queue and ensures the worker is
// running. The failure modes are synchronous and recorded on the task
// itself: an unknown id returns false, a type with no registered handler
// marks the task failed without queuing it, and a saturated queue marks it
// failed with a queue-full error.
func (q *Queue) Enqueue(id string) bool {
	t := q.registry.Get(id)
	if t == nil {
		q.logger.Warn("enqueue of unknown task id", "task_id", id)
		return false
	}

	if _, ok := q.handlers.Lookup(t.Type); !ok {
		q.registry.Fail(id, fmt.Sprintf("%s: %q", ErrNoHandler.Error(), t.Type))
		q.logger.Warn("enqueue rejected, no handler for type",
			"task_id", id,
			"task_type", t.Type)
		return false
	}

	q.registry.SetStatus(id, StatusQueued)

	select {
	case q.ids <- id:
		q.Start()
		q.logger.Debug("task enqueued",
			"task_id", id,
			"task_type", t.Type,
			"queue_len", len(q.ids),
			"queue_cap", cap(q.ids))
		return true
	default:
		q.registry.Fail(id, fmt.Sprintf("%s: capacity %d reached", ErrQueueFull.Error(), cap(q.ids)))
		q.logger.Warn("enqueue rejected, queue full", "task_id", id)
		return false
	}
}

// Start launches the worker goroutine if it is not already running. It is
// safe to call repeatedly and after Stop.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.done = make(chan struct{})
	q.running = true

	go q.run(ctx, q.done)
	q.logger.Info("worker started")
}

// Stop signals the worker to exit and waits for it. The stop signal is
// observed only between dequeue iterations: a handler that never returns
// blocks shutdown indefinitely. Tasks still buffered remain queued and are
// drained if the queue is started again.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	cancel := q.cancel
	done := q.done
	q.mu.Unlock()

	cancel()
	<-done
	q.logger.Info("worker stopped")
}

// run is the worker loop. It never exits on a task failure; every error is
// recorded on the task and the loop continues.
func (q *Queue) run(ctx context.Context, done chan struct{}) {
	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.ids:
			q.process(ctx, id)
		}
	}
}

// process executes a single dequeued task through its handler. The handler
// is the source of truth for the terminal status when it exits cleanly; the
// worker's recover/error guard is the safety net for unhandled crashes.
func (q *Queue) process(ctx context.Context, id string) {
	logger := q.logger.With("task_id", id)

	t := q.registry.Get(id)
	if t == nil {
		logger.Warn("dequeued task no longer in registry")
		return
	}

	handler, ok := q.handlers.Lookup(t.Type)
	if !ok {
		q.registry.Fail(id, fmt.Sprintf("%s: %q", ErrNoHandler.Error(), t.Type))
		logger.Warn("dequeued task has no handler", "task_type", t.Type)
		return
	}

	q.registry.SetStatus(id, StatusProcessing)
	logger.Info("processing task", "task_type", t.Type)

	snapshot := q.registry.Get(id)
	if snapshot == nil {
		// Evicted between the status write and the snapshot read.
		logger.Warn("task evicted before handler invocation")
		return
	}

	// The stop signal must never reach in-flight work: it is observed
	// only between dequeue iterations, so the handler gets a context
	// that survives Stop.
	err := q.invoke(context.WithoutCancel(ctx), handler, id, *snapshot)
	if err != nil {
		q.registry.Fail(id, err.Error())
		logger.Error("task failed", "error", err)
		return
	}

	if after := q.registry.Get(id); after != nil && !after.Status.Terminal() {
		// The handler exited cleanly without declaring an outcome. The
		// worker does not force-complete; handlers own the terminal status.
		logger.Warn("handler returned without terminal status",
			"status", after.Status)
	} else {
		logger.Info("task finished")
	}
}

// invoke runs the handler, converting a panic into an error so a crashing
// handler can never take down the worker loop.
func (q *Queue) invoke(ctx context.Context, handler Handler, id string, snapshot Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, id, snapshot)
}
