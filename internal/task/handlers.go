package task

import (
	"context"
	"log/slog"
	"sync"
)

// Handler performs the work for one task type. It receives the task id and
// a snapshot of the record taken just before invocation, and reports
// progress and its terminal outcome through the registry's Update. A
// returned error (or a panic) is captured by the worker's safety net and
// marks the task failed.
type Handler func(ctx context.Context, id string, snapshot Task) error

// HandlerRegistry maps task types to their handlers. Registration is
// last-writer-wins; the core never retries a handler invocation itself.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewHandlerRegistry creates an empty handler registry
func NewHandlerRegistry(logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]Handler),
		logger:   logger.With("component", "handler_registry"),
	}
}

// Register associates a task type with a handler, silently replacing any
// previous registration for the same type.
func (h *HandlerRegistry) Register(taskType string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.handlers[taskType]; exists {
		h.logger.Debug("replacing handler registration", "task_type", taskType)
	}
	h.handlers[taskType] = handler
}

// Lookup returns the handler for the given task type
func (h *HandlerRegistry) Lookup(taskType string) (Handler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	handler, ok := h.handlers[taskType]
	return handler, ok
}
