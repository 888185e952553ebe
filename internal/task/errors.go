package task

import "errors"

// Common errors returned by the queue
var (
	// ErrQueueFull is returned when the bounded queue cannot accept another task
	ErrQueueFull = errors.New("task queue is full")

	// ErrNoHandler is returned when a task's type has no registered handler
	ErrNoHandler = errors.New("no handler registered for task type")
)
