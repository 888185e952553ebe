package task

import (
	"time"
)

// Status represents the current state of a task
type Status string

// Possible task status values
const (
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is a final state that the worker
// and handlers will not transition out of.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ValidStatus reports whether the given string names a known status.
// Used by the boundary layer to validate list filters.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Task represents a unit of trackable background work. Records are owned
// by the Registry; callers always operate on copies.
type Task struct {
	// ID is the task's unique identifier, assigned at registration
	ID string

	// Type identifies which registered handler processes this task
	Type string

	// Payload carries the serialized request data for the handler
	Payload []byte

	// Status is the task's position in the lifecycle state machine
	Status Status

	// Progress is a 0-100 completion estimate reported by the handler
	Progress int

	// Message is a free-form human-readable status string
	Message string

	// Result is the opaque success payload; presence implies completion
	Result any

	// Error is the failure description; presence implies failure
	Error string

	// DeviceInfo describes which compute backend executed the task
	DeviceInfo string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patch describes a partial update to a task record. Nil fields are left
// untouched; Result is applied when non-nil.
type Patch struct {
	Status     *Status
	Progress   *int
	Message    *string
	Result     any
	Error      *string
	DeviceInfo *string
}

// apply copies the patch's set fields onto the task. Caller holds the
// registry mutex.
func (p Patch) apply(t *Task) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Message != nil {
		t.Message = *p.Message
	}
	if p.Result != nil {
		t.Result = p.Result
	}
	if p.Error != nil {
		t.Error = *p.Error
	}
	if p.DeviceInfo != nil {
		t.DeviceInfo = *p.DeviceInfo
	}
}
