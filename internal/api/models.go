package api

import (
	"time"

	"github.com/timbreworks/synth-api/internal/task"
)

// SynthesizeRequest is the request body for submitting a synthesis job
type SynthesizeRequest struct {
	Text   string `json:"text"   validate:"required,max=5000"`
	Voice  string `json:"voice"  validate:"omitempty,max=64"`
	Device string `json:"device" validate:"omitempty,oneof=auto cuda cpu"`
}

// TaskResponse is the boundary representation of a task record
type TaskResponse struct {
	TaskID     string    `json:"task_id"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message,omitempty"`
	Result     any       `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	DeviceInfo string    `json:"device_info,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SubmitResponse acknowledges an accepted synthesis job
type SubmitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// taskToResponse converts a task record to its boundary representation.
// The payload is internal and never exposed.
func taskToResponse(t task.Task) TaskResponse {
	return TaskResponse{
		TaskID:     t.ID,
		Status:     string(t.Status),
		Progress:   t.Progress,
		Message:    t.Message,
		Result:     t.Result,
		Error:      t.Error,
		DeviceInfo: t.DeviceInfo,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
