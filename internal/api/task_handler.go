package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/timbreworks/synth-api/internal/api/shared"
	"github.com/timbreworks/synth-api/internal/synthesis"
	"github.com/timbreworks/synth-api/internal/task"
)

// defaultListLimit bounds GET /api/tasks when no limit is given
const defaultListLimit = 50

// TaskHandler exposes the task registry and queue over HTTP
type TaskHandler struct {
	registry *task.Registry
	queue    *task.Queue
	logger   *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(registry *task.Registry, queue *task.Queue, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		registry: registry,
		queue:    queue,
		logger:   logger.With("component", "task_handler"),
	}
}

// Synthesize handles POST /api/synthesize requests. Work is asynchronous:
// the response is a 202 with the task id to poll.
func (h *TaskHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	payload, err := json.Marshal(synthesis.Request{
		Text:   req.Text,
		Voice:  req.Voice,
		Device: req.Device,
	})
	if err != nil {
		h.logger.Error("failed to marshal synthesis payload", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to submit task")
		return
	}

	id := h.registry.Register(synthesis.TypeSpeech, payload)
	if !h.queue.Enqueue(id) {
		// The registry records why; map queue saturation to 503 and
		// everything else to 500.
		status := http.StatusInternalServerError
		if t := h.registry.Get(id); t != nil && strings.Contains(t.Error, task.ErrQueueFull.Error()) {
			status = http.StatusServiceUnavailable
		}
		shared.RespondWithError(w, r, status, "Failed to enqueue task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		TaskID: id,
		Status: string(task.StatusQueued),
	})
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t := h.registry.Get(id)
	if t == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(*t))
}

// ListTasks handles GET /api/tasks requests with optional status and
// limit query parameters. Results are sorted newest-updated-first.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !task.ValidStatus(statusFilter) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status value")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit value")
			return
		}
		limit = parsed
	}

	tasks := h.registry.List(task.Status(statusFilter), limit)
	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, taskToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// DeleteTask handles DELETE /api/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !h.registry.Delete(id) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
