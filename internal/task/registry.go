package task

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RegistryConfig holds retention settings for the task registry
type RegistryConfig struct {
	// MaxTasks is the registry capacity; reaching it triggers an eviction pass
	MaxTasks int

	// KeepNewest is how many tasks survive an eviction pass, ranked by UpdatedAt
	KeepNewest int
}

// DefaultRegistryConfig returns a RegistryConfig with reasonable defaults
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		MaxTasks:   100,
		KeepNewest: 50,
	}
}

// Registry is the authoritative in-memory store of task records. All reads
// and writes go through a single mutex so no caller ever observes a
// partially-updated record. Registries are constructed explicitly and
// injected; there is no package-level instance.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	config RegistryConfig
	logger *slog.Logger
}

// NewRegistry creates a new task registry with the given retention settings
func NewRegistry(config RegistryConfig, logger *slog.Logger) *Registry {
	if config.MaxTasks <= 0 {
		config.MaxTasks = DefaultRegistryConfig().MaxTasks
	}
	if config.KeepNewest <= 0 || config.KeepNewest > config.MaxTasks {
		config.KeepNewest = config.MaxTasks / 2
	}
	return &Registry{
		tasks:  make(map[string]*Task),
		config: config,
		logger: logger.With("component", "task_registry"),
	}
}

// Register allocates a new task of the given type in status pending and
// returns its id. The payload is the serialized request the handler will
// consume. If the registry is at capacity, the eviction pass runs first.
func (r *Registry) Register(taskType string, payload []byte) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tasks) >= r.config.MaxTasks {
		r.evictLocked()
	}

	now := time.Now()
	t := &Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tasks[t.ID] = t

	r.logger.Debug("task registered",
		"task_id", t.ID,
		"task_type", taskType,
		"registry_size", len(r.tasks))
	return t.ID
}

// Update applies the patch to the task and refreshes UpdatedAt. It returns
// false without error if the id is unknown, so callers racing with eviction
// degrade to a no-op.
func (r *Registry) Update(id string, p Patch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return false
	}
	p.apply(t)
	t.UpdatedAt = time.Now()
	return true
}

// SetStatus updates only the task's status
func (r *Registry) SetStatus(id string, status Status) bool {
	return r.Update(id, Patch{Status: &status})
}

// Fail moves the task to status failed with the given error description
func (r *Registry) Fail(id string, errMsg string) bool {
	status := StatusFailed
	return r.Update(id, Patch{Status: &status, Error: &errMsg})
}

// Get returns a copy of the task record, or nil if the id is unknown
func (r *Registry) Get(id string) *Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil
	}
	copied := *t
	return &copied
}

// List returns up to limit task copies sorted newest-UpdatedAt-first,
// optionally filtered by status. An empty status matches everything; a
// non-positive limit means no limit.
func (r *Registry) List(status Status, limit int) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Delete removes the task from the registry, returning false if unknown
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false
	}
	delete(r.tasks, id)
	return true
}

// Len returns the current number of records in the registry
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// evictLocked retains only the KeepNewest tasks ranked by UpdatedAt and
// discards the rest. Ranking ignores status, so a task still processing can
// be evicted out from under the worker; subsequent updates on its id become
// no-ops. Caller holds the mutex.
func (r *Registry) evictLocked() {
	if len(r.tasks) <= r.config.KeepNewest {
		return
	}

	ranked := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].UpdatedAt.After(ranked[j].UpdatedAt)
	})

	evicted := 0
	for _, t := range ranked[r.config.KeepNewest:] {
		delete(r.tasks, t.ID)
		evicted++
	}
	r.logger.Info("registry eviction pass completed",
		"evicted", evicted,
		"kept", len(r.tasks))
}
