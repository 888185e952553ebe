package task

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbreworks/synth-api/internal/platform/logger"
)

func testLogger() *slog.Logger {
	return logger.Discard()
}

func newTestRegistry(maxTasks, keepNewest int) *Registry {
	return NewRegistry(RegistryConfig{
		MaxTasks:   maxTasks,
		KeepNewest: keepNewest,
	}, testLogger())
}

func TestRegister(t *testing.T) {
	r := newTestRegistry(10, 5)

	id := r.Register("speech_synthesis", []byte(`{"text":"hi"}`))
	require.NotEmpty(t, id)

	got := r.Get(id)
	require.NotNil(t, got)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "speech_synthesis", got.Type)
	assert.Equal(t, []byte(`{"text":"hi"}`), got.Payload)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	// IDs must be unique
	other := r.Register("speech_synthesis", nil)
	assert.NotEqual(t, id, other)
}

func TestUpdate(t *testing.T) {
	r := newTestRegistry(10, 5)

	t.Run("unknown id is a no-op", func(t *testing.T) {
		progress := 50
		ok := r.Update("no-such-id", Patch{Progress: &progress})
		assert.False(t, ok)
	})

	t.Run("partial patch applies and bumps UpdatedAt", func(t *testing.T) {
		id := r.Register("echo", nil)
		before := r.Get(id).UpdatedAt

		time.Sleep(2 * time.Millisecond)

		progress := 50
		message := "halfway"
		ok := r.Update(id, Patch{Progress: &progress, Message: &message})
		require.True(t, ok)

		got := r.Get(id)
		assert.Equal(t, 50, got.Progress)
		assert.Equal(t, "halfway", got.Message)
		assert.Equal(t, StatusPending, got.Status, "untouched fields stay put")
		assert.True(t, got.UpdatedAt.After(before))
	})

	t.Run("result patch", func(t *testing.T) {
		id := r.Register("echo", nil)
		status := StatusCompleted
		ok := r.Update(id, Patch{Status: &status, Result: map[string]any{"ok": true}})
		require.True(t, ok)

		got := r.Get(id)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.Equal(t, map[string]any{"ok": true}, got.Result)
	})
}

func TestGetReturnsCopy(t *testing.T) {
	r := newTestRegistry(10, 5)
	id := r.Register("echo", nil)

	first := r.Get(id)
	first.Message = "mutated by caller"

	assert.Empty(t, r.Get(id).Message)
}

func TestList(t *testing.T) {
	r := newTestRegistry(10, 5)

	a := r.Register("echo", nil)
	time.Sleep(2 * time.Millisecond)
	b := r.Register("echo", nil)
	time.Sleep(2 * time.Millisecond)
	c := r.Register("echo", nil)

	// Touch a so it becomes the most recently updated.
	time.Sleep(2 * time.Millisecond)
	require.True(t, r.Fail(a, "boom"))

	t.Run("sorted newest-updated-first", func(t *testing.T) {
		got := r.List("", 0)
		require.Len(t, got, 3)
		assert.Equal(t, a, got[0].ID)
		assert.Equal(t, c, got[1].ID)
		assert.Equal(t, b, got[2].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		got := r.List(StatusFailed, 0)
		require.Len(t, got, 1)
		assert.Equal(t, a, got[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		got := r.List("", 2)
		require.Len(t, got, 2)
		assert.Equal(t, a, got[0].ID)
	})
}

func TestDelete(t *testing.T) {
	r := newTestRegistry(10, 5)
	id := r.Register("echo", nil)

	assert.True(t, r.Delete(id))
	assert.Nil(t, r.Get(id))
	assert.False(t, r.Delete(id))
}

func TestEviction(t *testing.T) {
	r := newTestRegistry(5, 2)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, r.Register("echo", nil))
		time.Sleep(2 * time.Millisecond)
	}

	// Touch the two oldest so recency diverges from creation order.
	require.True(t, r.SetStatus(ids[0], StatusQueued))
	time.Sleep(2 * time.Millisecond)
	require.True(t, r.SetStatus(ids[1], StatusQueued))
	time.Sleep(2 * time.Millisecond)

	// At capacity: this registration evicts down to KeepNewest first.
	newest := r.Register("echo", nil)

	assert.Equal(t, 3, r.Len(), "keep_newest survivors plus the new task")
	assert.NotNil(t, r.Get(newest))
	assert.NotNil(t, r.Get(ids[0]))
	assert.NotNil(t, r.Get(ids[1]))
	for _, id := range ids[2:] {
		assert.Nil(t, r.Get(id), "task %s should have been evicted", id)
	}
}

func TestEvictionIgnoresStatus(t *testing.T) {
	r := newTestRegistry(3, 1)

	processing := r.Register("echo", nil)
	require.True(t, r.SetStatus(processing, StatusProcessing))
	time.Sleep(2 * time.Millisecond)
	r.Register("echo", nil)
	time.Sleep(2 * time.Millisecond)
	r.Register("echo", nil)

	// Eviction ranks purely by UpdatedAt; the processing task is oldest
	// and goes. Later updates on it degrade to no-ops.
	r.Register("echo", nil)
	assert.Nil(t, r.Get(processing))
	assert.False(t, r.Fail(processing, "late update"))
}
