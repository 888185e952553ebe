package synthesis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbreworks/synth-api/internal/device"
	"github.com/timbreworks/synth-api/internal/task"
)

type fakeProbe struct {
	present bool
	free    uint64
}

func (p *fakeProbe) Present() bool               { return p.present }
func (p *fakeProbe) FreeMemory() (uint64, error) { return p.free, nil }
func (p *fakeProbe) Name() string                { return "fake accelerator" }

func newHandlerFixture(engines []Engine, probe device.Probe) (*task.Registry, *Synthesizer) {
	logger := testLogger()
	registry := task.NewRegistry(task.DefaultRegistryConfig(), logger)
	resolver := device.NewResolver(probe, 0, logger)
	return registry, NewSynthesizer(registry, resolver, engines, device.Auto, logger)
}

func TestHandleSuccess(t *testing.T) {
	engine := succeedingEngine("primary")
	registry, s := newHandlerFixture([]Engine{engine}, &fakeProbe{present: false})

	id := registry.Register(TypeSpeech, []byte(`{"text":"hello world"}`))
	snapshot := registry.Get(id)
	require.NotNil(t, snapshot)

	err := s.Handle(context.Background(), id, *snapshot)
	require.NoError(t, err)

	got := registry.Get(id)
	require.NotNil(t, got)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Contains(t, got.DeviceInfo, "cpu")
	assert.Empty(t, got.Error)

	res, ok := got.Result.(*Result)
	require.True(t, ok)
	assert.Equal(t, "primary", res.Engine)
}

func TestHandleCascadeExhaustion(t *testing.T) {
	registry, s := newHandlerFixture(
		[]Engine{unavailableEngine("primary"), unavailableEngine("secondary")},
		&fakeProbe{present: false},
	)

	id := registry.Register(TypeSpeech, []byte(`{"text":"hello"}`))
	snapshot := registry.Get(id)

	err := s.Handle(context.Background(), id, *snapshot)
	require.NoError(t, err, "exhaustion is reported on the task, not the worker")

	got := registry.Get(id)
	assert.Equal(t, task.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "synthesis failed")
	assert.Nil(t, got.Result)
}

func TestHandleInvalidPayload(t *testing.T) {
	registry, s := newHandlerFixture([]Engine{succeedingEngine("primary")}, &fakeProbe{present: false})

	id := registry.Register(TypeSpeech, []byte(`{not json`))
	snapshot := registry.Get(id)

	err := s.Handle(context.Background(), id, *snapshot)
	require.NoError(t, err)

	got := registry.Get(id)
	assert.Equal(t, task.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "invalid synthesis payload")
}

func TestHandleRequestedDeviceOverridesConfig(t *testing.T) {
	var seen []string
	engine := &fakeEngine{name: "primary"}
	engine.fn = func(dev string) (*Result, error) {
		seen = append(seen, dev)
		return &Result{Path: "out.wav", Engine: "primary"}, nil
	}
	registry, s := newHandlerFixture([]Engine{engine}, &fakeProbe{present: true, free: 8 << 30})

	// Payload asks for cpu even though the accelerator is available.
	id := registry.Register(TypeSpeech, []byte(`{"text":"hi","device":"cpu"}`))
	snapshot := registry.Get(id)

	require.NoError(t, s.Handle(context.Background(), id, *snapshot))
	require.Equal(t, []string{device.CPU}, seen)
	assert.Equal(t, task.StatusCompleted, registry.Get(id).Status)
}
