package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/timbreworks/synth-api/internal/device"
	"github.com/timbreworks/synth-api/internal/task"
)

// Synthesizer is the task handler for TypeSpeech. It resolves the target
// device, runs the fallback cascade over its engines, and reports
// progress, device info and the terminal outcome through the registry.
type Synthesizer struct {
	registry      *task.Registry
	resolver      *device.Resolver
	engines       []Engine
	defaultDevice string
	logger        *slog.Logger
}

// NewSynthesizer creates the speech synthesis handler. Engine order is the
// cascade's implementation precedence; defaultDevice applies when the
// request does not name one.
func NewSynthesizer(registry *task.Registry, resolver *device.Resolver, engines []Engine, defaultDevice string, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		registry:      registry,
		resolver:      resolver,
		engines:       engines,
		defaultDevice: defaultDevice,
		logger:        logger.With("component", "synthesizer"),
	}
}

// Handle implements task.Handler. Cascade exhaustion is reported by
// marking the task failed here; only an unexpected crash reaches the
// worker's safety net.
func (s *Synthesizer) Handle(ctx context.Context, id string, snapshot task.Task) error {
	var req Request
	if err := json.Unmarshal(snapshot.Payload, &req); err != nil {
		s.registry.Fail(id, fmt.Sprintf("invalid synthesis payload: %v", err))
		return nil
	}

	s.progress(id, 10, "resolving device")
	preference := req.Device
	if preference == "" {
		preference = s.defaultDevice
	}
	resolved := s.resolver.Resolve(preference)
	info := s.resolver.Describe(resolved)
	s.registry.Update(id, task.Patch{DeviceInfo: &info})

	s.progress(id, 25, fmt.Sprintf("synthesizing on %s", resolved))
	candidates := Candidates(s.engines, resolved)
	res, usedDevice, err := RunCascade(ctx, candidates, req, s.logger.With("task_id", id))
	if err != nil {
		s.registry.Fail(id, fmt.Sprintf("synthesis failed: %v", err))
		return nil
	}

	if usedDevice != resolved {
		info = s.resolver.Describe(usedDevice)
	}
	completed := task.StatusCompleted
	progress := 100
	message := "synthesis complete"
	s.registry.Update(id, task.Patch{
		Status:     &completed,
		Progress:   &progress,
		Message:    &message,
		Result:     res,
		DeviceInfo: &info,
	})

	s.logger.Info("synthesis finished",
		"task_id", id,
		"engine", res.Engine,
		"device", usedDevice,
		"bytes", res.Bytes)
	return nil
}

func (s *Synthesizer) progress(id string, pct int, msg string) {
	s.registry.Update(id, task.Patch{Progress: &pct, Message: &msg})
}
