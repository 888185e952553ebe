package synthesis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/timbreworks/synth-api/internal/device"
)

// Candidate pairs an engine with the device it should run on
type Candidate struct {
	Engine Engine
	Device string
}

// Candidates builds the ordered attempt list for a resolved device. On an
// accelerator the full precedence is every engine on the accelerator, then
// every engine on cpu; on cpu only the cpu column applies. Expressing the
// order as data keeps the precedence auditable in one place.
func Candidates(engines []Engine, resolved string) []Candidate {
	var out []Candidate
	if resolved == device.CUDA {
		for _, e := range engines {
			out = append(out, Candidate{Engine: e, Device: device.CUDA})
		}
	}
	for _, e := range engines {
		out = append(out, Candidate{Engine: e, Device: device.CPU})
	}
	return out
}

// RunCascade attempts each candidate in order and returns the first
// success along with the device it ran on.
//
// Two failure axes are handled with distinct strategies, nested one inside
// the other: an ErrEngineUnavailable means the implementation itself is
// unusable, so the cascade advances to the next candidate; a generic
// failure on an accelerator may be a transient device problem, so the same
// engine is retried once on cpu before the cascade gives up on it. When
// every candidate is exhausted the last observed error is surfaced.
func RunCascade(ctx context.Context, candidates []Candidate, req Request, logger *slog.Logger) (*Result, string, error) {
	if len(candidates) == 0 {
		return nil, "", ErrNoCandidates
	}

	var lastErr error
	for _, c := range candidates {
		res, err := c.Engine.Synthesize(ctx, req, c.Device)
		if err == nil {
			return res, c.Device, nil
		}
		lastErr = err

		if errors.Is(err, ErrEngineUnavailable) {
			logger.Warn("engine unavailable, advancing to next candidate",
				"engine", c.Engine.Name(),
				"device", c.Device,
				"error", err)
			continue
		}

		if c.Device == device.CUDA {
			logger.Warn("accelerator synthesis failed, retrying same engine on cpu",
				"engine", c.Engine.Name(),
				"error", err)
			res, cpuErr := c.Engine.Synthesize(ctx, req, device.CPU)
			if cpuErr == nil {
				return res, device.CPU, nil
			}
			lastErr = cpuErr
		}

		logger.Warn("synthesis candidate failed",
			"engine", c.Engine.Name(),
			"device", c.Device,
			"error", lastErr)
	}

	return nil, "", lastErr
}
