// Package device decides which compute backend a task should run on,
// based on the caller's preference and the accelerator's current state.
package device

import (
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/v4/mem"
)

// Known device identifiers
const (
	// Auto lets the resolver pick based on accelerator availability
	Auto = "auto"

	// CUDA targets the accelerator
	CUDA = "cuda"

	// CPU targets general-purpose compute
	CPU = "cpu"
)

// DefaultMinFreeBytes is the accelerator free-memory floor below which
// auto resolution downgrades to CPU.
const DefaultMinFreeBytes = 2 << 30 // 2 GiB

// Probe reports the accelerator's presence and state. Implementations
// must be cheap enough to call on every resolution.
type Probe interface {
	// Present reports whether an accelerator is available at all
	Present() bool

	// FreeMemory returns the accelerator's free memory in bytes
	FreeMemory() (uint64, error)

	// Name returns a human-readable accelerator description
	Name() string
}

// Resolver maps a device preference onto a concrete backend. An explicit
// CPU request is always honored; an explicit accelerator request degrades
// to CPU with a warning when no accelerator is present, never an error.
type Resolver struct {
	probe   Probe
	minFree uint64
	logger  *slog.Logger
}

// NewResolver creates a resolver using the given probe. A zero minFree
// falls back to DefaultMinFreeBytes.
func NewResolver(probe Probe, minFree uint64, logger *slog.Logger) *Resolver {
	if minFree == 0 {
		minFree = DefaultMinFreeBytes
	}
	return &Resolver{
		probe:   probe,
		minFree: minFree,
		logger:  logger.With("component", "device_resolver"),
	}
}

// Resolve returns the backend to use for the given preference. Unknown
// preferences are treated as Auto.
func (r *Resolver) Resolve(preference string) string {
	switch preference {
	case CPU:
		return CPU

	case CUDA:
		if !r.probe.Present() {
			r.logger.Warn("accelerator requested but not present, using cpu")
			return CPU
		}
		return CUDA

	default:
		// Empty means "caller did not ask"; both fall through to auto.
		if preference != Auto && preference != "" {
			r.logger.Warn("unknown device preference, resolving as auto",
				"preference", preference)
		}
		if !r.probe.Present() {
			r.logger.Info("no accelerator present, using cpu")
			return CPU
		}
		free, err := r.probe.FreeMemory()
		if err != nil {
			r.logger.Warn("accelerator memory probe failed, using cpu", "error", err)
			return CPU
		}
		if free < r.minFree {
			r.logger.Info("accelerator memory below threshold, using cpu",
				"free_bytes", free,
				"min_free_bytes", r.minFree)
			return CPU
		}
		return CUDA
	}
}

// Describe returns a human-readable device string for task records, e.g.
// "cuda: NVIDIA GeForce RTX 3060 (5.2 GiB free)" or "cpu (11.8 GiB free)".
func (r *Resolver) Describe(resolved string) string {
	if resolved == CUDA {
		if free, err := r.probe.FreeMemory(); err == nil {
			return fmt.Sprintf("cuda: %s (%s free)", r.probe.Name(), formatBytes(free))
		}
		return fmt.Sprintf("cuda: %s", r.probe.Name())
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return CPU
	}
	return fmt.Sprintf("cpu (%s free)", formatBytes(vm.Available))
}

func formatBytes(b uint64) string {
	const gib = 1 << 30
	return fmt.Sprintf("%.1f GiB", float64(b)/float64(gib))
}
