package device

import (
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// NvidiaProbe detects an NVIDIA accelerator by shelling out to nvidia-smi.
// Presence is determined once and cached; memory is re-queried on every
// call since it changes as work runs.
type NvidiaProbe struct {
	once    sync.Once
	present bool
	name    string
}

// NewNvidiaProbe creates a probe backed by the nvidia-smi CLI
func NewNvidiaProbe() *NvidiaProbe {
	return &NvidiaProbe{}
}

func (p *NvidiaProbe) detect() {
	p.once.Do(func() {
		out, err := exec.Command(
			"nvidia-smi",
			"--query-gpu=name",
			"--format=csv,noheader",
		).Output()
		if err != nil {
			return
		}
		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		if len(lines) == 0 || lines[0] == "" {
			return
		}
		p.present = true
		p.name = strings.TrimSpace(lines[0])
	})
}

// Present reports whether nvidia-smi found at least one GPU
func (p *NvidiaProbe) Present() bool {
	p.detect()
	return p.present
}

// Name returns the first GPU's product name
func (p *NvidiaProbe) Name() string {
	p.detect()
	return p.name
}

// FreeMemory queries the first GPU's free memory in bytes
func (p *NvidiaProbe) FreeMemory() (uint64, error) {
	out, err := exec.Command(
		"nvidia-smi",
		"--query-gpu=memory.free",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return 0, err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	mib, err := strconv.ParseUint(strings.TrimSpace(lines[0]), 10, 64)
	if err != nil {
		return 0, err
	}
	return mib << 20, nil
}
