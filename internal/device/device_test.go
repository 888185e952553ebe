package device

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timbreworks/synth-api/internal/platform/logger"
)

type fakeProbe struct {
	present bool
	free    uint64
	freeErr error
	name    string
}

func (p *fakeProbe) Present() bool               { return p.present }
func (p *fakeProbe) FreeMemory() (uint64, error) { return p.free, p.freeErr }
func (p *fakeProbe) Name() string                { return p.name }

func testLogger() *slog.Logger {
	return logger.Discard()
}

func TestResolve(t *testing.T) {
	const gib = uint64(1) << 30

	tests := []struct {
		name       string
		preference string
		probe      fakeProbe
		want       string
	}{
		{
			name:       "explicit cpu always honored",
			preference: CPU,
			probe:      fakeProbe{present: true, free: 8 * gib},
			want:       CPU,
		},
		{
			name:       "explicit cuda with accelerator",
			preference: CUDA,
			probe:      fakeProbe{present: true, free: 1 * gib},
			want:       CUDA,
		},
		{
			name:       "explicit cuda without accelerator downgrades",
			preference: CUDA,
			probe:      fakeProbe{present: false},
			want:       CPU,
		},
		{
			name:       "auto without accelerator",
			preference: Auto,
			probe:      fakeProbe{present: false},
			want:       CPU,
		},
		{
			name:       "auto with enough free memory",
			preference: Auto,
			probe:      fakeProbe{present: true, free: 4 * gib},
			want:       CUDA,
		},
		{
			name:       "auto at exactly the threshold",
			preference: Auto,
			probe:      fakeProbe{present: true, free: 2 * gib},
			want:       CUDA,
		},
		{
			name:       "auto below the threshold downgrades",
			preference: Auto,
			probe:      fakeProbe{present: true, free: 1 * gib},
			want:       CPU,
		},
		{
			name:       "auto with failing memory probe downgrades",
			preference: Auto,
			probe:      fakeProbe{present: true, freeErr: errors.New("driver error")},
			want:       CPU,
		},
		{
			name:       "unknown preference treated as auto",
			preference: "tpu",
			probe:      fakeProbe{present: false},
			want:       CPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&tt.probe, 0, testLogger())
			assert.Equal(t, tt.want, r.Resolve(tt.preference))
		})
	}
}

func TestDescribe(t *testing.T) {
	probe := &fakeProbe{present: true, free: 5 << 30, name: "NVIDIA GeForce RTX 3060"}
	r := NewResolver(probe, 0, testLogger())

	got := r.Describe(CUDA)
	assert.Contains(t, got, "cuda")
	assert.Contains(t, got, "NVIDIA GeForce RTX 3060")
	assert.Contains(t, got, "5.0 GiB")

	assert.Contains(t, r.Describe(CPU), "cpu")
}
