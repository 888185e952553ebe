package synthesis

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/timbreworks/synth-api/internal/device"
)

// PiperEngine renders speech with the piper neural TTS CLI. It is the
// primary implementation; a missing binary or model surfaces as
// ErrEngineUnavailable so the cascade can fall through.
type PiperEngine struct {
	// Binary is the piper executable name or path
	Binary string

	// ModelPath points at the voice model to load
	ModelPath string

	// OutputDir receives the rendered wav files
	OutputDir string
}

// Name identifies the engine in logs and results
func (e *PiperEngine) Name() string { return "piper" }

// Synthesize shells out to piper and returns the written artifact
func (e *PiperEngine) Synthesize(ctx context.Context, req Request, dev string) (*Result, error) {
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrEngineUnavailable, e.Binary)
	}
	if _, err := os.Stat(e.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", ErrEngineUnavailable, e.ModelPath, err)
	}

	outPath := filepath.Join(e.OutputDir, uuid.New().String()+".wav")
	args := []string{"--model", e.ModelPath, "--output_file", outPath}
	if dev == device.CUDA {
		args = append(args, "--cuda")
	}
	if req.Voice != "" {
		args = append(args, "--speaker", req.Voice)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(req.Text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("piper on %s: %v: %s", dev, err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("piper produced no output: %w", err)
	}
	return &Result{
		Path:   outPath,
		Format: "wav",
		Bytes:  info.Size(),
		Engine: e.Name(),
	}, nil
}

// EspeakEngine renders speech with espeak-ng. It is the lightweight
// fallback implementation and always runs on general-purpose compute,
// whatever device the candidate names.
type EspeakEngine struct {
	// Binary is the espeak-ng executable name or path
	Binary string

	// OutputDir receives the rendered wav files
	OutputDir string
}

// Name identifies the engine in logs and results
func (e *EspeakEngine) Name() string { return "espeak" }

// Synthesize shells out to espeak-ng and returns the written artifact
func (e *EspeakEngine) Synthesize(ctx context.Context, req Request, dev string) (*Result, error) {
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrEngineUnavailable, e.Binary)
	}

	outPath := filepath.Join(e.OutputDir, uuid.New().String()+".wav")
	args := []string{"-w", outPath}
	if req.Voice != "" {
		args = append(args, "-v", req.Voice)
	}
	args = append(args, req.Text)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("espeak: %v: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("espeak produced no output: %w", err)
	}
	return &Result{
		Path:   outPath,
		Format: "wav",
		Bytes:  info.Size(),
		Engine: e.Name(),
	}, nil
}
