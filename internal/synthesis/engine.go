// Package synthesis turns a text request into an audio artifact. It owns
// the engine abstraction, the implementation/device fallback cascade, and
// the task handler that drives both.
package synthesis

import "context"

// TypeSpeech is the task type handled by the Synthesizer
const TypeSpeech = "speech_synthesis"

// Request is the payload of a speech synthesis task
type Request struct {
	Text   string `json:"text"`
	Voice  string `json:"voice,omitempty"`
	Device string `json:"device,omitempty"`
}

// Result describes the produced audio artifact
type Result struct {
	Path   string `json:"audio_path"`
	Format string `json:"format"`
	Bytes  int64  `json:"bytes"`
	Engine string `json:"engine"`
}

// Engine is a single synthesis implementation. Synthesize must return
// ErrEngineUnavailable (wrapped or bare) when the implementation itself is
// missing or misconfigured, so the cascade can move on to the next
// candidate; any other error is treated as a device-level execution
// failure.
type Engine interface {
	// Name identifies the implementation in logs and results
	Name() string

	// Synthesize renders the request into an audio artifact on the given device
	Synthesize(ctx context.Context, req Request, device string) (*Result, error)
}
