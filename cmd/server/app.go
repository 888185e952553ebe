package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/timbreworks/synth-api/internal/config"
	"github.com/timbreworks/synth-api/internal/device"
	"github.com/timbreworks/synth-api/internal/platform/logger"
	"github.com/timbreworks/synth-api/internal/synthesis"
	"github.com/timbreworks/synth-api/internal/task"
)

// application holds the server's wired dependencies. Everything is
// constructed here and injected; no package keeps global state.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	registry *task.Registry
	handlers *task.HandlerRegistry
	queue    *task.Queue
	resolver *device.Resolver
}

// initializeApp loads configuration and wires the application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"device_preference", cfg.Device.Preference)

	if err := os.MkdirAll(cfg.Synthesis.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	registry := task.NewRegistry(task.RegistryConfig{
		MaxTasks:   cfg.Tasks.MaxTasks,
		KeepNewest: cfg.Tasks.KeepNewest,
	}, appLogger)

	handlers := task.NewHandlerRegistry(appLogger)
	queue := task.NewQueue(registry, handlers, task.QueueConfig{
		Size: cfg.Tasks.QueueSize,
	}, appLogger)

	resolver := device.NewResolver(device.NewNvidiaProbe(), cfg.Device.MinFreeMiB<<20, appLogger)

	engines := []synthesis.Engine{
		&synthesis.PiperEngine{
			Binary:    cfg.Synthesis.PiperBinary,
			ModelPath: cfg.Synthesis.PiperModel,
			OutputDir: cfg.Synthesis.OutputDir,
		},
		&synthesis.EspeakEngine{
			Binary:    cfg.Synthesis.EspeakBinary,
			OutputDir: cfg.Synthesis.OutputDir,
		},
	}
	synthesizer := synthesis.NewSynthesizer(registry, resolver, engines, cfg.Device.Preference, appLogger)
	handlers.Register(synthesis.TypeSpeech, synthesizer.Handle)

	return &application{
		config:   cfg,
		logger:   appLogger,
		registry: registry,
		handlers: handlers,
		queue:    queue,
		resolver: resolver,
	}, nil
}

// run starts the worker and the HTTP server, blocking until shutdown.
func (app *application) run() error {
	app.queue.Start()
	defer app.queue.Stop()

	return app.startHTTPServer(app.setupRouter())
}
