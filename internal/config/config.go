package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Tasks     TasksConfig     `mapstructure:"tasks"     validate:"required"`
	Device    DeviceConfig    `mapstructure:"device"    validate:"required"`
	Synthesis SynthesisConfig `mapstructure:"synthesis" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// TasksConfig controls the task registry retention and queue bounds.
type TasksConfig struct {
	MaxTasks   int `mapstructure:"max_tasks"   validate:"required,gt=0"`
	KeepNewest int `mapstructure:"keep_newest" validate:"required,gt=0,ltefield=MaxTasks"`
	QueueSize  int `mapstructure:"queue_size"  validate:"required,gt=0"`
}

// DeviceConfig controls compute backend resolution.
type DeviceConfig struct {
	// Preference is the requested backend: auto probes the accelerator,
	// cuda and cpu are explicit requests.
	Preference string `mapstructure:"preference" validate:"required,oneof=auto cuda cpu"`

	// MinFreeMiB is the accelerator free-memory floor, in MiB, below which
	// auto resolution downgrades to cpu.
	MinFreeMiB uint64 `mapstructure:"min_free_mib" validate:"required,gt=0"`
}

// SynthesisConfig contains engine settings.
type SynthesisConfig struct {
	OutputDir    string `mapstructure:"output_dir"    validate:"required"`
	PiperBinary  string `mapstructure:"piper_binary"  validate:"required"`
	PiperModel   string `mapstructure:"piper_model"   validate:"required"`
	EspeakBinary string `mapstructure:"espeak_binary" validate:"required"`
}
