package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from
// environment variables with the SYNTH_ prefix; environment variables take
// precedence. Returns a populated, validated Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SYNTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("tasks.max_tasks", 100)
	v.SetDefault("tasks.keep_newest", 50)
	v.SetDefault("tasks.queue_size", 32)

	v.SetDefault("device.preference", "auto")
	v.SetDefault("device.min_free_mib", 2048)

	v.SetDefault("synthesis.output_dir", "out")
	v.SetDefault("synthesis.piper_binary", "piper")
	v.SetDefault("synthesis.piper_model", "models/en_US-lessac-medium.onnx")
	v.SetDefault("synthesis.espeak_binary", "espeak-ng")
}
