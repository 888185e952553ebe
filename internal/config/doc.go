// Package config defines the application configuration structure and its
// loader. Configuration comes from defaults, an optional yaml file, and
// SYNTH_-prefixed environment variables, in increasing precedence.
package config
