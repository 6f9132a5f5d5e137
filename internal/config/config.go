// Package config defines the application configuration, loaded with Viper
// from a YAML file plus SUPPORTSIM_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Simulator SimulatorConfig `mapstructure:"simulator" yaml:"simulator"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SimulatorConfig carries the typing-simulation timing constants.
type SimulatorConfig struct {
	// CharsPerWord converts words-per-minute to a per-character rate.
	CharsPerWord float64 `mapstructure:"chars_per_word" yaml:"chars_per_word"`
	// ThinkingPauseMs is the base pause before typing a non-trivial message.
	ThinkingPauseMs float64 `mapstructure:"thinking_pause_ms" yaml:"thinking_pause_ms"`
	// PauseBaseMs is the base duration of a mid-message pause.
	PauseBaseMs float64 `mapstructure:"pause_base_ms" yaml:"pause_base_ms"`
	// BacktrackMinMs/BacktrackMaxMs bound a simulated self-correction.
	BacktrackMinMs float64 `mapstructure:"backtrack_min_ms" yaml:"backtrack_min_ms"`
	BacktrackMaxMs float64 `mapstructure:"backtrack_max_ms" yaml:"backtrack_max_ms"`
	// Seed fixes the random source when non-zero; zero seeds from the clock.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// SchedulerConfig tunes the delivery scheduler.
type SchedulerConfig struct {
	// CompletionGrace is how long completed session state stays queryable.
	CompletionGrace time.Duration `mapstructure:"completion_grace" yaml:"completion_grace"`
}

// ServerConfig configures the event-stream server hosted by `serve`.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// WriteTimeout bounds a single WebSocket write to a client.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// ClientBuffer is the per-client outbound event queue; slow clients that
	// fall this far behind are disconnected rather than stalling the stream.
	ClientBuffer int `mapstructure:"client_buffer" yaml:"client_buffer"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "supportsim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Simulator --
	v.SetDefault("simulator.chars_per_word", 5.0)
	v.SetDefault("simulator.thinking_pause_ms", 1000.0)
	v.SetDefault("simulator.pause_base_ms", 500.0)
	v.SetDefault("simulator.backtrack_min_ms", 200.0)
	v.SetDefault("simulator.backtrack_max_ms", 500.0)
	v.SetDefault("simulator.seed", 0)

	// -- Scheduler --
	v.SetDefault("scheduler.completion_grace", "5s")

	// -- Server --
	v.SetDefault("server.listen_addr", ":8089")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.client_buffer", 256)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults always unmarshal; a failure here is a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Simulator.CharsPerWord <= 0 {
		return fmt.Errorf("simulator.chars_per_word must be positive")
	}
	if c.Simulator.BacktrackMaxMs < c.Simulator.BacktrackMinMs {
		return fmt.Errorf("simulator.backtrack_max_ms must be >= simulator.backtrack_min_ms")
	}
	if c.Scheduler.CompletionGrace < 0 {
		return fmt.Errorf("scheduler.completion_grace must not be negative")
	}
	if c.Server.ClientBuffer <= 0 {
		return fmt.Errorf("server.client_buffer must be a positive integer")
	}
	return nil
}
