// ============================================================================
// Beaver Pool - Configuration
// ============================================================================
//
// Package: internal/config
// File: config.go
// Purpose: Loads the YAML configuration file that drives the CLI (pool
//          sizing, metrics server), in the same shape and error-wrapping
//          style as the teacher's internal/cli.Config/loadConfig.
//
// ============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration document.
type Config struct {
	Pool struct {
		Size          uint32        `yaml:"size"`
		MaxSize       uint32        `yaml:"max_size"`
		QueueCapacity int           `yaml:"queue_capacity"`
		Timeout       time.Duration `yaml:"timeout"`
		StackSize     int           `yaml:"stack_size"`
	} `yaml:"pool"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in defaults used when no --config is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Pool.Size = 4
	cfg.Pool.MaxSize = 8
	cfg.Pool.QueueCapacity = 1024
	cfg.Metrics.Port = 9090
	return cfg
}
