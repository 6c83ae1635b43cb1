// Package config handles CLI configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/petal-labs/qrfetch/strategy"
)

// Environment variables that override file values.
const (
	EnvBaseURL     = "QRFETCH_BASE_URL"
	EnvMetricsAddr = "QRFETCH_METRICS_ADDR"
)

// Config represents the CLI configuration.
type Config struct {
	BaseURL                  string        `yaml:"base_url"`
	Path                     string        `yaml:"path,omitempty"`
	Timeout                  time.Duration `yaml:"timeout,omitempty"`
	ShortCircuitServerErrors bool          `yaml:"short_circuit_server_errors,omitempty"`
	Strategies               []string      `yaml:"strategies,omitempty"`
	Retry                    RetryConfig   `yaml:"retry,omitempty"`
	MetricsAddr              string        `yaml:"metrics_addr,omitempty"`
}

// RetryConfig tunes the transport retries of strategies that retry.
// Zero values keep the library defaults.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries,omitempty"`
	BaseDelay  time.Duration `yaml:"base_delay,omitempty"`
	MaxDelay   time.Duration `yaml:"max_delay,omitempty"`
}

// IsZero reports whether no retry setting was given.
func (r RetryConfig) IsZero() bool {
	return r.MaxRetries == 0 && r.BaseDelay == 0 && r.MaxDelay == 0
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.qrfetch/config.yaml
// - Windows: %USERPROFILE%\.qrfetch\config.yaml
func DefaultConfigPath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		// Fallback to current directory
		return "config.yaml"
	}

	return filepath.Join(homeDir, ".qrfetch", "config.yaml")
}

// LoadConfig loads configuration from the specified path.
// If the file doesn't exist, returns an empty config without error.
// Returns an error only if the file exists but cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is not an error
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Missing files are ignored and
// variables already set are left alone.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with QRFETCH_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
}

// Validate checks values the chain cannot default.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL required: use --base-url, %s or base_url in config", EnvBaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative: %d", c.Retry.MaxRetries)
	}
	if _, err := strategy.ParseList(c.Strategies); err != nil {
		return err
	}
	return nil
}
