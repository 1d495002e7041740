// Package config loads and finalizes the root service configuration from
// TOML files and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/quizdeck/quizdeck/internal/acquisition"
	"github.com/quizdeck/quizdeck/internal/generation"
	"github.com/quizdeck/quizdeck/internal/inference"
	"github.com/quizdeck/quizdeck/internal/realtime"
	"github.com/quizdeck/quizdeck/pkg/database"
	"github.com/quizdeck/quizdeck/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	// EnvPrefix scopes every environment variable override.
	EnvPrefix = "QUIZDECK"

	EnvEnv             = EnvPrefix + "_ENV"
	EnvShutdownTimeout = EnvPrefix + "_SHUTDOWN_TIMEOUT"
	EnvVersion         = EnvPrefix + "_VERSION"
)

// Config is the root configuration for the quizdeck service.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	Database        database.Config    `toml:"database"`
	Storage         storage.Config     `toml:"storage"`
	Realtime        realtime.Config    `toml:"realtime"`
	Inference       inference.Config   `toml:"inference"`
	Generation      generation.Config  `toml:"generation"`
	Acquisition     acquisition.Config `toml:"acquisition"`
	API             APIConfig          `toml:"api"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
}

// Env returns the QUIZDECK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and
// environment variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Realtime.Merge(&overlay.Realtime)
	c.Inference.Merge(&overlay.Inference)
	c.Generation.Merge(&overlay.Generation)
	c.Acquisition.Merge(&overlay.Acquisition)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(EnvPrefix); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(EnvPrefix); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Realtime.Finalize(EnvPrefix); err != nil {
		return fmt.Errorf("realtime: %w", err)
	}
	if err := c.Inference.Finalize(EnvPrefix); err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	if err := c.Generation.Finalize(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Acquisition.Finalize(); err != nil {
		return fmt.Errorf("acquisition: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
