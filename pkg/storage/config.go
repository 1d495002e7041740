package storage

import (
	"fmt"
	"os"
)

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay == nil {
		return
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
}

// Finalize applies defaults, environment overrides scoped by prefix, and
// validation.
func (c *Config) Finalize(prefix string) error {
	if c.ContainerName == "" {
		c.ContainerName = "uploads"
	}

	if v := os.Getenv(prefix + "_STORAGE_CONTAINER"); v != "" {
		c.ContainerName = v
	}
	if v := os.Getenv(prefix + "_STORAGE_CONNECTION_STRING"); v != "" {
		c.ConnectionString = v
	}

	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}

	return nil
}
