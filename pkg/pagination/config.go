package pagination

import (
	"os"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Config controls pagination defaults and limits.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// Merge overlays non-zero values from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.DefaultPageSize > 0 {
		c.DefaultPageSize = other.DefaultPageSize
	}

	if other.MaxPageSize > 0 {
		c.MaxPageSize = other.MaxPageSize
	}
}

// Finalize applies environment overrides and defaults.
func (c *Config) Finalize(prefix string) {
	c.loadEnv(prefix)

	if c.DefaultPageSize < 1 {
		c.DefaultPageSize = defaultPageSize
	}

	if c.MaxPageSize < 1 {
		c.MaxPageSize = maxPageSize
	}

	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
}

func (c *Config) loadEnv(prefix string) {
	if v := os.Getenv(prefix + "_PAGINATION_DEFAULT_PAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.DefaultPageSize = size
		}
	}

	if v := os.Getenv(prefix + "_PAGINATION_MAX_PAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.MaxPageSize = size
		}
	}
}
