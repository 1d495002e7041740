package middleware

import (
	"os"
	"strconv"
	"strings"
)

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// Merge overwrites fields from overlay. Boolean fields always apply; slice
// and int fields only apply when non-zero.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	if overlay == nil {
		return
	}

	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge >= 0 {
		c.MaxAge = overlay.MaxAge
	}
}

// Finalize applies defaults and environment overrides scoped by prefix.
func (c *CORSConfig) Finalize(prefix string) error {
	c.loadDefaults()
	c.loadEnv(prefix)
	return nil
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv(prefix string) {
	if v := os.Getenv(prefix + "_CORS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(prefix + "_CORS_ORIGINS"); v != "" {
		c.Origins = splitList(v)
	}
	if v := os.Getenv(prefix + "_CORS_ALLOWED_METHODS"); v != "" {
		c.AllowedMethods = splitList(v)
	}
	if v := os.Getenv(prefix + "_CORS_ALLOWED_HEADERS"); v != "" {
		c.AllowedHeaders = splitList(v)
	}
	if v := os.Getenv(prefix + "_CORS_ALLOW_CREDENTIALS"); v != "" {
		if creds, err := strconv.ParseBool(v); err == nil {
			c.AllowCredentials = creds
		}
	}
	if v := os.Getenv(prefix + "_CORS_MAX_AGE"); v != "" {
		if maxAge, err := strconv.Atoi(v); err == nil {
			c.MaxAge = maxAge
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
