// Package formatting provides human-readable formatting helpers.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

const unit = 1024

var suffixes = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count using base-1024 units, e.g. "2.5 MB".
func FormatBytes(size int64) string {
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	idx := 0
	for value >= unit && idx < len(suffixes)-1 {
		value /= unit
		idx++
	}

	return fmt.Sprintf("%.1f %s", value, suffixes[idx])
}

// ParseBytes parses a human-readable size like "50MB" or "1.5 GB" into a
// byte count. A bare number is treated as bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	upper := strings.ToUpper(s)
	multiplier := int64(1)
	number := upper

	for i := len(suffixes) - 1; i >= 0; i-- {
		if strings.HasSuffix(upper, suffixes[i]) {
			number = strings.TrimSpace(strings.TrimSuffix(upper, suffixes[i]))
			multiplier = 1
			for range i {
				multiplier *= unit
			}
			break
		}
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	if value < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}

	return int64(value * float64(multiplier)), nil
}
