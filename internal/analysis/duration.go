package analysis

import (
	"fmt"
	"strings"
	"time"
)

// SessionSpan is the distance between the first and last activity timestamp
// of a scoped actor. Order of arguments does not matter.
func SessionSpan(first, last time.Time) time.Duration {
	if last.Before(first) {
		first, last = last, first
	}
	return last.Sub(first)
}

// FormatSpan renders a duration as a compact "2h 5m 10s" string, dropping
// zero-valued leading components. Hours absorb any day component.
func FormatSpan(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))
	return strings.Join(parts, " ")
}
