package analysis

import (
	"math"
	"time"
)

// Priority ranks a recurring exception pattern by its occurrence frequency
// within the analysis window.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// FrequencyPerHour is the occurrence rate of a pattern over the window,
// rounded to one decimal place.
func FrequencyPerHour(count, windowHours int) float64 {
	if windowHours <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(windowHours)*10) / 10
}

// PatternPriority scores a pattern by occurrences per hour.
func PatternPriority(count, windowHours int) Priority {
	freq := FrequencyPerHour(count, windowHours)
	switch {
	case freq >= 10:
		return PriorityCritical
	case freq >= 1:
		return PriorityHigh
	case count >= 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Recency labels how fresh a pattern's latest occurrence is relative to now.
func Recency(latest, now time.Time) string {
	age := now.Sub(latest)
	switch {
	case age <= time.Hour:
		return "active"
	case age <= 6*time.Hour:
		return "recent"
	default:
		return "quiet"
	}
}
