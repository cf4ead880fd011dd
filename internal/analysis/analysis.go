// Package analysis computes derived statistics over decoded Telescope rows:
// rates, peak-hour bucketing, suspicious-activity classification, cache
// tallies, time-window parsing and exception pattern scoring.
package analysis

import (
	"fmt"
	"math"

	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// Rate returns numerator/denominator as a percentage rounded to one decimal
// place. A zero denominator yields 0, never a fault.
func Rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return math.Round(float64(numerator)/float64(denominator)*1000) / 10
}

// PeakHourNone is reported when no rows fall in the window.
const PeakHourNone = "N/A"

// PeakHour picks the hour-of-day bucket (0-23) with the maximum count and
// renders it as an "HH:00-HH:00" label. Ties break toward the lowest hour.
// Hour-of-day is collapsed across day boundaries within the window.
func PeakHour(counts map[int]int) (string, int) {
	peakHour := -1
	peakCount := 0
	for hour := 0; hour < 24; hour++ {
		if c := counts[hour]; c > peakCount {
			peakHour = hour
			peakCount = c
		}
	}
	if peakHour < 0 {
		return PeakHourNone, 0
	}
	return fmt.Sprintf("%02d:00-%02d:00", peakHour, (peakHour+1)%24), peakCount
}

// CacheTally classifies cache operations into exactly one bucket each.
// Unmapped operation strings count toward Total only.
type CacheTally struct {
	Total   int
	Hits    int
	Misses  int
	Writes  int
	Deletes int
}

// Add classifies one operation string into the tally.
func (t *CacheTally) Add(op string, count int) {
	t.Total += count
	switch telescope.ParseCacheOp(op) {
	case telescope.CacheOpHit:
		t.Hits += count
	case telescope.CacheOpMiss:
		t.Misses += count
	case telescope.CacheOpWrite:
		t.Writes += count
	case telescope.CacheOpForget:
		t.Deletes += count
	}
}

// TallyCacheOps builds a tally from per-operation counts.
func TallyCacheOps(counts map[string]int) CacheTally {
	var t CacheTally
	for op, count := range counts {
		t.Add(op, count)
	}
	return t
}

// HitRate is the hit percentage over lookups (hits + misses).
func (t CacheTally) HitRate() float64 {
	return Rate(t.Hits, t.Hits+t.Misses)
}

// MissRate is the miss percentage over lookups.
func (t CacheTally) MissRate() float64 {
	return Rate(t.Misses, t.Hits+t.Misses)
}
