package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// PerformanceData carries every aggregate the performance summary renders.
// All numbers are computed upstream; this struct is presentation input only.
type PerformanceData struct {
	WindowHours int

	Requests   storage.RequestStats
	Queries    storage.QueryStats
	JobCounts  map[string]int
	Cache      analysis.CacheTally
	Exceptions storage.ExceptionStats

	PeakLabel string
	PeakCount int

	SlowThresholdMS       float64
	ErrorRateThresholdPct float64

	// Populated only when the caller asked for details.
	SlowQueryDetails []telescope.Entry
	ExceptionSamples []telescope.Entry
}

// PerformanceSummary renders the cross-kind dashboard with qualitative
// trend flags against the caller's thresholds.
func PerformanceSummary(d PerformanceData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Performance Summary (last %dh)\n\n", d.WindowHours)

	errorRate := analysis.Rate(d.Requests.ServerErrors+d.Requests.ClientErrors, d.Requests.Total)
	serverErrorRate := analysis.Rate(d.Requests.ServerErrors, d.Requests.Total)

	b.WriteString("## Requests\n")
	fmt.Fprintf(&b, "Total:        %d\n", d.Requests.Total)
	fmt.Fprintf(&b, "Error rate:   %.1f%% (%.1f%% server errors)\n", errorRate, serverErrorRate)
	fmt.Fprintf(&b, "Avg duration: %.2fms\n", d.Requests.AvgDurationMS)
	fmt.Fprintf(&b, "Peak hour:    %s (%d requests)\n", d.PeakLabel, d.PeakCount)

	b.WriteString("\n## Database\n")
	fmt.Fprintf(&b, "Queries:   %d\n", d.Queries.Total)
	fmt.Fprintf(&b, "Slow:      %d (above %.0fms)\n", d.Queries.Slow, d.SlowThresholdMS)
	fmt.Fprintf(&b, "Avg time:  %.2fms\n", d.Queries.AvgTimeMS)
	fmt.Fprintf(&b, "Max time:  %.2fms\n", d.Queries.MaxTimeMS)

	b.WriteString("\n## Queue\n")
	if len(d.JobCounts) == 0 {
		b.WriteString("No jobs recorded.\n")
	} else {
		for _, status := range sortedKeys(d.JobCounts) {
			label := status
			if label == "" {
				label = "unreported"
			}
			fmt.Fprintf(&b, "%s %s: %d\n", jobStatusIcon(telescope.ParseJobStatus(status)), Heading(label), d.JobCounts[status])
		}
	}

	b.WriteString("\n## Cache\n")
	if d.Cache.Total == 0 {
		b.WriteString("No cache operations recorded.\n")
	} else {
		fmt.Fprintf(&b, "Operations: %d\n", d.Cache.Total)
		fmt.Fprintf(&b, "Hit rate:   %.1f%% (%d hits / %d misses)\n", d.Cache.HitRate(), d.Cache.Hits, d.Cache.Misses)
		fmt.Fprintf(&b, "Writes:     %d  Deletes: %d\n", d.Cache.Writes, d.Cache.Deletes)
	}

	b.WriteString("\n## Errors\n")
	fmt.Fprintf(&b, "Exceptions:       %d\n", d.Exceptions.Total)
	fmt.Fprintf(&b, "Distinct classes: %d\n", d.Exceptions.DistinctClasses)

	b.WriteString("\n## Trends\n")
	for _, flag := range trendFlags(d, errorRate) {
		b.WriteString(flag + "\n")
	}

	if len(d.SlowQueryDetails) > 0 {
		b.WriteString("\n## Slowest Queries\n")
		for _, e := range d.SlowQueryDetails {
			q, ok := e.Query()
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "⏱️ %s  %s\n", formatMillis(q.TimeMS), truncate(q.SQL, 100))
		}
	}
	if len(d.ExceptionSamples) > 0 {
		b.WriteString("\n## Recent Exceptions\n")
		for _, e := range d.ExceptionSamples {
			x, ok := e.Exception()
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s %s: %s\n", levelIcon(x.Level), telescope.ShortClassName(x.Class), truncate(x.Message, 80))
		}
	}

	return b.String()
}

// trendFlags derives the qualitative health flags shown at the bottom of the
// dashboard. Always returns at least one line.
func trendFlags(d PerformanceData, errorRate float64) []string {
	var flags []string
	if d.Requests.Total > 0 && errorRate > d.ErrorRateThresholdPct {
		flags = append(flags, fmt.Sprintf("⚠️ Error rate %.1f%% exceeds the %.1f%% threshold", errorRate, d.ErrorRateThresholdPct))
	}
	if d.Queries.Total > 0 && d.Queries.Slow > 0 {
		slowShare := analysis.Rate(d.Queries.Slow, d.Queries.Total)
		if slowShare >= 10 {
			flags = append(flags, fmt.Sprintf("⚠️ %.1f%% of queries ran slower than %.0fms", slowShare, d.SlowThresholdMS))
		}
	}
	if failed := d.JobCounts[string(telescope.JobFailed)]; failed > 0 {
		flags = append(flags, fmt.Sprintf("⚠️ %d failed jobs in the window", failed))
	}
	if lookups := d.Cache.Hits + d.Cache.Misses; lookups > 0 && d.Cache.HitRate() < 50 {
		flags = append(flags, fmt.Sprintf("⚠️ Cache hit rate is low at %.1f%%", d.Cache.HitRate()))
	}
	if len(flags) == 0 {
		flags = append(flags, "✅ No anomalies against the configured thresholds")
	}
	return flags
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
