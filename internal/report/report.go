// Package report renders decoded entries and aggregate statistics into the
// text blocks returned to the calling agent. Formatters are deterministic
// given their input and carry no query or aggregation logic; empty result
// sets render an explicit "no data" message that names the active filters.
package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

var titleCaser = cases.Title(language.English)

// Heading renders a section title in title case.
func Heading(s string) string {
	return titleCaser.String(s)
}

// NoData renders the empty-result message for a report. The filter
// description keeps an empty result distinguishable from a failed call.
func NoData(subject, filterDesc string) string {
	if filterDesc == "" {
		return fmt.Sprintf("ℹ️ No %s found.", subject)
	}
	return fmt.Sprintf("ℹ️ No %s found (%s).", subject, filterDesc)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func statusIcon(status *int) string {
	if status == nil {
		return "⚪"
	}
	switch {
	case *status >= 500:
		return "❌"
	case *status >= 400:
		return "⚠️"
	default:
		return "✅"
	}
}

func levelIcon(level string) string {
	switch strings.ToLower(level) {
	case "critical", "alert", "emergency":
		return "🔥"
	case "error":
		return "❌"
	case "warning":
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func kindIcon(kind telescope.Kind) string {
	switch kind {
	case telescope.KindRequest:
		return "🌐"
	case telescope.KindQuery:
		return "🗄️"
	case telescope.KindJob:
		return "⚙️"
	case telescope.KindCache:
		return "📦"
	case telescope.KindException:
		return "❌"
	default:
		return "📄"
	}
}

func jobStatusIcon(status telescope.JobStatus) string {
	switch status {
	case telescope.JobProcessed:
		return "✅"
	case telescope.JobFailed:
		return "❌"
	case telescope.JobPending:
		return "⏳"
	default:
		return "⚪"
	}
}

func cacheOpIcon(op telescope.CacheOp) string {
	switch op {
	case telescope.CacheOpHit:
		return "✅"
	case telescope.CacheOpMiss:
		return "❌"
	case telescope.CacheOpWrite:
		return "💾"
	case telescope.CacheOpForget:
		return "🗑️"
	default:
		return "⚪"
	}
}

func formatStatus(status *int) string {
	if status == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *status)
}

func formatMillis(ms *float64) string {
	if ms == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2fms", *ms)
}

func formatInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *v)
}

// truncate shortens a one-line display string, keeping SQL and messages from
// dominating a report row.
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
