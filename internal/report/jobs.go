package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// Jobs renders queued-job rows with their lifecycle status.
func Jobs(entries []telescope.Entry, filterDesc string) string {
	if len(entries) == 0 {
		return NoData("jobs", filterDesc)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⚙️ Jobs (%d)\n\n", len(entries))
	for _, e := range entries {
		j, ok := e.Job()
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %s [%s] on queue %s\n", jobStatusIcon(j.Status), telescope.ShortClassName(j.Name), j.Status, valueOrDash(j.Queue))
		fmt.Fprintf(&b, "   tries: %s/%s  %s\n", formatInt(j.Tries), formatInt(j.MaxTries), formatTime(e.RecordedAt))
		if j.Status == telescope.JobFailed && j.Exception != "" {
			fmt.Fprintf(&b, "   💥 %s\n", truncate(j.Exception, 120))
		}
	}
	return b.String()
}

// CacheStats renders cache operation rows with an optional hit/miss summary.
func CacheStats(entries []telescope.Entry, tally analysis.CacheTally, showSummary bool, filterDesc string) string {
	if len(entries) == 0 && tally.Total == 0 {
		return NoData("cache operations", filterDesc)
	}
	var b strings.Builder
	b.WriteString("📦 Cache Operations\n\n")

	if showSummary {
		fmt.Fprintf(&b, "Total:    %d\n", tally.Total)
		fmt.Fprintf(&b, "Hit rate: %.1f%% (%d hits / %d misses)\n", tally.HitRate(), tally.Hits, tally.Misses)
		fmt.Fprintf(&b, "Writes:   %d\n", tally.Writes)
		fmt.Fprintf(&b, "Deletes:  %d\n\n", tally.Deletes)
	}

	for _, e := range entries {
		c, ok := e.Cache()
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %-6s %s  %s\n", cacheOpIcon(c.Op), c.Op, valueOrDash(c.Key), formatTime(e.RecordedAt))
	}
	return b.String()
}

// ActivityRow is one request row annotated with its suspicion reasons.
type ActivityRow struct {
	Entry   telescope.Entry
	Details telescope.RequestDetails
	Reasons []string
}

// ActivityData is the input for the user-activity report.
type ActivityData struct {
	UserID         string // empty means all actors
	WindowHours    int
	SuspiciousOnly bool
	Rows           []ActivityRow

	// Session bounds for a scoped actor; zero when no rows matched.
	FirstSeen time.Time
	LastSeen  time.Time
}

// UserActivity renders a per-actor or aggregate activity report with
// suspicious-activity flags and, for a scoped actor, the session span.
func UserActivity(d ActivityData) string {
	scope := "all users"
	if d.UserID != "" {
		scope = "user " + d.UserID
	}
	filterDesc := fmt.Sprintf("%s, last %dh", scope, d.WindowHours)
	if d.SuspiciousOnly {
		filterDesc += ", suspicious only"
	}
	if len(d.Rows) == 0 {
		return NoData("user activity", filterDesc)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 User Activity (%s)\n\n", filterDesc)

	suspicious := 0
	for _, row := range d.Rows {
		if len(row.Reasons) > 0 {
			suspicious++
		}
	}
	fmt.Fprintf(&b, "Requests:   %d (%d flagged suspicious)\n", len(d.Rows), suspicious)
	if d.UserID != "" && !d.FirstSeen.IsZero() {
		fmt.Fprintf(&b, "Session:    %s (first %s, last %s)\n",
			analysis.FormatSpan(analysis.SessionSpan(d.FirstSeen, d.LastSeen)),
			formatTime(d.FirstSeen), formatTime(d.LastSeen))
	}
	b.WriteString("\n")

	for _, row := range d.Rows {
		r := row.Details
		fmt.Fprintf(&b, "%s %s %s → %s (%s)\n", statusIcon(r.Status), r.Method, r.URI, formatStatus(r.Status), formatMillis(r.DurationMS))
		fmt.Fprintf(&b, "   %s  ip: %s  user: %s\n", formatTime(row.Entry.RecordedAt), valueOrDash(r.IPAddress), valueOrDash(r.UserID))
		for _, reason := range row.Reasons {
			fmt.Fprintf(&b, "   🚩 %s\n", reason)
		}
	}
	return b.String()
}
