package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// Greeting is the hello_world response. No storage access behind it; the
// tool exists so callers can verify connectivity to the server itself.
func Greeting(name string) string {
	if name == "" {
		name = "World"
	}
	return fmt.Sprintf("👋 Hello, %s! The Telescope MCP server is up and ready to answer queries.", name)
}

// Status summarizes connectivity and table accessibility.
func Status(descriptor, table string, total int64, latest *time.Time) string {
	var b strings.Builder
	b.WriteString("✅ Telescope Status\n\n")
	fmt.Fprintf(&b, "Connection: %s\n", descriptor)
	fmt.Fprintf(&b, "Table:      %s\n", table)
	fmt.Fprintf(&b, "Entries:    %d\n", total)
	if latest != nil {
		fmt.Fprintf(&b, "Latest:     %s\n", formatTime(*latest))
	} else {
		b.WriteString("Latest:     no entries recorded yet\n")
	}
	return b.String()
}

// RecentEntries renders rows of any kind with a one-line summary each.
func RecentEntries(entries []telescope.Entry) string {
	if len(entries) == 0 {
		return NoData("entries", "any kind")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Recent Entries (%d)\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "%s [%s] %s  %s\n", kindIcon(e.Kind), e.RawKind, formatTime(e.RecordedAt), entrySummary(&e))
		fmt.Fprintf(&b, "   uuid: %s\n", e.UUID)
	}
	return b.String()
}

// entrySummary gives the one-line gist of an entry by its kind. Rows whose
// payload fails to decode are shown opaque rather than dropped here, since
// this listing is the raw view.
func entrySummary(e *telescope.Entry) string {
	switch e.Kind {
	case telescope.KindRequest:
		if r, ok := e.Request(); ok {
			return fmt.Sprintf("%s %s → %s", r.Method, r.URI, formatStatus(r.Status))
		}
	case telescope.KindQuery:
		if q, ok := e.Query(); ok {
			return fmt.Sprintf("%s (%s)", truncate(q.SQL, 80), formatMillis(q.TimeMS))
		}
	case telescope.KindJob:
		if j, ok := e.Job(); ok {
			return fmt.Sprintf("%s [%s]", telescope.ShortClassName(j.Name), j.Status)
		}
	case telescope.KindCache:
		if c, ok := e.Cache(); ok {
			return fmt.Sprintf("%s %s", c.Op, c.Key)
		}
	case telescope.KindException:
		if x, ok := e.Exception(); ok {
			return fmt.Sprintf("%s: %s", telescope.ShortClassName(x.Class), truncate(x.Message, 60))
		}
	}
	return "(undecoded payload)"
}

// RecentRequests renders decoded request rows. Rows with undecodable
// payloads have been skipped by the caller.
func RecentRequests(entries []telescope.Entry, filterDesc string) string {
	if len(entries) == 0 {
		return NoData("requests", filterDesc)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🌐 Recent Requests (%d)\n\n", len(entries))
	for _, e := range entries {
		r, ok := e.Request()
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %s %s → %s (%s)\n", statusIcon(r.Status), r.Method, r.URI, formatStatus(r.Status), formatMillis(r.DurationMS))
		fmt.Fprintf(&b, "   %s  ip: %s  user: %s\n", formatTime(e.RecordedAt), valueOrDash(r.IPAddress), valueOrDash(r.UserID))
	}
	return b.String()
}

// SlowQueries renders query rows above the duration threshold, slowest first.
func SlowQueries(entries []telescope.Entry, thresholdMS float64) string {
	if len(entries) == 0 {
		return NoData("slow queries", fmt.Sprintf("threshold %.0fms", thresholdMS))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🐌 Slow Queries (%d, above %.0fms)\n\n", len(entries), thresholdMS)
	for _, e := range entries {
		q, ok := e.Query()
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "⏱️ %s on %s\n", formatMillis(q.TimeMS), valueOrDash(q.Connection))
		fmt.Fprintf(&b, "   %s\n", truncate(q.SQL, 120))
		fmt.Fprintf(&b, "   %s\n", formatTime(e.RecordedAt))
	}
	return b.String()
}

func valueOrDash(s string) string {
	if s == "" || s == telescope.UnknownString {
		return "-"
	}
	return s
}
