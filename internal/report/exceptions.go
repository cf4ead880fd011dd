package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// Exceptions renders individual exception rows.
func Exceptions(entries []telescope.Entry, filterDesc string) string {
	if len(entries) == 0 {
		return NoData("exceptions", filterDesc)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "❌ Exceptions (%d)\n\n", len(entries))
	for _, e := range entries {
		x, ok := e.Exception()
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", levelIcon(x.Level), x.Class)
		fmt.Fprintf(&b, "   %s\n", truncate(x.Message, 120))
		fmt.Fprintf(&b, "   %s:%s  at %s\n", x.File, formatInt(x.Line), formatTime(e.RecordedAt))
		fmt.Fprintf(&b, "   uuid: %s\n", e.UUID)
	}
	return b.String()
}

// GroupedExceptions renders exception buckets, most frequent first. The
// representative fields come from one member of each group.
func GroupedExceptions(groups []storage.ExceptionGroup, key storage.GroupKey, filterDesc string) string {
	if len(groups) == 0 {
		return NoData("exceptions", filterDesc)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "❌ Exceptions Grouped By %s (%d groups)\n\n", Heading(string(key)), len(groups))
	for _, g := range groups {
		x, ok := g.Representative.Exception()
		if !ok {
			fmt.Fprintf(&b, "⚪ %s ×%d (latest %s)\n", valueOrDash(g.Value), g.Count, formatTime(g.Latest))
			continue
		}
		fmt.Fprintf(&b, "%s %s ×%d\n", levelIcon(x.Level), telescope.ShortClassName(x.Class), g.Count)
		fmt.Fprintf(&b, "   %s\n", truncate(x.Message, 120))
		fmt.Fprintf(&b, "   %s:%s  latest %s\n", x.File, formatInt(x.Line), formatTime(g.Latest))
		fmt.Fprintf(&b, "   uuid: %s\n", g.Representative.UUID)
	}
	return b.String()
}

// ExceptionDetail renders one exception with its trace and, optionally, the
// originating request and other entries recorded in the same batch.
func ExceptionDetail(entry *telescope.Entry, related []telescope.Entry, includeContext bool) string {
	x, ok := entry.Exception()
	if !ok {
		return NoData("decodable exception payload", "uuid "+entry.UUID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "❌ Exception Detail: %s\n\n", x.Class)
	fmt.Fprintf(&b, "Message:  %s\n", x.Message)
	fmt.Fprintf(&b, "Level:    %s %s\n", levelIcon(x.Level), x.Level)
	fmt.Fprintf(&b, "Location: %s:%s\n", x.File, formatInt(x.Line))
	fmt.Fprintf(&b, "Recorded: %s\n", formatTime(entry.RecordedAt))
	fmt.Fprintf(&b, "UUID:     %s\n", entry.UUID)

	if len(x.Trace) > 0 {
		b.WriteString("\n## Stack Trace\n")
		for i, frame := range x.Trace {
			if i >= 15 {
				fmt.Fprintf(&b, "   ... %d more frames\n", len(x.Trace)-i)
				break
			}
			fmt.Fprintf(&b, "%2d. %s\n", i+1, traceFrame(frame))
		}
	}

	if includeContext && len(x.Context) > 0 {
		b.WriteString("\n## Context\n")
		if raw, err := json.MarshalIndent(x.Context, "", "  "); err == nil {
			b.Write(raw)
			b.WriteString("\n")
		}
	}

	if len(related) > 0 {
		b.WriteString("\n## Same-Request Entries\n")
		for _, e := range related {
			fmt.Fprintf(&b, "%s [%s] %s  %s\n", kindIcon(e.Kind), e.RawKind, formatTime(e.RecordedAt), entrySummary(&e))
		}
	}

	return b.String()
}

// traceFrame renders one stack frame, which Telescope stores either as a
// {file, line} object or a preformatted string.
func traceFrame(frame interface{}) string {
	switch f := frame.(type) {
	case string:
		return truncate(f, 140)
	case map[string]interface{}:
		file, _ := f["file"].(string)
		if file == "" {
			break
		}
		if line, ok := f["line"].(float64); ok {
			return fmt.Sprintf("%s:%d", file, int(line))
		}
		return file
	}
	if raw, err := json.Marshal(frame); err == nil {
		return truncate(string(raw), 140)
	}
	return "(unrenderable frame)"
}

// Pattern is one scored recurring-exception bucket.
type Pattern struct {
	Group    storage.ExceptionGroup
	Priority analysis.Priority
	PerHour  float64
	Recency  string
}

// ExceptionPatterns renders the recurring-pattern analysis with priority
// iconography. The resolved window is always echoed so a caller who passed
// an unrecognized token can see which window was actually applied.
func ExceptionPatterns(patterns []Pattern, key storage.GroupKey, windowHours, minOccurrences int) string {
	windowDesc := fmt.Sprintf("last %dh, min %d occurrences, grouped by %s", windowHours, minOccurrences, key)
	if len(patterns) == 0 {
		return NoData("recurring exception patterns", windowDesc)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔁 Exception Patterns (%s)\n\n", windowDesc)
	for _, p := range patterns {
		g := p.Group
		fmt.Fprintf(&b, "%s [%s] %s ×%d (%.1f/hour, %s)\n",
			PriorityIcon(p.Priority), strings.ToUpper(string(p.Priority)), valueOrDash(g.Value), g.Count, p.PerHour, p.Recency)
		if x, ok := g.Representative.Exception(); ok {
			fmt.Fprintf(&b, "   %s\n", truncate(x.Message, 120))
			fmt.Fprintf(&b, "   %s:%s\n", x.File, formatInt(x.Line))
		}
		fmt.Fprintf(&b, "   latest %s  uuid: %s\n", formatTime(g.Latest), g.Representative.UUID)
	}
	return b.String()
}

// PriorityIcon maps a pattern priority to its report glyph.
func PriorityIcon(p analysis.Priority) string {
	switch p {
	case analysis.PriorityCritical:
		return "🔴"
	case analysis.PriorityHigh:
		return "🟠"
	case analysis.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}
