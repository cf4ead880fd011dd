package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// ExceptionsTool lists exceptions individually or grouped by an allow-listed
// payload field.
type ExceptionsTool struct {
	*BaseTool
}

// NewExceptionsTool creates a new tool instance
func NewExceptionsTool(store *storage.Client, logger *zap.Logger) *ExceptionsTool {
	return &ExceptionsTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *ExceptionsTool) Name() string {
	return "telescope_exceptions"
}

// Annotations returns tool hints for LLMs
func (t *ExceptionsTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Exceptions")
}

// Description returns the tool description
func (t *ExceptionsTool) Description() string {
	return "List recent exceptions, optionally filtered by level and time window, individually or grouped by class, file or message."
}

// InputSchema returns the input schema
func (t *ExceptionsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of exceptions or groups to return (1-100, default 10)",
				"minimum":     1,
				"maximum":     100,
			},
			"level": map[string]interface{}{
				"type":        "string",
				"description": "Filter by severity level (e.g. error, warning, critical)",
			},
			"since": map[string]interface{}{
				"type":        "string",
				"description": "Time window token: 1h, 12h, 24h, 1d, 3d or 7d (unrecognized tokens fall back to 24h)",
			},
			"group_by": map[string]interface{}{
				"type":        "string",
				"description": "Group results by class, file or message instead of listing individually",
			},
		},
	}
}

// Execute executes the tool
func (t *ExceptionsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	limit, err := GetLimitParam(arguments, "limit", 10, storage.MaxLimit)
	if err != nil {
		return resultFromError(err), nil
	}
	level, err := GetStringParam(arguments, "level", false)
	if err != nil {
		return resultFromError(err), nil
	}
	since, err := GetStringParam(arguments, "since", false)
	if err != nil {
		return resultFromError(err), nil
	}
	groupBy, err := GetStringParam(arguments, "group_by", false)
	if err != nil {
		return resultFromError(err), nil
	}

	hours := 0
	if since != "" {
		hours, _ = analysis.ParseTimeWindow(since)
	}

	if groupBy != "" {
		key, err := storage.ParseGroupKey(groupBy)
		if err != nil {
			return resultFromError(err), nil
		}
		groups, err := t.store.GroupedExceptions(ctx, key, hours, 1, limit)
		if err != nil {
			t.logger.Warn("Grouping exceptions failed", zap.Error(err))
			return resultFromError(err), nil
		}
		desc := fmt.Sprintf("grouped by %s", key)
		if hours > 0 {
			desc += fmt.Sprintf(", last %dh", hours)
		}
		return NewToolResultText(report.GroupedExceptions(groups, key, desc)), nil
	}

	filter := storage.Filter{
		Kind:  telescope.KindException,
		Level: level,
		Hours: hours,
		Limit: limit,
	}
	entries, err := t.store.Entries(ctx, filter)
	if err != nil {
		t.logger.Warn("Listing exceptions failed", zap.Error(err))
		return resultFromError(err), nil
	}

	decoded := entries[:0:0]
	for _, e := range entries {
		if _, ok := e.Exception(); ok {
			decoded = append(decoded, e)
		}
	}
	return NewToolResultText(report.Exceptions(decoded, filter.Describe())), nil
}

// ExceptionDetailTool shows one exception with its trace and surrounding
// batch context.
type ExceptionDetailTool struct {
	*BaseTool
}

// NewExceptionDetailTool creates a new tool instance
func NewExceptionDetailTool(store *storage.Client, logger *zap.Logger) *ExceptionDetailTool {
	return &ExceptionDetailTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *ExceptionDetailTool) Name() string {
	return "telescope_exception_detail"
}

// Annotations returns tool hints for LLMs
func (t *ExceptionDetailTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Exception Detail")
}

// Description returns the tool description
func (t *ExceptionDetailTool) Description() string {
	return "Show one exception by UUID with its stack trace, captured context and the other entries recorded in the same request batch."
}

// InputSchema returns the input schema
func (t *ExceptionDetailTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"exception_id": map[string]interface{}{
				"type":        "string",
				"description": "UUID of the exception entry",
			},
			"include_context": map[string]interface{}{
				"type":        "boolean",
				"description": "Include the captured context payload (default true)",
			},
			"include_related": map[string]interface{}{
				"type":        "boolean",
				"description": "Include other entries from the same request batch (default true)",
			},
		},
		"required": []string{"exception_id"},
	}
}

// Execute executes the tool
func (t *ExceptionDetailTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	id, err := GetStringParam(arguments, "exception_id", true)
	if err != nil {
		return resultFromError(err), nil
	}
	includeContext, err := GetBoolParam(arguments, "include_context", true)
	if err != nil {
		return resultFromError(err), nil
	}
	includeRelated, err := GetBoolParam(arguments, "include_related", true)
	if err != nil {
		return resultFromError(err), nil
	}

	entry, err := t.store.EntryByUUID(ctx, id)
	if err != nil {
		t.logger.Warn("Exception lookup failed", zap.String("uuid", id), zap.Error(err))
		return resultFromError(err), nil
	}
	if entry == nil {
		return resultFromError(mcperrors.NewNotFound("Exception", id).
			WithSuggestion("Use 'telescope_exceptions' to list recent exceptions and their UUIDs.")), nil
	}
	if entry.Kind != telescope.KindException {
		return resultFromError(mcperrors.NewInvalidArgument(
			fmt.Sprintf("entry %s is a %s entry, not an exception", id, entry.RawKind))), nil
	}

	var related []telescope.Entry
	if includeRelated && entry.BatchID != "" {
		related, err = t.store.EntriesByBatch(ctx, entry.BatchID, entry.UUID, 20)
		if err != nil {
			return resultFromError(err), nil
		}
	}

	return NewToolResultText(report.ExceptionDetail(entry, related, includeContext)), nil
}

// ExceptionPatternsTool scores recurring exception groups by frequency.
type ExceptionPatternsTool struct {
	*BaseTool
}

// NewExceptionPatternsTool creates a new tool instance
func NewExceptionPatternsTool(store *storage.Client, logger *zap.Logger) *ExceptionPatternsTool {
	return &ExceptionPatternsTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *ExceptionPatternsTool) Name() string {
	return "telescope_exception_patterns"
}

// Annotations returns tool hints for LLMs
func (t *ExceptionPatternsTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Exception Patterns")
}

// Description returns the tool description
func (t *ExceptionPatternsTool) Description() string {
	return "Find recurring exception patterns over a time window, scored by occurrence frequency and recency."
}

// InputSchema returns the input schema
func (t *ExceptionPatternsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"time_window": map[string]interface{}{
				"type":        "string",
				"description": "Analysis window: 1h, 12h, 24h, 1d, 3d or 7d (default 24h; unrecognized tokens fall back to 24h)",
			},
			"min_occurrences": map[string]interface{}{
				"type":        "integer",
				"description": "Minimum occurrences for a group to count as a pattern (default 2)",
			},
			"group_by": map[string]interface{}{
				"type":        "string",
				"description": "Group by class, file or message (default class)",
			},
		},
	}
}

// Execute executes the tool
func (t *ExceptionPatternsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	window, err := GetStringParam(arguments, "time_window", false)
	if err != nil {
		return resultFromError(err), nil
	}
	if window == "" {
		window = "24h"
	}
	minOccurrences, err := GetIntParam(arguments, "min_occurrences", 2)
	if err != nil {
		return resultFromError(err), nil
	}
	if minOccurrences < 1 {
		return resultFromError(mcperrors.NewInvalidArgument("min_occurrences must be at least 1")), nil
	}
	groupBy, err := GetStringParam(arguments, "group_by", false)
	if err != nil {
		return resultFromError(err), nil
	}
	if groupBy == "" {
		groupBy = "class"
	}
	key, err := storage.ParseGroupKey(groupBy)
	if err != nil {
		return resultFromError(err), nil
	}

	hours, recognized := analysis.ParseTimeWindow(window)
	if !recognized {
		t.logger.Debug("Unrecognized time window, using default",
			zap.String("time_window", window),
			zap.Int("hours", hours),
		)
	}

	groups, err := t.store.GroupedExceptions(ctx, key, hours, minOccurrences, 20)
	if err != nil {
		t.logger.Warn("Pattern analysis failed", zap.Error(err))
		return resultFromError(err), nil
	}

	now := time.Now()
	patterns := make([]report.Pattern, 0, len(groups))
	for _, g := range groups {
		patterns = append(patterns, report.Pattern{
			Group:    g,
			Priority: analysis.PatternPriority(g.Count, hours),
			PerHour:  analysis.FrequencyPerHour(g.Count, hours),
			Recency:  analysis.Recency(g.Latest, now),
		})
	}
	return NewToolResultText(report.ExceptionPatterns(patterns, key, hours, minOccurrences)), nil
}
