package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// CacheStatsTool reports cache operations and hit/miss rates.
type CacheStatsTool struct {
	*BaseTool
}

// NewCacheStatsTool creates a new tool instance
func NewCacheStatsTool(store *storage.Client, logger *zap.Logger) *CacheStatsTool {
	return &CacheStatsTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *CacheStatsTool) Name() string {
	return "telescope_cache_stats"
}

// Annotations returns tool hints for LLMs
func (t *CacheStatsTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Cache Stats")
}

// Description returns the tool description
func (t *CacheStatsTool) Description() string {
	return "List cache operations with an optional hit/miss/write/delete summary over the time window."
}

// InputSchema returns the input schema
func (t *CacheStatsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of operations to list (1-100, default 10)",
				"minimum":     1,
				"maximum":     100,
			},
			"operation": map[string]interface{}{
				"type":        "string",
				"description": "Filter by operation type (hit, miss, put, set, write, forget, delete, flush)",
			},
			"hours": map[string]interface{}{
				"type":        "integer",
				"description": "Time window in hours (default 24)",
			},
			"show_summary": map[string]interface{}{
				"type":        "boolean",
				"description": "Include the hit/miss summary over the whole window (default true)",
			},
		},
	}
}

// Execute executes the tool
func (t *CacheStatsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	limit, err := GetLimitParam(arguments, "limit", 10, storage.MaxLimit)
	if err != nil {
		return resultFromError(err), nil
	}
	operation, err := GetStringParam(arguments, "operation", false)
	if err != nil {
		return resultFromError(err), nil
	}
	hours, err := GetHoursParam(arguments, "hours", 24)
	if err != nil {
		return resultFromError(err), nil
	}
	showSummary, err := GetBoolParam(arguments, "show_summary", true)
	if err != nil {
		return resultFromError(err), nil
	}

	filter := storage.Filter{
		Kind:  telescope.KindCache,
		Op:    operation,
		Hours: hours,
		Limit: limit,
	}
	entries, err := t.store.Entries(ctx, filter)
	if err != nil {
		t.logger.Warn("Listing cache operations failed", zap.Error(err))
		return resultFromError(err), nil
	}

	// The summary always covers the whole window, not just the listed or
	// operation-filtered rows.
	var tally analysis.CacheTally
	if showSummary {
		counts, err := t.store.CacheOpCounts(ctx, hours)
		if err != nil {
			return resultFromError(err), nil
		}
		tally = analysis.TallyCacheOps(counts)
	}

	decoded := entries[:0:0]
	for _, e := range entries {
		if _, ok := e.Cache(); ok {
			decoded = append(decoded, e)
		}
	}
	return NewToolResultText(report.CacheStats(decoded, tally, showSummary, filter.Describe())), nil
}
