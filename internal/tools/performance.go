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

// PerformanceSummaryTool builds the cross-kind performance dashboard.
type PerformanceSummaryTool struct {
	*BaseTool
}

// NewPerformanceSummaryTool creates a new tool instance
func NewPerformanceSummaryTool(store *storage.Client, logger *zap.Logger) *PerformanceSummaryTool {
	return &PerformanceSummaryTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *PerformanceSummaryTool) Name() string {
	return "telescope_performance_summary"
}

// Annotations returns tool hints for LLMs
func (t *PerformanceSummaryTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Performance Summary")
}

// Description returns the tool description
func (t *PerformanceSummaryTool) Description() string {
	return "Summarize requests, database, queue, cache and error activity over a time window, with trend flags against configurable thresholds."
}

// InputSchema returns the input schema
func (t *PerformanceSummaryTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"hours": map[string]interface{}{
				"type":        "integer",
				"description": "Analysis window in hours (default 24)",
			},
			"include_details": map[string]interface{}{
				"type":        "boolean",
				"description": "Include the slowest queries and recent exceptions (default false)",
			},
			"slow_threshold_ms": map[string]interface{}{
				"type":        "number",
				"description": "Query time above which a query counts as slow (default 1000)",
			},
			"error_rate_threshold_pct": map[string]interface{}{
				"type":        "number",
				"description": "Request error rate percentage that triggers a warning flag (default 5.0)",
			},
		},
	}
}

// Execute executes the tool
func (t *PerformanceSummaryTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	hours, err := GetHoursParam(arguments, "hours", 24)
	if err != nil {
		return resultFromError(err), nil
	}
	includeDetails, err := GetBoolParam(arguments, "include_details", false)
	if err != nil {
		return resultFromError(err), nil
	}
	slowThreshold, err := GetFloatParam(arguments, "slow_threshold_ms", 1000)
	if err != nil {
		return resultFromError(err), nil
	}
	errorRateThreshold, err := GetFloatParam(arguments, "error_rate_threshold_pct", 5.0)
	if err != nil {
		return resultFromError(err), nil
	}

	data := report.PerformanceData{
		WindowHours:           hours,
		SlowThresholdMS:       slowThreshold,
		ErrorRateThresholdPct: errorRateThreshold,
	}

	if data.Requests, err = t.store.RequestStats(ctx, hours); err != nil {
		return resultFromError(err), nil
	}
	if data.Queries, err = t.store.QueryStats(ctx, hours, slowThreshold); err != nil {
		return resultFromError(err), nil
	}
	if data.JobCounts, err = t.store.JobStatusCounts(ctx, hours); err != nil {
		return resultFromError(err), nil
	}
	cacheCounts, err := t.store.CacheOpCounts(ctx, hours)
	if err != nil {
		return resultFromError(err), nil
	}
	data.Cache = analysis.TallyCacheOps(cacheCounts)
	if data.Exceptions, err = t.store.ExceptionStats(ctx, hours); err != nil {
		return resultFromError(err), nil
	}

	hourly, err := t.store.HourlyRequestCounts(ctx, hours)
	if err != nil {
		return resultFromError(err), nil
	}
	data.PeakLabel, data.PeakCount = analysis.PeakHour(hourly)

	if includeDetails {
		if data.SlowQueryDetails, err = t.store.SlowQueries(ctx, slowThreshold, 5); err != nil {
			return resultFromError(err), nil
		}
		exceptions, err := t.store.Entries(ctx, storage.Filter{
			Kind:  telescope.KindException,
			Hours: hours,
			Limit: 5,
		})
		if err != nil {
			return resultFromError(err), nil
		}
		data.ExceptionSamples = exceptions
	}

	t.logger.Debug("Built performance summary",
		zap.Int("hours", hours),
		zap.Int("requests", data.Requests.Total),
		zap.Int("queries", data.Queries.Total),
	)
	return NewToolResultText(report.PerformanceSummary(data)), nil
}
