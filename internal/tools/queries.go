package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
)

// SlowQueriesTool lists database queries above a duration threshold.
type SlowQueriesTool struct {
	*BaseTool
}

// NewSlowQueriesTool creates a new tool instance
func NewSlowQueriesTool(store *storage.Client, logger *zap.Logger) *SlowQueriesTool {
	return &SlowQueriesTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *SlowQueriesTool) Name() string {
	return "telescope_slow_queries"
}

// Annotations returns tool hints for LLMs
func (t *SlowQueriesTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Slow Queries")
}

// Description returns the tool description
func (t *SlowQueriesTool) Description() string {
	return "List database queries slower than a threshold in milliseconds, slowest first."
}

// InputSchema returns the input schema
func (t *SlowQueriesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"threshold_ms": map[string]interface{}{
				"type":        "number",
				"description": "Minimum query time in milliseconds (default 100)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of queries to return (1-100, default 10)",
				"minimum":     1,
				"maximum":     100,
			},
		},
	}
}

// Execute executes the tool
func (t *SlowQueriesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	threshold, err := GetFloatParam(arguments, "threshold_ms", 100)
	if err != nil {
		return resultFromError(err), nil
	}
	if threshold <= 0 {
		return resultFromError(mcperrors.NewInvalidArgument("threshold_ms must be positive")), nil
	}
	limit, err := GetLimitParam(arguments, "limit", 10, storage.MaxLimit)
	if err != nil {
		return resultFromError(err), nil
	}

	entries, err := t.store.SlowQueries(ctx, threshold, limit)
	if err != nil {
		t.logger.Warn("Listing slow queries failed", zap.Error(err))
		return resultFromError(err), nil
	}
	return NewToolResultText(report.SlowQueries(entries, threshold)), nil
}
