package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
)

// TelescopeStatusTool reports connectivity and table accessibility.
type TelescopeStatusTool struct {
	*BaseTool
}

// NewTelescopeStatusTool creates a new tool instance
func NewTelescopeStatusTool(store *storage.Client, logger *zap.Logger) *TelescopeStatusTool {
	return &TelescopeStatusTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *TelescopeStatusTool) Name() string {
	return "telescope_status"
}

// Annotations returns tool hints for LLMs
func (t *TelescopeStatusTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Telescope Status")
}

// Description returns the tool description
func (t *TelescopeStatusTool) Description() string {
	return "Check the Telescope database connection: row count, connection target and the most recent entry timestamp."
}

// InputSchema returns the input schema
func (t *TelescopeStatusTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Execute executes the tool
func (t *TelescopeStatusTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	if err := t.store.Ping(ctx); err != nil {
		t.logger.Warn("Telescope database unreachable", zap.Error(err))
		return resultFromError(err), nil
	}

	total, err := t.store.CountAll(ctx)
	if err != nil {
		return resultFromError(err), nil
	}
	latest, err := t.store.LatestRecordedAt(ctx)
	if err != nil {
		return resultFromError(err), nil
	}

	return NewToolResultText(report.Status(t.store.Descriptor(), t.store.Table(), total, latest)), nil
}
