package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// GetRecentEntriesTool lists the most recent entries of any kind.
type GetRecentEntriesTool struct {
	*BaseTool
}

// NewGetRecentEntriesTool creates a new tool instance
func NewGetRecentEntriesTool(store *storage.Client, logger *zap.Logger) *GetRecentEntriesTool {
	return &GetRecentEntriesTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *GetRecentEntriesTool) Name() string {
	return "get_recent_entries"
}

// Annotations returns tool hints for LLMs
func (t *GetRecentEntriesTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Get Recent Entries")
}

// Description returns the tool description
func (t *GetRecentEntriesTool) Description() string {
	return "List the most recent Telescope entries of any kind with a one-line summary each."
}

// InputSchema returns the input schema
func (t *GetRecentEntriesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of entries to return (1-50, default 5)",
				"minimum":     1,
				"maximum":     50,
			},
		},
	}
}

// Execute executes the tool
func (t *GetRecentEntriesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	limit, err := GetLimitParam(arguments, "limit", 5, 50)
	if err != nil {
		return resultFromError(err), nil
	}

	entries, err := t.store.Entries(ctx, storage.Filter{Limit: limit})
	if err != nil {
		t.logger.Warn("Listing recent entries failed", zap.Error(err))
		return resultFromError(err), nil
	}
	return NewToolResultText(report.RecentEntries(entries)), nil
}

// RecentRequestsTool lists decoded HTTP request entries.
type RecentRequestsTool struct {
	*BaseTool
}

// NewRecentRequestsTool creates a new tool instance
func NewRecentRequestsTool(store *storage.Client, logger *zap.Logger) *RecentRequestsTool {
	return &RecentRequestsTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *RecentRequestsTool) Name() string {
	return "telescope_recent_requests"
}

// Annotations returns tool hints for LLMs
func (t *RecentRequestsTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Recent Requests")
}

// Description returns the tool description
func (t *RecentRequestsTool) Description() string {
	return "List the most recent HTTP requests with method, URI, status and duration."
}

// InputSchema returns the input schema
func (t *RecentRequestsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of requests to return (1-100, default 10)",
				"minimum":     1,
				"maximum":     100,
			},
		},
	}
}

// Execute executes the tool
func (t *RecentRequestsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	limit, err := GetLimitParam(arguments, "limit", 10, storage.MaxLimit)
	if err != nil {
		return resultFromError(err), nil
	}

	filter := storage.Filter{Kind: telescope.KindRequest, Limit: limit}
	entries, err := t.store.Entries(ctx, filter)
	if err != nil {
		t.logger.Warn("Listing recent requests failed", zap.Error(err))
		return resultFromError(err), nil
	}

	decoded := decodableRequests(entries)
	return NewToolResultText(report.RecentRequests(decoded, filter.Describe())), nil
}

// decodableRequests drops rows whose payload does not parse as a JSON
// object. Malformed rows are skipped, never surfaced as errors.
func decodableRequests(entries []telescope.Entry) []telescope.Entry {
	decoded := entries[:0:0]
	for _, e := range entries {
		if _, ok := e.Request(); ok {
			decoded = append(decoded, e)
		}
	}
	return decoded
}
