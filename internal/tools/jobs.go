package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// JobsTool reports queued-job activity.
type JobsTool struct {
	*BaseTool
}

// NewJobsTool creates a new tool instance
func NewJobsTool(store *storage.Client, logger *zap.Logger) *JobsTool {
	return &JobsTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *JobsTool) Name() string {
	return "telescope_jobs"
}

// Annotations returns tool hints for LLMs
func (t *JobsTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("Jobs")
}

// Description returns the tool description
func (t *JobsTool) Description() string {
	return "List queued jobs with lifecycle status, optionally filtered by status and queue name."
}

// InputSchema returns the input schema
func (t *JobsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of jobs to return (1-100, default 10)",
				"minimum":     1,
				"maximum":     100,
			},
			"status": map[string]interface{}{
				"type":        "string",
				"description": "Filter by job status (pending, processed, failed)",
			},
			"queue": map[string]interface{}{
				"type":        "string",
				"description": "Filter by queue name",
			},
			"hours": map[string]interface{}{
				"type":        "integer",
				"description": "Time window in hours (default 24)",
			},
		},
	}
}

// Execute executes the tool
func (t *JobsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	limit, err := GetLimitParam(arguments, "limit", 10, storage.MaxLimit)
	if err != nil {
		return resultFromError(err), nil
	}
	status, err := GetStringParam(arguments, "status", false)
	if err != nil {
		return resultFromError(err), nil
	}
	queue, err := GetStringParam(arguments, "queue", false)
	if err != nil {
		return resultFromError(err), nil
	}
	hours, err := GetHoursParam(arguments, "hours", 24)
	if err != nil {
		return resultFromError(err), nil
	}

	filter := storage.Filter{
		Kind:   telescope.KindJob,
		Status: status,
		Queue:  queue,
		Hours:  hours,
		Limit:  limit,
	}
	entries, err := t.store.Entries(ctx, filter)
	if err != nil {
		t.logger.Warn("Listing jobs failed", zap.Error(err))
		return resultFromError(err), nil
	}

	decoded := entries[:0:0]
	for _, e := range entries {
		if _, ok := e.Job(); ok {
			decoded = append(decoded, e)
		}
	}
	return NewToolResultText(report.Jobs(decoded, filter.Describe())), nil
}
