package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/analysis"
	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/telescope"
)

// UserActivityTool reports request activity for one actor or all actors,
// with suspicious-activity flags.
type UserActivityTool struct {
	*BaseTool
}

// NewUserActivityTool creates a new tool instance
func NewUserActivityTool(store *storage.Client, logger *zap.Logger) *UserActivityTool {
	return &UserActivityTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *UserActivityTool) Name() string {
	return "telescope_user_activity"
}

// Annotations returns tool hints for LLMs
func (t *UserActivityTool) Annotations() *mcp.ToolAnnotations {
	return QueryAnnotations("User Activity")
}

// Description returns the tool description
func (t *UserActivityTool) Description() string {
	return "Report request activity per user or across all users, flagging suspicious requests (client errors, sensitive endpoints, slow responses)."
}

// InputSchema returns the input schema
func (t *UserActivityTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"user_id": map[string]interface{}{
				"type":        "string",
				"description": "Scope the report to one user id",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Number of requests to examine (1-100, default 20)",
				"minimum":     1,
				"maximum":     100,
			},
			"hours": map[string]interface{}{
				"type":        "integer",
				"description": "Time window in hours (default 24)",
			},
			"include_anonymous": map[string]interface{}{
				"type":        "boolean",
				"description": "Include requests without a user id (default false)",
			},
			"suspicious_only": map[string]interface{}{
				"type":        "boolean",
				"description": "Only show requests flagged suspicious (default false)",
			},
		},
	}
}

// Execute executes the tool
func (t *UserActivityTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	userID, err := GetStringParam(arguments, "user_id", false)
	if err != nil {
		return resultFromError(err), nil
	}
	limit, err := GetLimitParam(arguments, "limit", 20, storage.MaxLimit)
	if err != nil {
		return resultFromError(err), nil
	}
	hours, err := GetHoursParam(arguments, "hours", 24)
	if err != nil {
		return resultFromError(err), nil
	}
	includeAnonymous, err := GetBoolParam(arguments, "include_anonymous", false)
	if err != nil {
		return resultFromError(err), nil
	}
	suspiciousOnly, err := GetBoolParam(arguments, "suspicious_only", false)
	if err != nil {
		return resultFromError(err), nil
	}

	filter := storage.Filter{
		Kind:        telescope.KindRequest,
		UserID:      userID,
		Hours:       hours,
		RequireUser: userID == "" && !includeAnonymous,
		Limit:       limit,
	}
	entries, err := t.store.Entries(ctx, filter)
	if err != nil {
		t.logger.Warn("Listing user activity failed", zap.Error(err))
		return resultFromError(err), nil
	}

	data := report.ActivityData{
		UserID:         userID,
		WindowHours:    hours,
		SuspiciousOnly: suspiciousOnly,
	}
	var first, last time.Time
	for _, e := range entries {
		r, ok := e.Request()
		if !ok {
			continue
		}
		if first.IsZero() || e.RecordedAt.Before(first) {
			first = e.RecordedAt
		}
		if last.IsZero() || e.RecordedAt.After(last) {
			last = e.RecordedAt
		}

		status := 0
		if r.Status != nil {
			status = *r.Status
		}
		duration := 0.0
		if r.DurationMS != nil {
			duration = *r.DurationMS
		}
		reasons := analysis.SuspiciousReasons(status, r.URI, duration)
		if suspiciousOnly && len(reasons) == 0 {
			continue
		}
		data.Rows = append(data.Rows, report.ActivityRow{Entry: e, Details: r, Reasons: reasons})
	}
	data.FirstSeen, data.LastSeen = first, last

	return NewToolResultText(report.UserActivity(data)), nil
}
