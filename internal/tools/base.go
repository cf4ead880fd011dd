package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
)

// BaseTool provides the storage client and logger shared by all tools. The
// client is injected at construction so handlers never reach for global
// connection state.
type BaseTool struct {
	store  *storage.Client
	logger *zap.Logger
}

// NewBaseTool creates a new base tool
func NewBaseTool(store *storage.Client, logger *zap.Logger) *BaseTool {
	return &BaseTool{
		store:  store,
		logger: logger,
	}
}

// NewToolResultText creates a successful tool result with a text body.
func NewToolResultText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: text,
			},
		},
	}
}
