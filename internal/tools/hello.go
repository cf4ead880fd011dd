package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/report"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
)

// HelloWorldTool answers a greeting without touching storage, so callers can
// verify the server is alive before querying.
type HelloWorldTool struct {
	*BaseTool
}

// NewHelloWorldTool creates a new tool instance
func NewHelloWorldTool(store *storage.Client, logger *zap.Logger) *HelloWorldTool {
	return &HelloWorldTool{
		BaseTool: NewBaseTool(store, logger),
	}
}

// Name returns the tool name
func (t *HelloWorldTool) Name() string {
	return "hello_world"
}

// Annotations returns tool hints for LLMs
func (t *HelloWorldTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Hello World")
}

// Description returns the tool description
func (t *HelloWorldTool) Description() string {
	return "Returns a greeting. Use to verify connectivity to the Telescope MCP server without querying the database."
}

// InputSchema returns the input schema
func (t *HelloWorldTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Name to greet (default: World)",
			},
		},
	}
}

// Execute executes the tool
func (t *HelloWorldTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	name, err := GetStringParam(arguments, "name", false)
	if err != nil {
		return resultFromError(err), nil
	}
	return NewToolResultText(report.Greeting(name)), nil
}
