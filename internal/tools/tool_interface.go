// Package tools provides the MCP tool implementations for the Telescope
// analytics server. Every tool is read-only: it runs one or more
// parameterized queries against the entries table and renders a text report.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool defines the interface that all MCP tools must implement.
// This provides a standard contract for tool registration and execution.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// InputSchema returns the JSON Schema for the tool's input parameters
	InputSchema() interface{}

	// Annotations returns optional hints about tool behavior for LLMs.
	// Returns nil if no annotations are needed (defaults will be used).
	Annotations() *mcp.ToolAnnotations

	// Execute runs the tool with the given arguments and returns the result.
	// Failures are reported through the result's IsError flag; the returned
	// error is reserved for transport-level problems, so a failed query never
	// terminates the server or affects subsequent invocations.
	Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error)
}
