package tools

import (
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
)

// NewToolResultError creates a new tool result with an error message
func NewToolResultError(message string) *mcp.CallToolResult {
	if message == "" {
		message = "An unknown error occurred"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: "❌ " + message,
			},
		},
		IsError: true,
	}
}

// NewToolResultErrorWithSuggestion creates a tool result with an error and recovery guidance
func NewToolResultErrorWithSuggestion(message, suggestion string) *mcp.CallToolResult {
	fullMessage := fmt.Sprintf("%s\n\n💡 **Suggestion:** %s", message, suggestion)
	return NewToolResultError(fullMessage)
}

// resultFromError converts any failure into a user-visible error result,
// preserving the suggestion when the failure is structured.
func resultFromError(err error) *mcp.CallToolResult {
	var structured *mcperrors.StructuredError
	if errors.As(err, &structured) && structured.Suggestion != "" {
		return NewToolResultErrorWithSuggestion(structured.Message, structured.Suggestion)
	}
	return NewToolResultError(err.Error())
}
