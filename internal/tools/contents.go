package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ContentsTool handles the get_clipboard_contents MCP tool.
type ContentsTool struct {
	coord Coordinator
}

// NewContentsTool creates a ContentsTool.
func NewContentsTool(coord Coordinator) *ContentsTool {
	return &ContentsTool{coord: coord}
}

// Definition returns the MCP tool definition for get_clipboard_contents.
func (t *ContentsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_clipboard_contents",
		mcp.WithDescription(
			"Get the current contents of the system clipboard. Retrieves whatever text "+
				"is currently stored — copied text, URLs, code snippets, or any other "+
				"textual content.",
		),
	)
}

// Handle processes the get_clipboard_contents tool call.
func (t *ContentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.coord.CurrentText()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("accessing clipboard: %v", err)), nil
	}
	if text == "" {
		return mcp.NewToolResultText("Clipboard is empty"), nil
	}
	return mcp.NewToolResultText(text), nil
}

// CopyTool handles the copy_to_clipboard MCP tool.
type CopyTool struct {
	coord Coordinator
}

// NewCopyTool creates a CopyTool.
func NewCopyTool(coord Coordinator) *CopyTool {
	return &CopyTool{coord: coord}
}

// Definition returns the MCP tool definition for copy_to_clipboard.
func (t *CopyTool) Definition() mcp.Tool {
	return mcp.NewTool("copy_to_clipboard",
		mcp.WithDescription(
			"Copy the provided text to the system clipboard, making it available for "+
				"pasting in other applications. The copy is recorded in clipboard history "+
				"immediately.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text content to copy to the clipboard"),
		),
	)
}

// Handle processes the copy_to_clipboard tool call.
func (t *CopyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	if err := t.coord.CopyText(ctx, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("copying to clipboard: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Copied %d characters to clipboard", len(text))), nil
}

// InfoTool handles the get_clipboard_info MCP tool.
type InfoTool struct {
	coord Coordinator
}

// NewInfoTool creates an InfoTool.
func NewInfoTool(coord Coordinator) *InfoTool {
	return &InfoTool{coord: coord}
}

// Definition returns the MCP tool definition for get_clipboard_info.
func (t *InfoTool) Definition() mcp.Tool {
	return mcp.NewTool("get_clipboard_info",
		mcp.WithDescription(
			"Get metadata about the current clipboard contents without returning the "+
				"full text — useful for deciding whether to retrieve it.",
		),
	)
}

// Handle processes the get_clipboard_info tool call.
func (t *InfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.coord.CurrentText()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("accessing clipboard: %v", err)), nil
	}

	preview := text
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	if text == "" {
		preview = "No content"
	}

	info := map[string]any{
		"length":      len(text),
		"is_empty":    text == "",
		"has_content": text != "",
		"preview":     preview,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshaling info: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
