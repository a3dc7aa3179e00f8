package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lyra-baker/clipstash/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
)

// EntryTool handles the get_clipboard_entry MCP tool.
type EntryTool struct {
	coord Coordinator
}

// NewEntryTool creates an EntryTool.
func NewEntryTool(coord Coordinator) *EntryTool {
	return &EntryTool{coord: coord}
}

// Definition returns the MCP tool definition for get_clipboard_entry.
func (t *EntryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_clipboard_entry",
		mcp.WithDescription(
			"Get the full record of a clipboard history entry by id, including the "+
				"complete content and, for URLs, the fetched page text.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Entry id from a search or recent-entries result"),
		),
	)
}

// Handle processes the get_clipboard_entry tool call.
func (t *EntryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	e, err := t.coord.Entry(int64(id))
	if errors.Is(err, history.ErrNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("No entry with id %d.", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading entry: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Entry #%d (%s)\n", e.ID, e.ContentType)
	fmt.Fprintf(&sb, "created: %s | accessed: %s | %d access(es)\n\n", e.CreatedAt, e.AccessedAt, e.AccessCount)
	sb.WriteString(e.Content)
	sb.WriteString("\n")

	if e.HasImage {
		format := "unknown"
		if e.ImageFormat != nil {
			format = *e.ImageFormat
		}
		size := "unknown"
		if e.ImageSize != nil {
			size = *e.ImageSize
		}
		fmt.Fprintf(&sb, "\nImage: %s, %s, %d bytes\n", format, size, len(e.ImageData))
	}

	if e.IsURL {
		sb.WriteString("\n--- Fetched page ---\n")
		if e.URLTitle != nil && *e.URLTitle != "" {
			fmt.Fprintf(&sb, "Title: %s\n", *e.URLTitle)
		}
		if e.URLDescription != nil && *e.URLDescription != "" {
			fmt.Fprintf(&sb, "Description: %s\n", *e.URLDescription)
		}
		if e.URLStatusCode != nil {
			fmt.Fprintf(&sb, "Status: %d\n", *e.URLStatusCode)
		}
		if e.URLFetchError != nil && *e.URLFetchError != "" {
			fmt.Fprintf(&sb, "Fetch error: %s\n", *e.URLFetchError)
		}
		if e.URLContent != nil && *e.URLContent != "" {
			fmt.Fprintf(&sb, "\n%s\n", *e.URLContent)
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// DeleteTool handles the delete_clipboard_entry MCP tool.
type DeleteTool struct {
	coord Coordinator
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(coord Coordinator) *DeleteTool {
	return &DeleteTool{coord: coord}
}

// Definition returns the MCP tool definition for delete_clipboard_entry.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_clipboard_entry",
		mcp.WithDescription("Delete a clipboard history entry by id."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Entry id to delete"),
		),
	)
}

// Handle processes the delete_clipboard_entry tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	deleted, err := t.coord.DeleteEntry(int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deleting entry: %v", err)), nil
	}
	if !deleted {
		return mcp.NewToolResultText(fmt.Sprintf("No entry with id %d.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted entry #%d.", id)), nil
}
