package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// RecentTool handles the get_recent_entries MCP tool.
type RecentTool struct {
	coord Coordinator
}

// NewRecentTool creates a RecentTool.
func NewRecentTool(coord Coordinator) *RecentTool {
	return &RecentTool{coord: coord}
}

// Definition returns the MCP tool definition for get_recent_entries.
func (t *RecentTool) Definition() mcp.Tool {
	return mcp.NewTool("get_recent_entries",
		mcp.WithDescription(
			"Get the most recent clipboard history entries, newest first.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default: 20)"),
		),
	)
}

// Handle processes the get_recent_entries tool call.
func (t *RecentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.coord.Recent(intArg(req, "limit", 20))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing entries: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("Clipboard history is empty."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Last %d entries:\n\n", len(entries))
	for i, e := range entries {
		writeEntrySummary(&sb, i+1, e)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// URLEntriesTool handles the get_url_entries MCP tool.
type URLEntriesTool struct {
	coord Coordinator
}

// NewURLEntriesTool creates a URLEntriesTool.
func NewURLEntriesTool(coord Coordinator) *URLEntriesTool {
	return &URLEntriesTool{coord: coord}
}

// Definition returns the MCP tool definition for get_url_entries.
func (t *URLEntriesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_url_entries",
		mcp.WithDescription(
			"Get clipboard entries that are URLs, with their fetched page titles "+
				"and descriptions. Entries whose fetch failed carry the error instead.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default: 20)"),
		),
	)
}

// Handle processes the get_url_entries tool call.
func (t *URLEntriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.coord.URLEntries(intArg(req, "limit", 20))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing url entries: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No URL entries in clipboard history."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d URL entries:\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&sb, "[%d] #%d %s\n", i+1, e.ID, e.Content)
		if e.URLTitle != nil && *e.URLTitle != "" {
			fmt.Fprintf(&sb, "    title: %s\n", *e.URLTitle)
		}
		if e.URLDescription != nil && *e.URLDescription != "" {
			fmt.Fprintf(&sb, "    %s\n", *e.URLDescription)
		}
		if e.URLFetchError != nil && *e.URLFetchError != "" {
			fmt.Fprintf(&sb, "    fetch error: %s\n", *e.URLFetchError)
		}
		fmt.Fprintf(&sb, "    copied %s\n\n", e.CreatedAt)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
