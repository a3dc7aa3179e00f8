package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatsTool handles the get_clipboard_stats MCP tool.
type StatsTool struct {
	coord Coordinator
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(coord Coordinator) *StatsTool {
	return &StatsTool{coord: coord}
}

// Definition returns the MCP tool definition for get_clipboard_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_clipboard_stats",
		mcp.WithDescription(
			"Show clipboard history statistics — total entries, breakdown by content "+
				"type, URL count, and activity in the last 24 hours.",
		),
	)
}

// Handle processes the get_clipboard_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.coord.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Clipboard History Statistics\n\n")
	fmt.Fprintf(&sb, "- **Total entries**: %d\n", stats.TotalEntries)

	types := make([]string, 0, len(stats.EntriesByType))
	for typ := range stats.EntriesByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		fmt.Fprintf(&sb, "- **%s**: %d\n", typ, stats.EntriesByType[typ])
	}

	fmt.Fprintf(&sb, "- **URLs**: %d\n", stats.URLEntries)
	fmt.Fprintf(&sb, "- **Last 24h**: %d\n", stats.Last24h)

	return mcp.NewToolResultText(sb.String()), nil
}

// CleanupTool handles the cleanup_clipboard_history MCP tool.
type CleanupTool struct {
	coord Coordinator
}

// NewCleanupTool creates a CleanupTool.
func NewCleanupTool(coord Coordinator) *CleanupTool {
	return &CleanupTool{coord: coord}
}

// Definition returns the MCP tool definition for cleanup_clipboard_history.
func (t *CleanupTool) Definition() mcp.Tool {
	return mcp.NewTool("cleanup_clipboard_history",
		mcp.WithDescription(
			"Apply the retention policy: delete entries older than max_age_days, "+
				"then trim the oldest entries beyond max_entries.",
		),
		mcp.WithNumber("max_age_days",
			mcp.Description("Delete entries older than this many days (default: 30)"),
		),
		mcp.WithNumber("max_entries",
			mcp.Description("Keep at most this many entries (default: 1000)"),
		),
	)
}

// Handle processes the cleanup_clipboard_history tool call.
func (t *CleanupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maxAgeDays := intArg(req, "max_age_days", 30)
	maxEntries := intArg(req, "max_entries", 1000)

	if err := t.coord.Cleanup(maxAgeDays, maxEntries); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cleanup failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Cleanup complete: removed entries older than %d days, kept the newest %d.",
		maxAgeDays, maxEntries,
	)), nil
}
