package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/lyra-baker/clipstash/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
)

// SearchTool handles the search_clipboard_history MCP tool.
type SearchTool struct {
	coord Coordinator
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(coord Coordinator) *SearchTool {
	return &SearchTool{coord: coord}
}

// Definition returns the MCP tool definition for search_clipboard_history.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_clipboard_history",
		mcp.WithDescription(
			"Search clipboard history. Matches your query as a substring against "+
				"entry content, previews, and fetched URL titles and descriptions. "+
				"Results are newest first.",
		),
		mcp.WithString("query",
			mcp.Description("Text to search for. Omit to list entries filtered only by type."),
		),
		mcp.WithString("content_type",
			mcp.Description("Filter by content type: text, url, or image"),
		),
		mcp.WithBoolean("urls_only",
			mcp.Description("Only return entries that are URLs"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset (default: 0)"),
		),
	)
}

// Handle processes the search_clipboard_history tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := history.SearchOptions{
		Query:       req.GetString("query", ""),
		ContentType: req.GetString("content_type", ""),
		URLsOnly:    boolArg(req, "urls_only", false),
		Limit:       intArg(req, "limit", 20),
		Offset:      intArg(req, "offset", 0),
	}

	entries, err := t.coord.Search(opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No clipboard entries found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d entries:\n\n", len(entries))
	for i, e := range entries {
		writeEntrySummary(&sb, i+1, e)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// writeEntrySummary renders one entry as a compact list item shared by
// the search, recent, and url-entries tools.
func writeEntrySummary(sb *strings.Builder, n int, e history.Entry) {
	fmt.Fprintf(sb, "[%d] #%d (%s) %s\n", n, e.ID, e.ContentType, e.CreatedAt)

	preview := strings.ReplaceAll(e.Preview, "\n", " ")
	fmt.Fprintf(sb, "    %s\n", preview)

	if e.IsURL {
		if e.URLTitle != nil && *e.URLTitle != "" {
			fmt.Fprintf(sb, "    title: %s\n", *e.URLTitle)
		}
		if e.URLFetchError != nil && *e.URLFetchError != "" {
			fmt.Fprintf(sb, "    fetch error: %s\n", *e.URLFetchError)
		}
	}
	if e.HasImage {
		size := ""
		if e.ImageSize != nil {
			size = " " + *e.ImageSize
		}
		fmt.Fprintf(sb, "    [image%s]\n", size)
	}
	fmt.Fprintf(sb, "    copied %d time(s), last %s\n\n", e.AccessCount, e.AccessedAt)
}
