// Package tools provides the MCP tool handlers for clipstash.
//
// Each tool follows the same pattern:
// - A struct with its dependency (the server Coordinator) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tools never return Go errors for operational failures — failures are
// reported as tool error results so the façade can relay them to the
// model instead of tearing down the protocol.
package tools

import (
	"context"

	"github.com/lyra-baker/clipstash/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
)

// Coordinator is the surface the clipboard tools need from the server
// core. Implemented by server.Coordinator.
type Coordinator interface {
	CurrentText() (string, error)
	CopyText(ctx context.Context, text string) error
	Search(opts history.SearchOptions) ([]history.Entry, error)
	Recent(limit int) ([]history.Entry, error)
	Entry(id int64) (*history.Entry, error)
	URLEntries(limit int) ([]history.Entry, error)
	DeleteEntry(id int64) (bool, error)
	Cleanup(maxAgeDays, maxEntries int) error
	Stats() (*history.Stats, error)
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
