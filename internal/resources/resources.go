// Package resources implements MCP resource handlers for clipstash.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (clipstash://...) following
// MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lyra-baker/clipstash/internal/history"
	"github.com/lyra-baker/clipstash/internal/monitor"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatusProvider is the surface the status resource needs from the
// server core. Implemented by server.Coordinator.
type StatusProvider interface {
	MonitorStatus() monitor.Status
	Stats() (*history.Stats, error)
}

// Handler manages clipstash resource endpoints.
type Handler struct {
	provider StatusProvider
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(provider StatusProvider) *Handler {
	return &Handler{provider: provider}
}

// StatusResource returns the MCP resource definition for server status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"clipstash://status",
		"Clipboard Server Status",
		mcp.WithResourceDescription("Monitor state and clipboard history statistics"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current monitor state and history
// statistics as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.provider.Stats()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	status := struct {
		Monitor monitor.Status `json:"monitor"`
		History *history.Stats `json:"history"`
	}{
		Monitor: h.provider.MonitorStatus(),
		History: stats,
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
