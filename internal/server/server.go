// Package server wires the clipboard history components and creates
// the MCP server instance.
//
// This is the composition root: it opens the store, starts the monitor,
// and registers the tools and resources against the Coordinator. No
// business logic lives here — only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lyra-baker/clipstash/internal/clip"
	"github.com/lyra-baker/clipstash/internal/config"
	"github.com/lyra-baker/clipstash/internal/resources"
	"github.com/lyra-baker/clipstash/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all clipboard tools registered and
// the background monitor running. The returned cleanup function stops
// the monitor and closes the store; it is always non-nil and safe to
// call even when initialization failed partway.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	// The OS clipboard is optional: on a headless host the history
	// query tools still work, the monitor just has nothing to read.
	if err := clip.Init(); err != nil {
		logger.Warn("system clipboard unavailable", "error", err)
	}

	coord := NewCoordinator(cfg, logger, clip.System{})
	if err := coord.Initialize(ctx); err != nil {
		coord.Shutdown()
		return nil, noop, fmt.Errorf("initializing server: %w", err)
	}
	cleanup := coord.Shutdown

	s := server.NewMCPServer(
		"clipstash",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Live clipboard tools ---

	contentsTool := tools.NewContentsTool(coord)
	s.AddTool(contentsTool.Definition(), contentsTool.Handle)

	copyTool := tools.NewCopyTool(coord)
	s.AddTool(copyTool.Definition(), copyTool.Handle)

	infoTool := tools.NewInfoTool(coord)
	s.AddTool(infoTool.Definition(), infoTool.Handle)

	// --- History tools ---

	searchTool := tools.NewSearchTool(coord)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	recentTool := tools.NewRecentTool(coord)
	s.AddTool(recentTool.Definition(), recentTool.Handle)

	entryTool := tools.NewEntryTool(coord)
	s.AddTool(entryTool.Definition(), entryTool.Handle)

	urlsTool := tools.NewURLEntriesTool(coord)
	s.AddTool(urlsTool.Definition(), urlsTool.Handle)

	statsTool := tools.NewStatsTool(coord)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	deleteTool := tools.NewDeleteTool(coord)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	cleanupTool := tools.NewCleanupTool(coord)
	s.AddTool(cleanupTool.Definition(), cleanupTool.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(coord)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

func serverInstructions() string {
	return `clipstash maintains a searchable history of everything copied to the
system clipboard. Text is captured automatically by a background monitor;
copied URLs are fetched and summarized so their page title, description,
and main content are searchable too.

Use search_clipboard_history to find past clipboard content,
get_recent_entries for the latest captures, and get_clipboard_entry for
the full record (including fetched page text for URLs).
get_clipboard_contents and copy_to_clipboard operate on the live
clipboard; copies made through copy_to_clipboard appear in history
immediately.`
}
