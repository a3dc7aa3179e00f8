// Clipstash: Clipboard History MCP Server
//
// An MCP server that watches the system clipboard, keeps a searchable
// history in SQLite, and enriches copied URLs with fetched page
// content. Works with any MCP-capable AI tool over stdio.
//
// Usage:
//
//	clipstash serve    # Start MCP server (stdio transport)
//	clipstash update   # Update to the latest version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lyra-baker/clipstash/internal/config"
	clipserver "github.com/lyra-baker/clipstash/internal/server"
	"github.com/lyra-baker/clipstash/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("clipstash v%s\n", clipserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr — stdout is the MCP stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Signal handling cancels the context the monitor runs under;
	// cleanup handles the stop/close ordering.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	s, cleanup, err := clipserver.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// loadConfig reads the config file from the default data directory,
// honoring a CLIPSTASH_CONFIG override.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("CLIPSTASH_CONFIG")
	if path == "" {
		path = filepath.Join(config.Default().DataDir, "config.json")
	}
	return config.Load(path)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort — network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(clipserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s → v%s\n"+
				"  Run: clipstash update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	result := updater.CheckVersion(clipserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Downloading...\n")

	if err := updater.SelfUpdate(clipserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n  You can download manually from:\n  %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Restart clipstash to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Clipstash v%s — Clipboard History MCP Server

Usage:
  clipstash serve    Start the MCP server (stdio transport)
  clipstash update   Update to the latest version

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "clipstash": {
        "command": "clipstash",
        "args": ["serve"]
      }
    }
  }

  Knobs live in ~/.clipstash/config.json (poll interval, fetch timeout,
  retention). History is stored in ~/.clipstash/history.db.
`, clipserver.Version)
}
