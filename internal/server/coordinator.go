package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lyra-baker/clipstash/internal/config"
	"github.com/lyra-baker/clipstash/internal/fetch"
	"github.com/lyra-baker/clipstash/internal/history"
	"github.com/lyra-baker/clipstash/internal/monitor"
)

// ErrNotInitialized is returned by query operations before Initialize
// has completed.
var ErrNotInitialized = errors.New("server: not initialized")

// Clipboard is the live-clipboard surface the coordinator needs: what
// the monitor reads, plus the write path for copy operations.
type Clipboard interface {
	monitor.Clipboard
	WriteText(text string) error
}

// Coordinator owns the component lifecycles: it opens the history
// store, starts the clipboard monitor, and exposes the query surface
// the MCP tools call. Shutdown is idempotent and tolerates a
// partially-initialized coordinator — uninitialized components are
// treated as already stopped.
type Coordinator struct {
	cfg       *config.Config
	log       *slog.Logger
	clipboard Clipboard

	mu          sync.Mutex
	initialized bool
	stopped     bool
	store       *history.Store
	mon         *monitor.Monitor
}

// NewCoordinator creates a Coordinator. Nothing is opened or started
// until Initialize.
func NewCoordinator(cfg *config.Config, logger *slog.Logger, clipboard Clipboard) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{cfg: cfg, log: logger, clipboard: clipboard}
}

// Initialize opens the history store, applies the retention policy
// once, and starts the clipboard monitor. A store failure is
// structural and fatal; everything after it is best-effort.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if c.stopped {
		return errors.New("server: already shut down")
	}

	store, err := history.New(history.Config{
		DataDir:       c.cfg.DataDir,
		DBPath:        c.cfg.DBPath,
		PreviewLength: c.cfg.PreviewLength,
		Logger:        c.log,
	})
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	c.store = store

	if err := store.Cleanup(c.cfg.RetentionDays, c.cfg.MaxEntries); err != nil {
		c.log.Warn("startup retention cleanup failed", "error", err)
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:      time.Duration(c.cfg.FetchTimeoutSec) * time.Second,
		MaxBodyBytes: c.cfg.MaxFetchBytes,
		Logger:       c.log,
	})

	c.mon = monitor.New(store, c.clipboard, fetcher, monitor.Config{
		PollInterval: time.Duration(c.cfg.PollIntervalMS) * time.Millisecond,
		Logger:       c.log,
	})
	c.mon.Start(ctx)

	c.initialized = true
	return nil
}

// Shutdown stops the monitor and closes the store. Safe to call
// multiple times and safe to call before Initialize completes.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	mon := c.mon
	store := c.store
	c.mu.Unlock()

	if mon != nil {
		mon.Stop()
	}
	if store != nil {
		if err := store.Close(); err != nil {
			c.log.Warn("closing history store", "error", err)
		}
	}
	c.log.Info("server shut down")
}

// ─── Query surface ───────────────────────────────────────────────────────────

func (c *Coordinator) ready() (*history.Store, *monitor.Monitor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || c.stopped {
		return nil, nil, ErrNotInitialized
	}
	return c.store, c.mon, nil
}

// Search queries clipboard history with the given filters.
func (c *Coordinator) Search(opts history.SearchOptions) ([]history.Entry, error) {
	store, _, err := c.ready()
	if err != nil {
		return nil, err
	}
	return store.Search(opts)
}

// Recent returns the most recent history entries.
func (c *Coordinator) Recent(limit int) ([]history.Entry, error) {
	store, _, err := c.ready()
	if err != nil {
		return nil, err
	}
	return store.Recent(limit)
}

// Entry returns a single entry by id, bumping its access metadata.
func (c *Coordinator) Entry(id int64) (*history.Entry, error) {
	store, _, err := c.ready()
	if err != nil {
		return nil, err
	}
	return store.GetByID(id)
}

// URLEntries returns URL entries with their enrichment data.
func (c *Coordinator) URLEntries(limit int) ([]history.Entry, error) {
	store, _, err := c.ready()
	if err != nil {
		return nil, err
	}
	return store.URLEntries(limit)
}

// DeleteEntry removes an entry by id.
func (c *Coordinator) DeleteEntry(id int64) (bool, error) {
	store, _, err := c.ready()
	if err != nil {
		return false, err
	}
	return store.Delete(id)
}

// Cleanup applies the retention policy with explicit bounds.
func (c *Coordinator) Cleanup(maxAgeDays, maxEntries int) error {
	store, _, err := c.ready()
	if err != nil {
		return err
	}
	return store.Cleanup(maxAgeDays, maxEntries)
}

// Stats returns aggregate history statistics.
func (c *Coordinator) Stats() (*history.Stats, error) {
	store, _, err := c.ready()
	if err != nil {
		return nil, err
	}
	return store.Stats()
}

// MonitorStatus returns a snapshot of the monitor state.
func (c *Coordinator) MonitorStatus() monitor.Status {
	_, mon, err := c.ready()
	if err != nil {
		return monitor.Status{}
	}
	return mon.Status()
}

// CurrentText reads the live clipboard.
func (c *Coordinator) CurrentText() (string, error) {
	return c.clipboard.ReadText()
}

// CopyText writes text to the live clipboard, then forces a monitor
// check so the copy lands in history immediately rather than on the
// next poll tick.
func (c *Coordinator) CopyText(ctx context.Context, text string) error {
	if err := c.clipboard.WriteText(text); err != nil {
		return err
	}
	_, mon, err := c.ready()
	if err != nil {
		// Clipboard write succeeded; history just won't see it until
		// the server is fully up.
		return nil
	}
	mon.ForceCheck(ctx)
	return nil
}
