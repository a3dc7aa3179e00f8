// Package monitor polls the OS clipboard and feeds the history store.
//
// Each tick reads the live clipboard, detects change by hashing,
// classifies new text content, persists it, and for URLs schedules a
// fire-and-forget enrichment fetch that later updates the stored row.
// The change-detection hash is deliberately separate from the store's
// dedup hash: change detection must stay cheap per tick even when the
// clipboard holds large content, while the store hash addresses
// persistence identity.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/lyra-baker/clipstash/internal/classify"
	"github.com/lyra-baker/clipstash/internal/fetch"
	"github.com/lyra-baker/clipstash/internal/history"
)

// Clipboard is the live-clipboard surface the monitor reads.
type Clipboard interface {
	ReadText() (string, error)
	ReadImage() ([]byte, error)
}

// Enricher fetches and summarizes a URL's page content.
type Enricher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// Config holds monitor configuration.
type Config struct {
	// PollInterval is the tick spacing. Defaults to one second.
	PollInterval time.Duration
	// Logger for monitor events. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Status is a snapshot of the monitor's state.
type Status struct {
	Running      bool    `json:"running"`
	PollInterval float64 `json:"poll_interval_seconds"`
}

// Monitor watches the clipboard on a fixed interval.
//
// State machine: stopped → running → stopped. Start while running and
// Stop while stopped are logged no-ops. Stop waits for in-flight tick
// work; in-flight enrichment fetches are left to run to completion —
// if their row is gone by then, the store update is a no-op.
type Monitor struct {
	store    *history.Store
	clip     Clipboard
	enricher Enricher
	cfg      Config
	log      *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// tickMu serializes loop ticks with ForceCheck.
	tickMu        sync.Mutex
	lastTextHash  uint64
	seenText      bool
	lastImageHash string
}

// New creates a Monitor. The enricher may be nil, in which case URL
// entries are stored without enrichment.
func New(store *history.Store, clip Clipboard, enricher Enricher, cfg Config) *Monitor {
	cfg.defaults()
	return &Monitor{
		store:    store,
		clip:     clip,
		enricher: enricher,
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

// Start begins the polling loop. Calling Start while already running is
// a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.log.Warn("monitor already running")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.loop(loopCtx)

	m.log.Info("clipboard monitor started", "poll_interval", m.cfg.PollInterval)
}

// Stop cancels the polling loop and waits for in-flight tick work.
// Calling Stop while already stopped is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	m.log.Info("clipboard monitor stopped")
}

// Running reports whether the monitor loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status() Status {
	return Status{
		Running:      m.Running(),
		PollInterval: m.cfg.PollInterval.Seconds(),
	}
}

// ForceCheck runs one tick synchronously, so a programmatic copy is
// reflected in history without waiting for the next poll.
func (m *Monitor) ForceCheck(ctx context.Context) {
	m.checkClipboard(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkClipboard(ctx)
		}
	}
}

// checkClipboard is one tick. Every failure inside is caught and
// logged; a bad tick never terminates the loop.
func (m *Monitor) checkClipboard(ctx context.Context) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	if err := m.checkText(ctx); err != nil {
		m.log.Error("clipboard text check failed", "error", err)
	}
	if err := m.checkImage(); err != nil {
		m.log.Error("clipboard image check failed", "error", err)
	}
}

func (m *Monitor) checkText(ctx context.Context) error {
	text, err := m.clip.ReadText()
	if err != nil {
		return fmt.Errorf("reading clipboard: %w", err)
	}
	if text == "" {
		return nil
	}

	h := changeHash(text)
	if m.seenText && h == m.lastTextHash {
		return nil
	}
	m.lastTextHash = h
	m.seenText = true

	kind, canonicalURL := classify.Classify(text)

	id, created, err := m.store.AddEntry(history.AddEntryParams{
		ContentType: string(kind),
		Content:     text,
	})
	if err != nil {
		return fmt.Errorf("storing entry: %w", err)
	}
	if created {
		m.log.Info("captured clipboard entry", "id", id, "type", kind)
	}

	if kind == classify.KindURL && id > 0 && m.enricher != nil {
		m.scheduleEnrichment(ctx, id, canonicalURL)
	}
	return nil
}

// scheduleEnrichment spawns a fire-and-forget fetch for a URL entry.
// One goroutine per detected URL with no cap on in-flight fetches —
// an accepted limitation, not a guarantee. The fetch is detached from
// the loop context so shutdown doesn't cancel it; the fetcher's own
// timeout bounds its lifetime, and if the row is deleted before the
// fetch completes, the update is a no-op.
func (m *Monitor) scheduleEnrichment(ctx context.Context, id int64, url string) {
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		result := m.enricher.Fetch(fetchCtx, url)

		err := m.store.UpdateURLData(id, history.UpdateURLParams{
			Title:       nullable(result.Title),
			Description: nullable(result.Description),
			Content:     nullable(result.Content),
			StatusCode:  nullableInt(result.StatusCode),
			FetchError:  nullable(result.Err),
		})
		if err != nil {
			m.log.Error("storing enrichment result failed", "id", id, "error", err)
			return
		}
		if result.Err != "" {
			m.log.Warn("url enrichment failed", "id", id, "url", url, "error", result.Err)
		} else {
			m.log.Info("url enriched", "id", id, "title", result.Title)
		}
	}()
}

func (m *Monitor) checkImage() error {
	data, err := m.clip.ReadImage()
	if err != nil {
		return fmt.Errorf("reading clipboard image: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	sum := sha256.Sum256(data)
	imageHash := hex.EncodeToString(sum[:])
	if imageHash == m.lastImageHash {
		return nil
	}
	m.lastImageHash = imageHash

	encoded, dimensions, err := normalizeImage(data)
	if err != nil {
		return fmt.Errorf("encoding clipboard image: %w", err)
	}

	id, created, err := m.store.AddEntry(history.AddEntryParams{
		ContentType: string(classify.KindImage),
		Content:     fmt.Sprintf("[IMAGE:%s]", imageHash[:16]),
		ImageData:   encoded,
		ImageFormat: "png",
		ImageSize:   dimensions,
	})
	if err != nil {
		return fmt.Errorf("storing image entry: %w", err)
	}
	if created {
		m.log.Info("captured clipboard image", "id", id, "size", dimensions)
	}
	return nil
}

// changeHash is the cheap per-tick change detector. FNV-1a, not the
// store's SHA-256 content hash: a large clipboard must not make every
// idle tick pay cryptographic-hash cost.
func changeHash(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableInt(n int) *int64 {
	if n == 0 {
		return nil
	}
	v := int64(n)
	return &v
}
