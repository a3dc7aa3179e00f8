// Package fetch retrieves and summarizes web pages for URL clipboard
// entries.
//
// Fetch never fails its caller: every error mode — malformed URL,
// unreachable host, timeout, non-200 status, non-HTML content type,
// oversized body, parse failure — comes back as a Result with Err set,
// so a fire-and-forget enrichment goroutine has nothing to panic on.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// userAgent mirrors a desktop browser; bare Go user agents get bot-blocked
// by enough sites to matter.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Result holds extracted page metadata or a populated error.
type Result struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	Err         string `json:"error,omitempty"`
}

// Config holds fetcher bounds.
type Config struct {
	// Timeout bounds the whole request, dial to last body byte.
	Timeout time.Duration
	// MaxBodyBytes rejects responses larger than this many bytes.
	MaxBodyBytes int64
	// Logger for fetch events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default fetch bounds.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxBodyBytes: 5 * 1024 * 1024,
	}
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 5 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher performs bounded-time page fetches. It holds one HTTP client
// for its lifetime; each Fetch is otherwise stateless.
type Fetcher struct {
	client *http.Client
	cfg    Config
	log    *slog.Logger
}

// New creates a Fetcher with the given bounds.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    cfg.Logger,
	}
}

// Fetch retrieves rawURL and extracts title, description and main body
// text. The URL is validated before any network call: a missing scheme
// or host is an immediate error result, no request sent.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Result {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Result{Err: "invalid URL format"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{Err: fmt.Sprintf("unsupported URL scheme: %s", parsed.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{Err: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	f.log.Debug("fetching url", "url", rawURL)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return Result{Err: "request timeout"}
		}
		return Result{Err: fmt.Sprintf("request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	result := Result{StatusCode: resp.StatusCode}

	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return result
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") {
		result.Err = fmt.Sprintf("unsupported content type: %s", contentType)
		return result
	}

	// Read one byte past the ceiling so an oversized body is detected
	// without buffering the whole thing.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			result.Err = "request timeout"
		} else {
			result.Err = fmt.Sprintf("reading response: %v", err)
		}
		return result
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		result.Err = fmt.Sprintf("response exceeds %d bytes", f.cfg.MaxBodyBytes)
		return result
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Sprintf("parsing HTML: %v", err)
		return result
	}

	result.Title = findTitle(doc)
	result.Description = findDescription(doc)
	result.Content = extractMainContent(doc)

	// Last-resort description: the first substantial line of body text.
	if result.Description == "" && result.Content != "" {
		first, _, _ := strings.Cut(result.Content, "\n")
		if len(first) > 20 {
			if len(first) > 300 {
				first = first[:300] + "..."
			}
			result.Description = first
		}
	}

	f.log.Debug("fetched url", "url", rawURL, "title", result.Title)
	return result
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
