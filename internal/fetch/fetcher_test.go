package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestFetcher() *Fetcher {
	return New(Config{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 64 * 1024,
	})
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ─── Success path ───────────────────────────────────────────────────────────

func TestFetch_ExtractsTitleDescriptionBody(t *testing.T) {
	srv := serveHTML(t, `<!DOCTYPE html>
<html>
<head>
  <title>  Test Page  </title>
  <meta name="description" content="A page used in tests">
</head>
<body>
  <nav>Home | About | Contact</nav>
  <main>
    <h1>Welcome</h1>
    <p>This is the main paragraph of the page with enough text to matter.</p>
  </main>
  <footer>Copyright notice</footer>
  <script>console.log("ignore me")</script>
</body>
</html>`)

	result := newTestFetcher().Fetch(context.Background(), srv.URL)

	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if result.StatusCode != 200 {
		t.Errorf("status = %d, want 200", result.StatusCode)
	}
	if result.Title != "Test Page" {
		t.Errorf("title = %q, want %q", result.Title, "Test Page")
	}
	if result.Description != "A page used in tests" {
		t.Errorf("description = %q, want meta description", result.Description)
	}
	if !strings.Contains(result.Content, "main paragraph") {
		t.Errorf("content missing main text: %q", result.Content)
	}
	if strings.Contains(result.Content, "console.log") {
		t.Error("content includes script text")
	}
	if strings.Contains(result.Content, "Home | About") {
		t.Error("content includes nav text")
	}
	if strings.Contains(result.Content, "Copyright") {
		t.Error("content includes footer text")
	}
}

func TestFetch_OpenGraphDescriptionFallback(t *testing.T) {
	srv := serveHTML(t, `<html><head>
<title>OG Page</title>
<meta property="og:description" content="Description via Open Graph">
</head><body><p>body text here for context</p></body></html>`)

	result := newTestFetcher().Fetch(context.Background(), srv.URL)
	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if result.Description != "Description via Open Graph" {
		t.Errorf("description = %q, want og:description fallback", result.Description)
	}
}

func TestFetch_FirstLineDescriptionFallback(t *testing.T) {
	srv := serveHTML(t, `<html><head><title>No Meta</title></head>
<body><article><p>The opening paragraph carries the summary of this page.</p>
<p>Further detail follows in later paragraphs.</p></article></body></html>`)

	result := newTestFetcher().Fetch(context.Background(), srv.URL)
	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if !strings.HasPrefix(result.Description, "The opening paragraph") {
		t.Errorf("description = %q, want first substantial body line", result.Description)
	}
}

func TestFetch_ContentClassContainer(t *testing.T) {
	srv := serveHTML(t, `<html><head><title>Classy</title></head>
<body>
<div class="sidebar">sidebar junk that is long enough to count</div>
<div class="post-content"><p>Real article text lives in this container.</p></div>
</body></html>`)

	result := newTestFetcher().Fetch(context.Background(), srv.URL)
	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if !strings.Contains(result.Content, "Real article text") {
		t.Errorf("content = %q, want post-content container text", result.Content)
	}
	if strings.Contains(result.Content, "sidebar junk") {
		t.Error("content includes text outside the content container")
	}
}

func TestFetch_BodyTruncation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Long</title></head><body><main>")
	for i := 0; i < 500; i++ {
		sb.WriteString("<p>This paragraph repeats to push the page over the extraction bound.</p>")
	}
	sb.WriteString("</main></body></html>")
	srv := serveHTML(t, sb.String())

	result := newTestFetcher().Fetch(context.Background(), srv.URL)
	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if !strings.HasSuffix(result.Content, truncationMarker) {
		t.Error("long content missing truncation marker")
	}
	if len(result.Content) > maxContentChars+len(truncationMarker) {
		t.Errorf("content length = %d, exceeds bound", len(result.Content))
	}
}

// ─── Error results (never panics, never a Go error) ─────────────────────────

func TestFetch_MalformedURL(t *testing.T) {
	tests := []string{
		"not a url at all",
		"example.com/no-scheme",
		"https://",
		"://missing-scheme.com",
	}
	f := newTestFetcher()
	for _, raw := range tests {
		result := f.Fetch(context.Background(), raw)
		if result.Err == "" {
			t.Errorf("Fetch(%q) succeeded, want error result", raw)
		}
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	result := newTestFetcher().Fetch(context.Background(), "ftp://example.com/file")
	if !strings.Contains(result.Err, "unsupported URL scheme") {
		t.Errorf("err = %q, want unsupported scheme", result.Err)
	}
}

func TestFetch_UnreachableHost(t *testing.T) {
	// A server that has already been closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := newTestFetcher().Fetch(context.Background(), url)
	if result.Err == "" {
		t.Fatal("Fetch on unreachable host succeeded, want error result")
	}
}

func TestFetch_Non200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	result := newTestFetcher().Fetch(context.Background(), srv.URL)
	if result.StatusCode != 404 {
		t.Errorf("status = %d, want 404", result.StatusCode)
	}
	if !strings.Contains(result.Err, "HTTP 404") {
		t.Errorf("err = %q, want HTTP 404", result.Err)
	}
}

func TestFetch_NonHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"html"}`))
	}))
	t.Cleanup(srv.Close)

	result := newTestFetcher().Fetch(context.Background(), srv.URL)
	if !strings.Contains(result.Err, "unsupported content type") {
		t.Errorf("err = %q, want unsupported content type", result.Err)
	}
}

func TestFetch_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>" + strings.Repeat("x", 2048) + "</html>"))
	}))
	t.Cleanup(srv.Close)

	f := New(Config{Timeout: 5 * time.Second, MaxBodyBytes: 1024})
	result := f.Fetch(context.Background(), srv.URL)
	if !strings.Contains(result.Err, "exceeds") {
		t.Errorf("err = %q, want oversized-body error", result.Err)
	}
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>ua</title></head></html>"))
	}))
	t.Cleanup(srv.Close)

	_ = newTestFetcher().Fetch(context.Background(), srv.URL)
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("user agent = %q, want browser-like", gotUA)
	}
}
