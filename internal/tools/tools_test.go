package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lyra-baker/clipstash/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// fakeCoord is a canned Coordinator for handler tests.
type fakeCoord struct {
	text    string
	textErr error

	copied  []string
	copyErr error

	entries    []history.Entry
	entriesErr error

	entry    *history.Entry
	entryErr error

	deleted   bool
	deleteErr error

	stats    *history.Stats
	statsErr error

	cleanupErr    error
	cleanupCalled [2]int
}

func (f *fakeCoord) CurrentText() (string, error) { return f.text, f.textErr }

func (f *fakeCoord) CopyText(ctx context.Context, text string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copied = append(f.copied, text)
	return nil
}

func (f *fakeCoord) Search(opts history.SearchOptions) ([]history.Entry, error) {
	return f.entries, f.entriesErr
}

func (f *fakeCoord) Recent(limit int) ([]history.Entry, error) {
	return f.entries, f.entriesErr
}

func (f *fakeCoord) URLEntries(limit int) ([]history.Entry, error) {
	return f.entries, f.entriesErr
}

func (f *fakeCoord) Entry(id int64) (*history.Entry, error) { return f.entry, f.entryErr }

func (f *fakeCoord) DeleteEntry(id int64) (bool, error) { return f.deleted, f.deleteErr }

func (f *fakeCoord) Cleanup(maxAgeDays, maxEntries int) error {
	f.cleanupCalled = [2]int{maxAgeDays, maxEntries}
	return f.cleanupErr
}

func (f *fakeCoord) Stats() (*history.Stats, error) { return f.stats, f.statsErr }

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func mustNotError(t *testing.T, r *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if r == nil {
		t.Fatal("handler returned nil result")
	}
	if r.IsError {
		t.Fatalf("handler returned tool error: %s", resultText(r))
	}
}

func strPtr(s string) *string { return &s }

func sampleEntry(id int64, content string) history.Entry {
	return history.Entry{
		ID:          id,
		ContentType: "text",
		Content:     content,
		Preview:     content,
		CreatedAt:   "2026-08-24 10:00:00",
		AccessedAt:  "2026-08-24 10:00:00",
		AccessCount: 1,
	}
}

// ─── ContentsTool / CopyTool / InfoTool ──────────────────────────────────────

func TestContentsTool(t *testing.T) {
	coord := &fakeCoord{text: "current clipboard text"}
	result, err := NewContentsTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	if got := resultText(result); got != "current clipboard text" {
		t.Errorf("result = %q, want the clipboard text", got)
	}
}

func TestContentsTool_Empty(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewContentsTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "empty") {
		t.Errorf("result = %q, want empty-clipboard message", resultText(result))
	}
}

func TestContentsTool_ClipboardError(t *testing.T) {
	coord := &fakeCoord{textErr: errors.New("no display")}
	result, err := NewContentsTool(coord).Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error result for clipboard failure")
	}
}

func TestCopyTool(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewCopyTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"text": "hello",
	}))
	mustNotError(t, result, err)

	if len(coord.copied) != 1 || coord.copied[0] != "hello" {
		t.Errorf("copied = %v, want [hello]", coord.copied)
	}
	if !strings.Contains(resultText(result), "5 characters") {
		t.Errorf("result = %q, want character count", resultText(result))
	}
}

func TestCopyTool_MissingText(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewCopyTool(coord).Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing 'text'")
	}
	if len(coord.copied) != 0 {
		t.Error("copy attempted despite missing argument")
	}
}

func TestInfoTool(t *testing.T) {
	long := strings.Repeat("x", 80)
	coord := &fakeCoord{text: long}
	result, err := NewInfoTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, `"length": 80`) {
		t.Errorf("info missing length: %s", text)
	}
	// Preview is bounded, never the full payload.
	if strings.Contains(text, long) {
		t.Error("info leaked the full clipboard content")
	}
}

// ─── SearchTool / RecentTool / URLEntriesTool ────────────────────────────────

func TestSearchTool_Empty(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewSearchTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"query": "nothing",
	}))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "No clipboard entries found") {
		t.Errorf("result = %q, want no-results message", resultText(result))
	}
}

func TestSearchTool_RendersEntries(t *testing.T) {
	e := sampleEntry(7, "some copied text")
	e.IsURL = true
	e.URLTitle = strPtr("Page Title")
	coord := &fakeCoord{entries: []history.Entry{e}}

	result, err := NewSearchTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"query": "copied",
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "#7") {
		t.Errorf("result missing entry id: %s", text)
	}
	if !strings.Contains(text, "Page Title") {
		t.Errorf("result missing url title: %s", text)
	}
}

func TestRecentTool_Empty(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewRecentTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "history is empty") {
		t.Errorf("result = %q, want empty-history message", resultText(result))
	}
}

func TestURLEntriesTool_ShowsFetchError(t *testing.T) {
	e := sampleEntry(3, "https://broken.example.com")
	e.ContentType = "url"
	e.IsURL = true
	e.URLFetchError = strPtr("HTTP 500: Internal Server Error")
	coord := &fakeCoord{entries: []history.Entry{e}}

	result, err := NewURLEntriesTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "HTTP 500") {
		t.Errorf("result missing fetch error: %s", resultText(result))
	}
}

// ─── EntryTool / DeleteTool ──────────────────────────────────────────────────

func TestEntryTool_FullRecord(t *testing.T) {
	e := sampleEntry(12, "https://example.com")
	e.ContentType = "url"
	e.IsURL = true
	e.URLTitle = strPtr("Example Domain")
	e.URLContent = strPtr("The full fetched page text.")
	coord := &fakeCoord{entry: &e}

	result, err := NewEntryTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"id": float64(12),
	}))
	mustNotError(t, result, err)

	text := resultText(result)
	if !strings.Contains(text, "Entry #12") {
		t.Errorf("result missing header: %s", text)
	}
	if !strings.Contains(text, "The full fetched page text.") {
		t.Errorf("result missing fetched page content: %s", text)
	}
}

func TestEntryTool_NotFound(t *testing.T) {
	coord := &fakeCoord{entryErr: history.ErrNotFound}
	result, err := NewEntryTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"id": float64(999),
	}))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "No entry with id 999") {
		t.Errorf("result = %q, want not-found message", resultText(result))
	}
}

func TestEntryTool_MissingID(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewEntryTool(coord).Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing 'id'")
	}
}

func TestDeleteTool(t *testing.T) {
	coord := &fakeCoord{deleted: true}
	result, err := NewDeleteTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"id": float64(4),
	}))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "Deleted entry #4") {
		t.Errorf("result = %q, want deletion confirmation", resultText(result))
	}
}

func TestDeleteTool_MissingRow(t *testing.T) {
	coord := &fakeCoord{deleted: false}
	result, err := NewDeleteTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"id": float64(4),
	}))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "No entry with id 4") {
		t.Errorf("result = %q, want not-found message", resultText(result))
	}
}

// ─── StatsTool / CleanupTool ─────────────────────────────────────────────────

func TestStatsTool(t *testing.T) {
	coord := &fakeCoord{stats: &history.Stats{
		TotalEntries:  10,
		EntriesByType: map[string]int{"text": 7, "url": 2, "image": 1},
		URLEntries:    2,
		Last24h:       5,
	}}

	result, err := NewStatsTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	text := resultText(result)
	for _, want := range []string{"Total entries**: 10", "text**: 7", "URLs**: 2", "Last 24h**: 5"} {
		if !strings.Contains(text, want) {
			t.Errorf("stats output missing %q:\n%s", want, text)
		}
	}
}

func TestCleanupTool_Defaults(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewCleanupTool(coord).Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)

	if coord.cleanupCalled != [2]int{30, 1000} {
		t.Errorf("cleanup called with %v, want defaults (30, 1000)", coord.cleanupCalled)
	}
}

func TestCleanupTool_ExplicitBounds(t *testing.T) {
	coord := &fakeCoord{}
	result, err := NewCleanupTool(coord).Handle(context.Background(), makeReq(map[string]interface{}{
		"max_age_days": float64(7),
		"max_entries":  float64(50),
	}))
	mustNotError(t, result, err)

	if coord.cleanupCalled != [2]int{7, 50} {
		t.Errorf("cleanup called with %v, want (7, 50)", coord.cleanupCalled)
	}
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestDefinitions(t *testing.T) {
	coord := &fakeCoord{}
	defs := []mcp.Tool{
		NewContentsTool(coord).Definition(),
		NewCopyTool(coord).Definition(),
		NewInfoTool(coord).Definition(),
		NewSearchTool(coord).Definition(),
		NewRecentTool(coord).Definition(),
		NewEntryTool(coord).Definition(),
		NewURLEntriesTool(coord).Definition(),
		NewDeleteTool(coord).Definition(),
		NewStatsTool(coord).Definition(),
		NewCleanupTool(coord).Definition(),
	}

	seen := map[string]bool{}
	for _, def := range defs {
		if def.Name == "" {
			t.Error("tool with empty name")
		}
		if seen[def.Name] {
			t.Errorf("duplicate tool name %q", def.Name)
		}
		seen[def.Name] = true
		if def.Description == "" {
			t.Errorf("tool %q missing description", def.Name)
		}
	}

	copyDef := NewCopyTool(coord).Definition()
	required := copyDef.InputSchema.Required
	found := false
	for _, r := range required {
		if r == "text" {
			found = true
		}
	}
	if !found {
		t.Error("copy_to_clipboard: 'text' should be required")
	}
}
