// Package history implements the persistent clipboard history engine.
//
// It stores clipboard entries in SQLite with content-addressed
// deduplication: one row per distinct (kind, content) pair, enforced by
// a unique content hash. Repeated observations of the same content bump
// the row's access metadata instead of inserting. URL entries gain
// enrichment fields (title, description, page text) asynchronously after
// insert.
package history

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("history: entry not found")

// ─── Types ───────────────────────────────────────────────────────────────────

// Entry is one row of clipboard history.
//
// ContentType, Content and CreatedAt are immutable after insert. Access
// metadata changes on every identity lookup and dedup hit; the URL fields
// change once, when enrichment completes. ImageData is populated only by
// GetByID — search paths report HasImage instead of shipping the payload.
type Entry struct {
	ID             int64   `json:"id"`
	ContentHash    string  `json:"content_hash"`
	ContentType    string  `json:"content_type"`
	Content        string  `json:"content"`
	Preview        string  `json:"preview"`
	ImageData      []byte  `json:"-"`
	ImageFormat    *string `json:"image_format,omitempty"`
	ImageSize      *string `json:"image_size,omitempty"`
	SourceApp      *string `json:"source_app,omitempty"`
	IsURL          bool    `json:"is_url"`
	URLTitle       *string `json:"url_title,omitempty"`
	URLDescription *string `json:"url_description,omitempty"`
	URLContent     *string `json:"url_content,omitempty"`
	URLStatusCode  *int64  `json:"url_status_code,omitempty"`
	URLFetchError  *string `json:"url_fetch_error,omitempty"`
	CreatedAt      string  `json:"created_at"`
	AccessedAt     string  `json:"accessed_at"`
	AccessCount    int     `json:"access_count"`
	HasImage       bool    `json:"has_image,omitempty"`
}

// AddEntryParams holds the input for storing a clipboard observation.
type AddEntryParams struct {
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	ImageData   []byte `json:"-"`
	ImageFormat string `json:"image_format,omitempty"`
	ImageSize   string `json:"image_size,omitempty"`
	SourceApp   string `json:"source_app,omitempty"`
}

// UpdateURLParams holds the enrichment result for a URL entry.
// Nil fields are stored as NULL — the update always writes all five
// columns so a retry fully replaces a previous partial result.
type UpdateURLParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	StatusCode  *int64  `json:"status_code,omitempty"`
	FetchError  *string `json:"fetch_error,omitempty"`
}

// SearchOptions holds filters for history queries. Filters combine with
// AND; results are always ordered by creation time, newest first.
type SearchOptions struct {
	Query       string `json:"query,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	URLsOnly    bool   `json:"urls_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// Stats holds aggregate history statistics.
type Stats struct {
	TotalEntries  int            `json:"total_entries"`
	EntriesByType map[string]int `json:"entries_by_type"`
	URLEntries    int            `json:"url_entries"`
	Last24h       int            `json:"entries_last_24h"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds history store configuration.
type Config struct {
	// DataDir is where the database file lives. Created if absent.
	DataDir string
	// DBPath overrides the default DataDir/history.db location.
	DBPath string
	// PreviewLength bounds the preview column, in characters.
	PreviewLength int
	// Logger for store events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default store configuration under ~/.clipstash.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:       filepath.Join(home, ".clipstash"),
		PreviewLength: 200,
	}
}

func (c *Config) defaults() {
	if c.PreviewLength <= 0 {
		c.PreviewLength = 200
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the persistent clipboard history backed by SQLite.
//
// The connection pool is capped at one connection, so the monitor's
// writes, enrichment completions, and façade reads serialize on the
// database without external locking.
type Store struct {
	db  *sql.DB
	cfg Config
	log *slog.Logger
}

// New opens (creating if needed) the history database and runs migrations.
// Schema failures here are structural: the store cannot serve without its
// backing table, so the error is fatal to the caller.
func New(cfg Config) (*Store, error) {
	cfg.defaults()

	dbPath := cfg.DBPath
	if dbPath == "" {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("history: create data dir: %w", err)
		}
		dbPath = filepath.Join(cfg.DataDir, "history.db")
	}

	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// One connection: SQLite serializes every logical operation for us.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, log: cfg.Logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}

	s.log.Debug("history store opened", "path", dbPath)
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS clipboard_entries (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			content_hash    TEXT    NOT NULL UNIQUE,
			content_type    TEXT    NOT NULL,
			content         TEXT    NOT NULL,
			content_preview TEXT    NOT NULL,
			image_data      BLOB,
			image_format    TEXT,
			image_size      TEXT,
			source_app      TEXT,
			is_url          INTEGER NOT NULL DEFAULT 0,
			url_title       TEXT,
			url_description TEXT,
			url_content     TEXT,
			url_status_code INTEGER,
			url_fetch_error TEXT,
			created_at      TEXT    NOT NULL DEFAULT (datetime('now')),
			accessed_at     TEXT    NOT NULL DEFAULT (datetime('now')),
			access_count    INTEGER NOT NULL DEFAULT 1
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_hash ON clipboard_entries(content_hash);
		CREATE INDEX IF NOT EXISTS idx_entries_created ON clipboard_entries(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_entries_type    ON clipboard_entries(content_type);
		CREATE INDEX IF NOT EXISTS idx_entries_url     ON clipboard_entries(is_url);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Entries ─────────────────────────────────────────────────────────────────

// contentHash derives the dedup key from kind and content together, so
// identical text copied as "text" and as "url" stay distinct rows.
func contentHash(contentType, content string) string {
	sum := sha256.Sum256([]byte(contentType + ":" + content))
	return hex.EncodeToString(sum[:])
}

// AddEntry stores a clipboard observation. If an entry with the same
// (kind, content) already exists, its access metadata is bumped and its
// id returned with created=false; enrichment fields are never touched on
// a dedup hit. Otherwise a new row is inserted with a bounded preview.
func (s *Store) AddEntry(p AddEntryParams) (id int64, created bool, err error) {
	hash := contentHash(p.ContentType, p.Content)

	var existingID int64
	err = s.db.QueryRow(
		`SELECT id FROM clipboard_entries WHERE content_hash = ?`, hash,
	).Scan(&existingID)
	if err == nil {
		if _, err := s.db.Exec(
			`UPDATE clipboard_entries
			 SET accessed_at = datetime('now'), access_count = access_count + 1
			 WHERE id = ?`, existingID,
		); err != nil {
			return 0, false, fmt.Errorf("history: bump entry %d: %w", existingID, err)
		}
		s.log.Debug("duplicate clipboard content", "id", existingID)
		return existingID, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("history: dedup lookup: %w", err)
	}

	preview := truncate(p.Content, s.cfg.PreviewLength)

	res, err := s.db.Exec(
		`INSERT INTO clipboard_entries (
			content_hash, content_type, content, content_preview,
			image_data, image_format, image_size, source_app
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		hash, p.ContentType, p.Content, preview,
		p.ImageData, nullableString(p.ImageFormat), nullableString(p.ImageSize),
		nullableString(p.SourceApp),
	)
	if err != nil {
		return 0, false, fmt.Errorf("history: insert entry: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("history: insert id: %w", err)
	}
	s.log.Debug("new clipboard entry", "id", id, "type", p.ContentType)
	return id, true, nil
}

// UpdateURLData records the enrichment result for an entry and marks it
// as a URL. Updating an id that no longer exists is a silent no-op: the
// row may have been deleted between scheduling and completion of the
// fetch, and that is not an error.
func (s *Store) UpdateURLData(id int64, p UpdateURLParams) error {
	_, err := s.db.Exec(
		`UPDATE clipboard_entries
		 SET is_url = 1, url_title = ?, url_description = ?,
		     url_content = ?, url_status_code = ?, url_fetch_error = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.Content, p.StatusCode, p.FetchError, id,
	)
	if err != nil {
		return fmt.Errorf("history: update url data for %d: %w", id, err)
	}
	return nil
}

// GetByID returns an entry by id, bumping its access metadata on hit.
// The image payload is included here (and only here).
func (s *Store) GetByID(id int64) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT `+entryColumns+` FROM clipboard_entries WHERE id = ?`, id,
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get entry %d: %w", id, err)
	}

	if _, err := s.db.Exec(
		`UPDATE clipboard_entries
		 SET accessed_at = datetime('now'), access_count = access_count + 1
		 WHERE id = ?`, id,
	); err != nil {
		return nil, fmt.Errorf("history: bump entry %d: %w", id, err)
	}
	e.AccessCount++
	return e, nil
}

// Search returns entries matching the given filters, newest first.
// A query matches as a case-insensitive substring against content,
// preview, URL title, or URL description (% and _ are escaped, so a
// literal query never acts as a wildcard). Image payloads are never
// included in search results — callers get HasImage plus metadata.
func (s *Store) Search(opts SearchOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + searchColumns + ` FROM clipboard_entries WHERE 1=1`
	args := []any{}

	if opts.Query != "" {
		pattern := "%" + escapeLike(opts.Query) + "%"
		query += ` AND (content LIKE ? ESCAPE '\'
			OR content_preview LIKE ? ESCAPE '\'
			OR url_title LIKE ? ESCAPE '\'
			OR url_description LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if opts.ContentType != "" {
		query += ` AND content_type = ?`
		args = append(args, opts.ContentType)
	}
	if opts.URLsOnly {
		query += ` AND is_url = 1`
	}

	// id breaks ties within the one-second resolution of created_at.
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Entry
	for rows.Next() {
		e, err := scanSearchEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history: search scan: %w", err)
		}
		results = append(results, *e)
	}
	return results, rows.Err()
}

// Recent returns the most recent entries.
func (s *Store) Recent(limit int) ([]Entry, error) {
	return s.Search(SearchOptions{Limit: limit})
}

// URLEntries returns entries that are URLs, including those whose
// enrichment failed (their url_fetch_error says why).
func (s *Store) URLEntries(limit int) ([]Entry, error) {
	return s.Search(SearchOptions{URLsOnly: true, Limit: limit})
}

// Delete removes an entry by id. Returns true if a row was removed.
func (s *Store) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM clipboard_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("history: delete entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("history: delete entry %d: %w", id, err)
	}
	if n > 0 {
		s.log.Debug("deleted entry", "id", id)
	}
	return n > 0, nil
}

// Cleanup applies retention in two independent passes: first every row
// older than maxAgeDays is removed, then the oldest rows beyond
// maxEntries. A row that is both old and over-capacity goes in the
// first pass.
func (s *Store) Cleanup(maxAgeDays, maxEntries int) error {
	if _, err := s.db.Exec(
		`DELETE FROM clipboard_entries
		 WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", maxAgeDays),
	); err != nil {
		return fmt.Errorf("history: cleanup by age: %w", err)
	}

	if _, err := s.db.Exec(
		`DELETE FROM clipboard_entries
		 WHERE id NOT IN (
			SELECT id FROM clipboard_entries
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		 )`, maxEntries,
	); err != nil {
		return fmt.Errorf("history: cleanup by count: %w", err)
	}

	s.log.Debug("cleanup complete", "max_age_days", maxAgeDays, "max_entries", maxEntries)
	return nil
}

// Stats returns aggregate statistics over the history table.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{EntriesByType: map[string]int{}}

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM clipboard_entries`,
	).Scan(&stats.TotalEntries); err != nil {
		return nil, fmt.Errorf("history: stats total: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT content_type, COUNT(*) FROM clipboard_entries GROUP BY content_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("history: stats by type: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("history: stats scan: %w", err)
		}
		stats.EntriesByType[typ] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: stats by type: %w", err)
	}

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM clipboard_entries WHERE is_url = 1`,
	).Scan(&stats.URLEntries); err != nil {
		return nil, fmt.Errorf("history: stats urls: %w", err)
	}

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM clipboard_entries WHERE created_at > datetime('now', '-1 day')`,
	).Scan(&stats.Last24h); err != nil {
		return nil, fmt.Errorf("history: stats recent: %w", err)
	}

	return stats, nil
}

// ─── Row mapping ─────────────────────────────────────────────────────────────

// entryColumns is the full column list, payload included (GetByID).
const entryColumns = `id, content_hash, content_type, content, content_preview,
	image_data, image_format, image_size, source_app,
	is_url, url_title, url_description, url_content, url_status_code, url_fetch_error,
	created_at, accessed_at, access_count`

// searchColumns substitutes a has-image flag for the blob so search
// results never carry binary payloads.
const searchColumns = `id, content_hash, content_type, content, content_preview,
	image_data IS NOT NULL, image_format, image_size, source_app,
	is_url, url_title, url_description, url_content, url_status_code, url_fetch_error,
	created_at, accessed_at, access_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.ContentHash, &e.ContentType, &e.Content, &e.Preview,
		&e.ImageData, &e.ImageFormat, &e.ImageSize, &e.SourceApp,
		&e.IsURL, &e.URLTitle, &e.URLDescription, &e.URLContent,
		&e.URLStatusCode, &e.URLFetchError,
		&e.CreatedAt, &e.AccessedAt, &e.AccessCount,
	)
	if err != nil {
		return nil, err
	}
	e.HasImage = len(e.ImageData) > 0
	return &e, nil
}

func scanSearchEntry(row rowScanner) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.ContentHash, &e.ContentType, &e.Content, &e.Preview,
		&e.HasImage, &e.ImageFormat, &e.ImageSize, &e.SourceApp,
		&e.IsURL, &e.URLTitle, &e.URLDescription, &e.URLContent,
		&e.URLStatusCode, &e.URLFetchError,
		&e.CreatedAt, &e.AccessedAt, &e.AccessCount,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// truncate bounds s to max characters (runes, so multibyte content
// never splits mid-character).
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// nullableString converts "" to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
