package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/evidentia-labs/evidentia/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Store is the SQLite database holding the lexical index for all
// collections. Individual collections are exposed as LexicalIndex
// handles sharing this connection.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.evidentia/index/lexical.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".evidentia", "index")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "lexical.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// LexicalIndex returns a LexicalIndex over one logical collection.
func (s *Store) LexicalIndex(collection string) driven.LexicalIndex {
	return &lexicalIndex{store: s, collection: collection}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Lexical Index ====================

// Ensure lexicalIndex implements the interface.
var _ driven.LexicalIndex = (*lexicalIndex)(nil)

// lexicalIndex implements driven.LexicalIndex over one collection.
type lexicalIndex struct {
	store      *Store
	collection string
}

// Index adds or updates a record in the search index.
func (l *lexicalIndex) Index(ctx context.Context, rec domain.IndexRecord) error {
	tagsJSON, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO records (
			id, collection, doc_id, kind, title, text, tags,
			evidence_level, year, priority, autosuggest_plan, autosuggest_report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			doc_id = excluded.doc_id,
			kind = excluded.kind,
			title = excluded.title,
			text = excluded.text,
			tags = excluded.tags,
			evidence_level = excluded.evidence_level,
			year = excluded.year,
			priority = excluded.priority,
			autosuggest_plan = excluded.autosuggest_plan,
			autosuggest_report = excluded.autosuggest_report
	`, rec.ID, l.collection, rec.DocID, rec.Kind, rec.Title, rec.Text, string(tagsJSON),
		rec.EvidenceLevel, rec.Year, rec.Priority,
		boolToInt(rec.AutosuggestPlan), boolToInt(rec.AutosuggestReport))
	if err != nil {
		return fmt.Errorf("indexing record: %w", err)
	}
	return nil
}

// Get retrieves a stored record by id.
func (l *lexicalIndex) Get(ctx context.Context, id string) (*domain.IndexRecord, error) {
	row := l.store.db.QueryRowContext(ctx, `
		SELECT id, doc_id, kind, title, text, tags,
		       evidence_level, year, priority, autosuggest_plan, autosuggest_report
		FROM records
		WHERE id = ? AND collection = ?
	`, id, l.collection)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return rec, nil
}

// Delete removes a record from the search index.
func (l *lexicalIndex) Delete(ctx context.Context, id string) error {
	_, err := l.store.db.ExecContext(ctx,
		"DELETE FROM records WHERE id = ? AND collection = ?", id, l.collection)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// Search performs a keyword search in BM25 order, best first. Rank on a
// hit is its ordinal position in that order.
func (l *lexicalIndex) Search(ctx context.Context, query string, limit int) ([]driven.LexicalHit, error) {
	match := ftsMatchExpr(query)
	if match == "" {
		return nil, nil
	}

	rows, err := l.store.db.QueryContext(ctx, `
		SELECT r.id, r.doc_id, r.kind, r.title, r.text, r.tags,
		       r.evidence_level, r.year, r.priority, r.autosuggest_plan, r.autosuggest_report
		FROM records_fts f
		JOIN records r ON r.rowid = f.rowid
		WHERE records_fts MATCH ? AND r.collection = ?
		ORDER BY bm25(records_fts)
		LIMIT ?
	`, match, l.collection, limit)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()

	var hits []driven.LexicalHit
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, driven.LexicalHit{Record: *rec, Rank: len(hits)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// Close is a no-op for collection handles; the owning Store closes the
// connection.
func (l *lexicalIndex) Close() error {
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one record row.
func scanRecord(row rowScanner) (*domain.IndexRecord, error) {
	var rec domain.IndexRecord
	var tagsJSON string
	var suggestPlan, suggestReport int

	err := row.Scan(&rec.ID, &rec.DocID, &rec.Kind, &rec.Title, &rec.Text, &tagsJSON,
		&rec.EvidenceLevel, &rec.Year, &rec.Priority, &suggestPlan, &suggestReport)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	rec.AutosuggestPlan = suggestPlan != 0
	rec.AutosuggestReport = suggestReport != 0
	return &rec, nil
}

// ftsMatchExpr builds a safe FTS5 match expression: each token is
// quoted so user input cannot inject FTS query syntax.
func ftsMatchExpr(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.ReplaceAll(field, `"`, `""`)
		quoted = append(quoted, `"`+field+`"`)
	}
	return strings.Join(quoted, " ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
