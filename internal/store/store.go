// Package store keeps extraction runs in a SQLite database so results can
// be listed and re-exported without processing the scans again.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the store directory.
const FileName = "gridscan.db"

// ErrNotFound is returned when no run exists for a document.
var ErrNotFound = errors.New("document not found")

// Store is a SQLite-backed run history
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default store options
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store in dir
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	-- One row per processed input document
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		scanned INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);

	-- Pages record the grid size or the failure of each page
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		row_count INTEGER NOT NULL,
		col_count INTEGER NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_document ON pages(document_id);

	-- Records hold the cleaned cell texts of one table row as a JSON array
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		row_index INTEGER NOT NULL,
		cells TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_page ON records(page_id);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Document is one processed input
type Document struct {
	ID        int64
	Path      string
	Scanned   bool
	CreatedAt time.Time
	Pages     []Page
}

// Page is the stored outcome of one page
type Page struct {
	Number  int
	Rows    int
	Cols    int
	Err     string
	Records [][]string
}

// SaveDocument stores a document with its pages and records in one
// transaction and returns the document ID.
func (s *Store) SaveDocument(ctx context.Context, doc Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (path, scanned) VALUES (?, ?)`,
		doc.Path, doc.Scanned,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range doc.Pages {
		var pageErr any
		if p.Err != "" {
			pageErr = p.Err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO pages (document_id, number, row_count, col_count, error) VALUES (?, ?, ?, ?, ?)`,
			docID, p.Number, p.Rows, p.Cols, pageErr,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page %d: %w", p.Number, err)
		}
		pageID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}

		for i, rec := range p.Records {
			cells, err := json.Marshal(rec)
			if err != nil {
				return 0, fmt.Errorf("failed to serialize record: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (page_id, row_index, cells) VALUES (?, ?, ?)`,
				pageID, i, string(cells),
			); err != nil {
				return 0, fmt.Errorf("failed to insert record: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return docID, nil
}

// Records returns the records of the latest run of path, in page and row
// order. ErrNotFound is returned when path was never stored.
func (s *Store) Records(ctx context.Context, path string) ([][]string, error) {
	var docID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE path = ? ORDER BY id DESC LIMIT 1`, path,
	).Scan(&docID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT r.cells FROM records r
	JOIN pages p ON p.id = r.page_id
	WHERE p.document_id = ?
	ORDER BY p.number, r.row_index
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec []string
		if err := json.Unmarshal([]byte(cells), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Documents lists every stored run, newest first. Pages are summarized
// without their records.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, scanned, created_at FROM documents ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var docs []Document
	for rows.Next() {
		var d Document
		var created string
		if err := rows.Scan(&d.ID, &d.Path, &d.Scanned, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.CreatedAt = parseTimestamp(created)
		docs = append(docs, d)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The single connection is free again once rows is closed.
	for i := range docs {
		pages, err := s.pages(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Pages = pages
	}
	return docs, nil
}

func (s *Store) pages(ctx context.Context, docID int64) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, row_count, col_count, COALESCE(error, '') FROM pages WHERE document_id = ? ORDER BY number`, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.Number, &p.Rows, &p.Cols, &p.Err); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// timestampFormats are the layouts SQLite timestamps may come back in.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp returns the zero time when no layout matches
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
