// Package report persists rule matches to SQLite.
package report

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/syntax-tree/unist-util-is/internal/index"
)

// Match is one candidate matched by one rule.
type Match struct {
	Rule    string
	Ordinal int
	Path    string
	Type    string
	Line    int
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	rule TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	path TEXT NOT NULL,
	type TEXT,
	line INTEGER DEFAULT 0,
	PRIMARY KEY (rule, ordinal)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS rule_bitmaps (
	rule TEXT PRIMARY KEY,
	bitmap BLOB NOT NULL
);
`

// errNoTx is returned by writes after a failed batch restart.
var errNoTx = errors.New("report: no open transaction")

// SQLiteWriter writes matches in batched transactions.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtMatch *sql.Stmt
	batchSize int
	count     int
	mu        sync.Mutex
}

// NewSQLiteWriter opens (or creates) the database at dbPath and initializes
// the schema.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		db:        db,
		batchSize: 10000,
	}

	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	w.tx = tx
	w.stmtMatch, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO matches (rule, ordinal, path, type, line)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	return nil
}

// commitTx commits the open transaction, if any.
func (w *SQLiteWriter) commitTx() error {
	if w.stmtMatch != nil {
		_ = w.stmtMatch.Close()
		w.stmtMatch = nil
	}
	if w.tx == nil {
		return nil
	}
	tx := w.tx
	w.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Write records a match. Every batchSize matches the transaction is
// committed.
func (w *SQLiteWriter) Write(m Match) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stmtMatch == nil {
		return errNoTx
	}
	if _, err := w.stmtMatch.Exec(m.Rule, m.Ordinal, m.Path, m.Type, m.Line); err != nil {
		return fmt.Errorf("insert match %s/%d: %w", m.Rule, m.Ordinal, err)
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return err
		}
		if err := w.beginTx(); err != nil {
			return err
		}
		w.count = 0
	}
	return nil
}

// WriteIndex stores the bitmap of every rule in x.
func (w *SQLiteWriter) WriteIndex(x *index.Index) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tx == nil {
		return errNoTx
	}
	stmt, err := w.tx.Prepare("INSERT OR REPLACE INTO rule_bitmaps (rule, bitmap) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare rule_bitmaps insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() // safe to ignore

	for _, rule := range x.Rules() {
		blob, err := x.MarshalRule(rule)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rule, blob); err != nil {
			return fmt.Errorf("insert bitmap %s: %w", rule, err)
		}
	}
	return nil
}

// Close commits pending writes and closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}

// LoadIndex reads the rule bitmaps stored in the database at dbPath.
func LoadIndex(dbPath string) (*index.Index, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT rule, bitmap FROM rule_bitmaps")
	if err != nil {
		return nil, fmt.Errorf("query rule_bitmaps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	x := index.New()
	for rows.Next() {
		var (
			rule string
			blob []byte
		)
		if err := rows.Scan(&rule, &blob); err != nil {
			return nil, err
		}
		if err := x.UnmarshalRule(rule, blob); err != nil {
			return nil, err
		}
	}
	return x, rows.Err()
}
