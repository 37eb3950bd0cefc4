package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"railio/internal/application"
	"railio/internal/domain"
	"railio/internal/ports"
)

const schemaVersion = "1"

// Index implements ports.RunIndex using SQLite
type Index struct {
	db     *sql.DB
	dbPath string
}

// Ensure Index implements RunIndex
var _ ports.RunIndex = (*Index)(nil)

// NewIndex creates a new SQLite run index
func NewIndex() *Index {
	return &Index{}
}

// DefaultPath returns the database location under the XDG data directory
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "railio", "runs.db")
}

// Open initializes the index at dbPath, creating the schema when missing
func (idx *Index) Open(dbPath string) error {
	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}
	if dbPath == "" {
		dbPath = DefaultPath()
	}
	idx.dbPath = dbPath

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Pragmas + schema in single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			version TEXT NOT NULL,
			policy TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			tracks INTEGER NOT NULL,
			nodes INTEGER NOT NULL,
			edges INTEGER NOT NULL,
			objects INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			dump BLOB
		);
		CREATE TABLE IF NOT EXISTS run_counts (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, kind)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source, created_at);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

const runColumns = `id, source, version, policy, created_at, tracks, nodes, edges, objects, warnings, dump`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var r domain.Run
	var created int64
	err := row.Scan(&r.ID, &r.Source, &r.Version, &r.Policy, &created,
		&r.Tracks, &r.Nodes, &r.Edges, &r.Objects, &r.Warnings, &r.Dump)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return &r, nil
}

// GetRun retrieves a run with its per-kind counts
func (idx *Index) GetRun(id string) (*domain.Run, error) {
	run, err := scanRun(idx.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", application.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := idx.loadCounts(run); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun returns the most recent run of a source
func (idx *Index) LatestRun(source string) (*domain.Run, error) {
	run, err := scanRun(idx.db.QueryRow(`
		SELECT `+runColumns+` FROM runs
		WHERE source = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1
	`, source))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no run for %s", application.ErrNotFound, source)
	}
	if err != nil {
		return nil, err
	}
	if err := idx.loadCounts(run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first, all sources when source is empty.
// Dumps are not loaded.
func (idx *Index) ListRuns(source string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := idx.db.Query(`
		SELECT id, source, version, policy, created_at, tracks, nodes, edges, objects, warnings, NULL
		FROM runs
		WHERE ? = '' OR source = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, source, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (idx *Index) loadCounts(run *domain.Run) error {
	rows, err := idx.db.Query(`SELECT kind, count FROM run_counts WHERE run_id = ?`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	run.Counts = make(map[domain.ObjectKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return err
		}
		run.Counts[domain.ObjectKind(kind)] = n
	}
	return rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.RunTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &runTx{tx: tx}, nil
}
