// Package cache provides the SQLite-backed local store for ava.
// Entities are kept as JSON payloads in one rows table partitioned by kind,
// with a per-kind id sequence for entities created offline.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/five82/ava/internal/metrics"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps an SQLite connection.
type DB struct {
	conn     *sql.DB
	path     string
	mu       sync.Mutex
	recorder metrics.Recorder
}

// Option configures a DB.
type Option func(*DB)

// WithRecorder sets the metrics recorder for write transactions.
func WithRecorder(r metrics.Recorder) Option {
	return func(db *DB) { db.recorder = metrics.OrNoop(r) }
}

// Open opens the database at path, creating parent directories, and applies
// pending migrations.
func Open(path string, opts ...Option) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	conn.SetMaxOpenConns(1)

	if path != MemoryPath {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn, path: path, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the database location.
func (db *DB) Path() string {
	return db.path
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Rows},
		{2, migrationV2Sequences},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Rows = `
CREATE TABLE IF NOT EXISTS rows (
	kind TEXT NOT NULL,
	id INTEGER NOT NULL,
	parent_id INTEGER NOT NULL DEFAULT 0,
	payload TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_rows_parent ON rows(kind, parent_id);
`

const migrationV2Sequences = `
CREATE TABLE IF NOT EXISTS sequences (
	kind TEXT PRIMARY KEY,
	next INTEGER NOT NULL
);
`

// Write runs fn in one transaction. Either every statement fn issues is
// committed or none is.
func (db *DB) Write(ctx context.Context, kind string, fn func(tx *Tx) error) (err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	defer func() { db.recorder.IncCacheWrite(kind, metrics.ResultOf(err)) }()

	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Tx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NextID reserves the next local id for kind. The id is greater than every
// id previously reserved or stored for the kind.
func (db *DB) NextID(ctx context.Context, kind string) (int64, error) {
	var id int64
	err := db.Write(ctx, kind, func(tx *Tx) error {
		var err error
		id, err = tx.NextID(ctx, kind)
		return err
	})
	return id, err
}

// read runs fn while holding the connection lock.
func (db *DB) read(fn func(conn *sql.DB) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.conn)
}
