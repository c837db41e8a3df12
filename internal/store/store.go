// Package store implements the Growth90 persistent store: a versioned
// object-store database over SQLite. Each declared store maps to one
// table holding the record JSON plus one column per secondary index,
// extracted at write time. Transactions provide the atomicity the
// engines above rely on.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/growth90/internal/events"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the single logical Growth90 database.
type Store struct {
	db   *sql.DB
	defs map[string]StoreDef
	bus  *events.Bus
	now  func() time.Time
}

// Option configures a Store at open time.
type Option func(*Store)

// WithBus attaches an event bus; storage events are emitted on it.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects to the SQLite database at dsn, applies pragmas, and
// creates missing stores and indices idempotently.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{
		db:   db,
		defs: schemaByName(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	s.emit(events.StorageInitialized, SchemaVersion)
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) emit(name string, payload any) {
	if s.bus != nil {
		s.bus.Emit(name, payload)
	}
}

// applyPragmas configures SQLite for single-user local operation.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate compares the on-disk version to SchemaVersion and creates the
// declared stores and indices. A newer on-disk version fails with
// KindUpgrade: the caller retries after the newer writer releases.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL
	)`); err != nil {
		return backendErr("migrate", "", err)
	}

	var disk int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta WHERE id = 1`).Scan(&disk)
	switch {
	case err == sql.ErrNoRows:
		disk = 0
	case err != nil:
		return backendErr("migrate", "", err)
	}

	if disk > SchemaVersion {
		return &StorageError{
			Kind: KindUpgrade,
			Op:   "migrate",
			Err:  fmt.Errorf("on-disk version %d is newer than code version %d", disk, SchemaVersion),
		}
	}

	for _, def := range Schema() {
		if err := s.createStore(ctx, def); err != nil {
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO schema_meta (id, version) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version`,
		SchemaVersion,
	); err != nil {
		return backendErr("migrate", "", err)
	}
	return nil
}

func (s *Store) createStore(ctx context.Context, def StoreDef) error {
	keyCol := `k TEXT PRIMARY KEY`
	if def.AutoKey {
		keyCol = `k INTEGER PRIMARY KEY AUTOINCREMENT`
	}

	cols := keyCol + `, data TEXT NOT NULL`
	for _, idx := range def.Indices {
		// No declared type: values keep the storage class they arrive
		// with, so numeric index keys compare numerically and strings
		// lexicographically.
		cols += fmt.Sprintf(`, %q`, indexColumn(idx.Name))
	}

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%s)`, def.Name, cols)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return backendErr("migrate", def.Name, err)
	}

	for _, idx := range def.Indices {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmt := fmt.Sprintf(`CREATE %sINDEX IF NOT EXISTS %q ON %q (%q)`,
			unique, def.Name+"_"+idx.Name, def.Name, indexColumn(idx.Name))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return backendErr("migrate", def.Name, err)
		}
	}
	return nil
}

func indexColumn(name string) string {
	return "ix_" + name
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GROWTH90_DB environment variable
// 2. $XDG_DATA_HOME/growth90/growth90.db
// 3. ~/.local/share/growth90/growth90.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GROWTH90_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "growth90", "growth90.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
