package marker

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteStore records marks in a SQLite database instead of on the files.
// It lets the tool run where the filesystem has no usable attribute and gives
// other backup tools a list of excluded paths.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Lister = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens or creates the database at path.
// An empty path opens an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: one writer, and the in-memory database lives exactly
	// as long as this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN params may be ignored by modernc.org/sqlite, so pragmas are executed.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS exclusions (
		path      TEXT PRIMARY KEY,
		marked_at INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// IsExcluded implements Store.
func (s *SQLiteStore) IsExcluded(path string) (bool, error) {
	if err := checkExists(path); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, fmt.Errorf("store is closed")
	}

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM exclusions WHERE path = ?`, path).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to query %s: %w", path, err)
	}
	return true, nil
}

// AddExclusion implements Store.
func (s *SQLiteStore) AddExclusion(path string) error {
	if err := checkExists(path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO exclusions (path, marked_at) VALUES (?, ?)`,
		path, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to mark %s: %w", path, err)
	}
	return nil
}

// RemoveExclusion implements Store.
func (s *SQLiteStore) RemoveExclusion(path string) error {
	if err := checkExists(path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	if _, err := s.db.Exec(`DELETE FROM exclusions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to unmark %s: %w", path, err)
	}
	return nil
}

// List returns every recorded path in lexicographic order, including paths
// that no longer exist.
func (s *SQLiteStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.Query(`SELECT path FROM exclusions ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan exclusion: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Close checkpoints the WAL and closes the database. It is idempotent.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}
