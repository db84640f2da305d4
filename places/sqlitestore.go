package places

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"hushmap/data"
)

// SQLiteStore persists cache entries in a local SQLite database. It is a
// drop-in alternative to FileStore for installs with many cached areas.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the cache database in the data
// directory.
func OpenSQLiteStore() (*SQLiteStore, error) {
	dbPath := filepath.Join(data.Dir(), "places.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("places db open: %w", err)
	}

	// SQLite works best with limited connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS place_cache (
			key        TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("places db schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (Entry, bool) {
	var payload string
	var fetchedAt time.Time
	err := s.db.QueryRow(`SELECT payload, fetched_at FROM place_cache WHERE key = ?`, key).
		Scan(&payload, &fetchedAt)
	if err != nil {
		return Entry{}, false
	}

	var places []Place
	if err := json.Unmarshal([]byte(payload), &places); err != nil {
		return Entry{}, false
	}
	return Entry{Data: places, Timestamp: fetchedAt}, true
}

func (s *SQLiteStore) Put(key string, e Entry) error {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO place_cache (key, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, fetched_at=excluded.fetched_at`,
		key, string(payload), e.Timestamp)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
