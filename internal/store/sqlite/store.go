// Package sqlite persists quote history, watchlists and price alerts.
// Writes to stock_prices go through a single batching goroutine; the CRUD
// tables are written directly since their traffic is tiny.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	Path string // path to SQLite database file, e.g. "data/stocks.db"
}

// Store owns the database handle.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database with WAL mode and initializes the schema.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.Path)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stock_prices (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			price  REAL    NOT NULL,
			volume INTEGER,
			PRIMARY KEY (symbol, ts)
		);

		CREATE TABLE IF NOT EXISTS watchlists (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol   TEXT    NOT NULL UNIQUE,
			added_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol       TEXT    NOT NULL,
			alert_type   TEXT    NOT NULL,
			target_value REAL    NOT NULL,
			active       INTEGER NOT NULL DEFAULT 1,
			created_at   INTEGER NOT NULL,
			triggered_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts (active, symbol);

		CREATE TABLE IF NOT EXISTS stock_info (
			symbol         TEXT PRIMARY KEY,
			company_name   TEXT NOT NULL,
			sector         TEXT,
			industry       TEXT,
			market_cap     REAL,
			pe_ratio       REAL,
			dividend_yield REAL,
			beta           REAL,
			eps            REAL,
			revenue        REAL,
			description    TEXT,
			website        TEXT,
			employees      INTEGER,
			updated_at     INTEGER NOT NULL
		);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
