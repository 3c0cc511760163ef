// db.go
//
// SQLite setup for the card ledger: opens the database with WAL journaling,
// a busy timeout and foreign keys, then applies the embedded migrations.
//
// Environment:
//   DB_PATH=./data/bingo.db   (set to "off" to run without a ledger)

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/bingo/internal/ledger"
)

// openDB opens (creating if missing) the SQLite file at dsn and migrates it.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// One writer; keeps PRAGMA state consistent across pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := ledger.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
