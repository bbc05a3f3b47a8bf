// Package db tracks which tracks have already been ripped so repeat runs
// skip them, and remembers failures for later retry commands.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Database is the dedup store consulted before every track download.
type Database interface {
	// Downloaded reports whether a track ID was ripped before.
	Downloaded(trackID string) bool

	// SetDownloaded records a finished track.
	SetDownloaded(trackID string) error

	// SetFailed records a failed item for inspection.
	SetFailed(source, mediaType, id string) error

	Close() error
}

// SQLite is the on-disk Database implementation.
type SQLite struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps concurrent track goroutines from serializing on reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	d := &SQLite{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

func (d *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id TEXT PRIMARY KEY,
			downloaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS failed_downloads (
			source TEXT NOT NULL,
			media_type TEXT NOT NULL,
			id TEXT NOT NULL,
			failed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (source, media_type, id)
		)`,
	}
	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

func (d *SQLite) Downloaded(trackID string) bool {
	var one int
	err := d.db.QueryRow("SELECT 1 FROM downloads WHERE id = ?", trackID).Scan(&one)
	return err == nil
}

func (d *SQLite) SetDownloaded(trackID string) error {
	_, err := d.db.Exec("INSERT OR IGNORE INTO downloads (id) VALUES (?)", trackID)
	return err
}

func (d *SQLite) SetFailed(source, mediaType, id string) error {
	_, err := d.db.Exec(
		"INSERT OR REPLACE INTO failed_downloads (source, media_type, id) VALUES (?, ?, ?)",
		source, mediaType, id,
	)
	return err
}

func (d *SQLite) Close() error {
	return d.db.Close()
}

// Dummy is the no-op Database used when dedup tracking is disabled.
type Dummy struct{}

func (Dummy) Downloaded(string) bool         { return false }
func (Dummy) SetDownloaded(string) error     { return nil }
func (Dummy) SetFailed(_, _, _ string) error { return nil }
func (Dummy) Close() error                   { return nil }
