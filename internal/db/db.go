// Package db manages the local SQLite record store.
//
// Two record kinds are persisted, one row per calendar day each: daily
// health metrics and daily spend summaries. The store is the sole owner of
// record state; a store-level mutex serializes mutations so two upserts for
// the same day can never interleave.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string

	// mu serializes all writes. Batch-level sequences spanning a read and
	// several upserts (the carry-forward seed read plus its upsert loop)
	// rely on the sync orchestrator's re-entrancy guard instead.
	mu sync.Mutex
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createDailyMetricsTable(); err != nil {
		return err
	}
	return db.createDailySpendTable()
}

func (db *DB) createDailyMetricsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS daily_metrics (
		day TEXT PRIMARY KEY,
		weight REAL,
		steps INTEGER,
		active_energy REAL,
		sleep_minutes REAL,
		sleep_start TEXT,
		sleep_end TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_daily_metrics_weight ON daily_metrics(day) WHERE weight IS NOT NULL;
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createDailySpendTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS daily_spend (
		day TEXT PRIMARY KEY,
		total_amount REAL NOT NULL DEFAULT 0,
		order_count INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
