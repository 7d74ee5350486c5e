// Package database stores the reference tables in SQLite so a deployment
// can ship corrected propers without rebuilding the binary.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")

	// ErrEmpty is returned when nothing has been imported yet.
	ErrEmpty = errors.New("reference tables not imported")

	// ErrStale is returned by Health when the stored rows no longer match
	// the counts recorded by the latest import.
	ErrStale = errors.New("reference tables differ from latest import")
)

// DB is the SQLite store of the reference tables.
type DB struct {
	*sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the store at path, creating the file and its directory if
// needed. ":memory:" gives a private in-memory store.
//
// One connection is kept. Imports are the only writer and the server reads
// every table once at startup, so a pool buys nothing and an in-memory
// store would otherwise be split across connections.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("reference store opened", slog.String("path", path))
	return &DB{DB: sqlDB, path: path, logger: logger}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("reference store closed", slog.String("path", db.path))
	return db.DB.Close()
}

// Health reports whether the store answers and still holds exactly the
// rows its latest import wrote.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rec, err := db.LatestImport(ctx)
	if errors.Is(err, ErrNotFound) {
		return ErrEmpty
	}
	if err != nil {
		return err
	}

	counts, err := db.TableCounts(ctx)
	if err != nil {
		return err
	}
	for name, want := range rec.Counts() {
		if counts[name] != want {
			return fmt.Errorf("%w: %s has %d rows, import %s wrote %d",
				ErrStale, name, counts[name], rec.ImportID, want)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// constraintError maps SQLite unique and primary-key violations to
// ErrDuplicate and wraps everything else with msg.
func constraintError(err error, msg string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%s: %w", msg, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
