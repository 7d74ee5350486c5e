// Command import loads the reference tables into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -dir data/reference -db data/daily-office.db
//
// With no -dir the tables compiled into the binary are imported. The tables
// are validated before anything is written, and the import replaces the
// stored tables in a single transaction, so it is safe to re-run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/daily-office/internal/database"
	"github.com/zapponejosh/daily-office/internal/logger"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

func main() {
	dir := flag.String("dir", "", "Directory holding the five reference JSON files (default: embedded tables)")
	dbPath := flag.String("db", "data/daily-office.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logger.New(os.Stdout, level, "text")

	if err := run(context.Background(), *dir, *dbPath, log); err != nil {
		log.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("import complete")
}

func run(ctx context.Context, dir, dbPath string, log *slog.Logger) error {
	start := time.Now()

	// =========================================================================
	// Step 1: Read and validate the tables
	// =========================================================================
	source := "embedded"
	var (
		tables *reftables.Tables
		err    error
	)
	if dir == "" {
		tables, err = reftables.Embedded()
	} else {
		source = dir
		tables, err = reftables.LoadDir(dir)
	}
	if err != nil {
		return fmt.Errorf("read tables: %w", err)
	}

	for name, n := range tables.Counts() {
		log.Debug("table read", slog.String("file", name), slog.Int("entries", n))
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	log.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(dbPath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	log.Info("migrations complete", slog.Int("applied", migrated), slog.Int("schema_version", version))

	// =========================================================================
	// Step 3: Replace the stored tables
	// =========================================================================
	rec, err := db.ReplaceTables(ctx, tables, source)
	if err != nil {
		return fmt.Errorf("import tables: %w", err)
	}

	// =========================================================================
	// Step 4: Verify by reading everything back
	// =========================================================================
	if _, err := db.LoadTables(ctx); err != nil {
		return fmt.Errorf("verify import: %w", err)
	}

	if err := db.Health(ctx); err != nil {
		return fmt.Errorf("verify import: %w", err)
	}

	log.Info("import verified",
		slog.String("import_id", rec.ImportID),
		slog.Int("schema_version", rec.SchemaVersion),
		slog.Any("counts", rec.Counts()),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}
