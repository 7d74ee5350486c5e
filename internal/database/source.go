package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapponejosh/daily-office/internal/config"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// LoadReference loads the reference tables from the source cfg names. For
// the sqlite source the opened, migrated store is returned too and the
// caller must Close it; otherwise the returned *DB is nil.
func LoadReference(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*reftables.Tables, *DB, error) {
	switch cfg.ReferenceSource {
	case config.SourceEmbedded:
		t, err := reftables.Embedded()
		return t, nil, err

	case config.SourceDir:
		t, err := reftables.LoadDir(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", cfg.DataDir, err)
		}
		return t, nil, nil

	case config.SourceSQLite:
		db, err := Open(cfg.DatabasePath, logger)
		if err != nil {
			return nil, nil, err
		}
		if _, err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		t, err := db.LoadTables(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("load %s: %w", cfg.DatabasePath, err)
		}
		return t, db, nil
	}

	return nil, nil, fmt.Errorf("unknown reference source %q", cfg.ReferenceSource)
}
