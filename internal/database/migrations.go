package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in slice order; versions must stay consecutive.
var migrations = []migration{
	{1, "reference tables", migrationV1ReferenceTables},
	{2, "import log", migrationV2ImportLog},
	{3, "import schema version", migrationV3ImportSchemaVersion},
}

// Migrate applies pending migrations inside one transaction and returns how
// many were applied. Applied versions are recorded in schema_migrations.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	count := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TEXT NOT NULL DEFAULT (datetime('now'))
			)`); err != nil {
			return fmt.Errorf("create schema_migrations table: %w", err)
		}

		current, err := schemaVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.version <= current {
				continue
			}
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("execute migration %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", m.version, err)
			}
			db.logger.Info("applied migration", slog.Int("version", m.version), slog.String("name", m.name))
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SchemaVersion returns the highest applied migration. Migrate must have
// run at least once.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return schemaVersion(ctx, db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func schemaVersion(ctx context.Context, q queryer) (int, error) {
	var v sql.NullInt64
	if err := q.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return int(v.Int64), nil
}

// migrationV1ReferenceTables creates one table per reference file.
//
// Scripture reference lists are stored as JSON arrays in TEXT columns; they
// are only ever read back whole. Row order of the calendar and collects
// tables is kept in a position column because first-match lookups depend on
// it.
const migrationV1ReferenceTables = `
-- Calendar item definitions (calendar-items.json)
CREATE TABLE IF NOT EXISTS calendar_items (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,

    -- "MM-DD", "liturgicalYear-MM-DD" or "calendarYear-MM-DD"
    date_rule TEXT NOT NULL,
    title TEXT NOT NULL,
    rank INTEGER NOT NULL CHECK (rank BETWEEN 1 AND 9),

    is_principal_sunday INTEGER NOT NULL DEFAULT 0,
    is_principal_feast INTEGER NOT NULL DEFAULT 0,
    is_special_observance INTEGER NOT NULL DEFAULT 0,
    is_feast INTEGER NOT NULL DEFAULT 0,
    is_sunday INTEGER NOT NULL DEFAULT 0,
    is_vigil INTEGER NOT NULL DEFAULT 0,
    is_saint INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_calendar_items_position
    ON calendar_items(position);

-- Collects (collects.json)
CREATE TABLE IF NOT EXISTS collects (
    position INTEGER PRIMARY KEY,
    id TEXT,
    title TEXT NOT NULL UNIQUE,
    text TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT ''
);

-- Communion propers (communion.json), keyed by id or stripped title
CREATE TABLE IF NOT EXISTS communion (
    key TEXT PRIMARY KEY,
    epistle TEXT NOT NULL DEFAULT '[]',
    gospel TEXT NOT NULL DEFAULT '[]',
    source TEXT NOT NULL DEFAULT '',
    is_vigil INTEGER NOT NULL DEFAULT 0
);

-- Saints' readings (readings.json)
CREATE TABLE IF NOT EXISTS hagiography (
    key TEXT PRIMARY KEY,
    morning TEXT NOT NULL DEFAULT '',
    evening TEXT NOT NULL DEFAULT '',
    link TEXT NOT NULL DEFAULT ''
);

-- Daily-office lessons (lessons.json); day 0 is the keyed day itself,
-- days 1-6 the following weekdays of a Sunday cycle
CREATE TABLE IF NOT EXISTS lessons (
    key TEXT NOT NULL,
    day INTEGER NOT NULL CHECK (day BETWEEN 0 AND 6),
    morning_first TEXT NOT NULL DEFAULT '[]',
    morning_second TEXT NOT NULL DEFAULT '[]',
    evening_first TEXT NOT NULL DEFAULT '[]',
    evening_second TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (key, day)
);
`

// migrationV2ImportLog records each import so the server can report which
// revision of the tables it is running on.
const migrationV2ImportLog = `
CREATE TABLE IF NOT EXISTS import_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL,
    calendar_items INTEGER NOT NULL,
    collects INTEGER NOT NULL,
    communion INTEGER NOT NULL,
    hagiography INTEGER NOT NULL,
    lessons INTEGER NOT NULL,
    imported_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV3ImportSchemaVersion stamps each import with the schema it was
// written under.
const migrationV3ImportSchemaVersion = `
ALTER TABLE import_log ADD COLUMN schema_version INTEGER NOT NULL DEFAULT 0;
`
