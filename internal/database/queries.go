package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/zapponejosh/daily-office/internal/reftables"
)

// =============================================================================
// Import
// =============================================================================

// ReplaceTables validates t and swaps it in for the stored tables in one
// transaction. The previous contents are discarded; a failed import leaves
// them untouched.
func (db *DB) ReplaceTables(ctx context.Context, t *reftables.Tables, source string) (*ImportRecord, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	rec := &ImportRecord{
		ImportID:      uuid.NewString(),
		Source:        source,
		CalendarItems: len(t.Calendar),
		Collects:      len(t.Collects),
		Communion:     len(t.Communion),
		Hagiography:   len(t.Hagiography),
		Lessons:       len(t.Lessons),
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"calendar_items", "collects", "communion", "hagiography", "lessons"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		if err := insertCalendar(ctx, tx, t.Calendar); err != nil {
			return err
		}
		if err := insertCollects(ctx, tx, t.Collects); err != nil {
			return err
		}
		if err := insertCommunion(ctx, tx, t.Communion); err != nil {
			return err
		}
		if err := insertHagiography(ctx, tx, t.Hagiography); err != nil {
			return err
		}
		if err := insertLessons(ctx, tx, t.Lessons); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO import_log (
				import_id, source, calendar_items, collects, communion, hagiography, lessons, schema_version
			) VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT MAX(version) FROM schema_migrations))`,
			rec.ImportID, rec.Source, rec.CalendarItems, rec.Collects,
			rec.Communion, rec.Hagiography, rec.Lessons,
		)
		if err != nil {
			return constraintError(err, "record import")
		}
		if rec.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		rec.SchemaVersion, err = schemaVersion(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	db.logger.Info("reference tables imported",
		slog.String("import_id", rec.ImportID),
		slog.String("source", source),
		slog.Int("calendar_items", rec.CalendarItems),
		slog.Int("collects", rec.Collects),
		slog.Int("lessons", rec.Lessons),
	)

	return rec, nil
}

func insertCalendar(ctx context.Context, tx *sql.Tx, defs []reftables.CalendarDefinition) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO calendar_items (
			id, position, date_rule, title, rank,
			is_principal_sunday, is_principal_feast, is_special_observance,
			is_feast, is_sunday, is_vigil, is_saint
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare calendar insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range defs {
		_, err := stmt.ExecContext(ctx,
			d.ID, i, d.Date, d.Title, d.Rank,
			boolInt(d.IsPrincipalSunday), boolInt(d.IsPrincipalFeast), boolInt(d.IsSpecialObservance),
			boolInt(d.IsFeast), boolInt(d.IsSunday), boolInt(d.IsVigil), boolInt(d.IsSaint),
		)
		if err != nil {
			return constraintError(err, fmt.Sprintf("insert calendar item %q", d.ID))
		}
	}
	return nil
}

func insertCollects(ctx context.Context, tx *sql.Tx, collects []reftables.Collect) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collects (position, id, title, text, source, notes)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare collect insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range collects {
		var id sql.NullString
		if c.ID != "" {
			id = sql.NullString{String: c.ID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, id, c.Title, c.Text, c.Source, c.Notes); err != nil {
			return constraintError(err, fmt.Sprintf("insert collect %q", c.Title))
		}
	}
	return nil
}

func insertCommunion(ctx context.Context, tx *sql.Tx, table reftables.CommunionTable) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO communion (key, epistle, gospel, source, is_vigil)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare communion insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range sortedKeys(table) {
		c := table[key]
		epistle, err := marshalRefs(c.Epistle)
		if err != nil {
			return err
		}
		gospel, err := marshalRefs(c.Gospel)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, key, epistle, gospel, c.Source, boolInt(c.IsVigil)); err != nil {
			return constraintError(err, fmt.Sprintf("insert communion %q", key))
		}
	}
	return nil
}

func insertHagiography(ctx context.Context, tx *sql.Tx, table reftables.HagiographyTable) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hagiography (key, morning, evening, link)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare hagiography insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range sortedKeys(table) {
		h := table[key]
		if _, err := stmt.ExecContext(ctx, key, h.Morning, h.Evening, h.Link); err != nil {
			return constraintError(err, fmt.Sprintf("insert hagiography %q", key))
		}
	}
	return nil
}

func insertLessons(ctx context.Context, tx *sql.Tx, table reftables.LessonsTable) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lessons (key, day, morning_first, morning_second, evening_first, evening_second)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare lessons insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range sortedKeys(table) {
		for day, entry := range table[key] {
			cols := make([]any, 0, 4)
			for _, refs := range [][]string{entry.Morning.First, entry.Morning.Second, entry.Evening.First, entry.Evening.Second} {
				s, err := marshalRefs(refs)
				if err != nil {
					return err
				}
				cols = append(cols, s)
			}
			args := append([]any{key, day}, cols...)
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return constraintError(err, fmt.Sprintf("insert lessons %q day %d", key, day))
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// Load
// =============================================================================

// LoadTables reads every reference table back and validates the result.
// Returns ErrEmpty if no import has been run.
func (db *DB) LoadTables(ctx context.Context) (*reftables.Tables, error) {
	if _, err := db.LatestImport(ctx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrEmpty
		}
		return nil, err
	}

	var t reftables.Tables
	var err error

	if t.Calendar, err = db.loadCalendar(ctx); err != nil {
		return nil, err
	}
	if t.Collects, err = db.loadCollects(ctx); err != nil {
		return nil, err
	}
	if t.Communion, err = db.loadCommunion(ctx); err != nil {
		return nil, err
	}
	if t.Hagiography, err = db.loadHagiography(ctx); err != nil {
		return nil, err
	}
	if t.Lessons, err = db.loadLessons(ctx); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("stored tables: %w", err)
	}
	return &t, nil
}

func (db *DB) loadCalendar(ctx context.Context) ([]reftables.CalendarDefinition, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, date_rule, title, rank,
			is_principal_sunday, is_principal_feast, is_special_observance,
			is_feast, is_sunday, is_vigil, is_saint
		FROM calendar_items
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query calendar items: %w", err)
	}
	defer rows.Close()

	var defs []reftables.CalendarDefinition
	for rows.Next() {
		var d reftables.CalendarDefinition
		err := rows.Scan(&d.ID, &d.Date, &d.Title, &d.Rank,
			&d.IsPrincipalSunday, &d.IsPrincipalFeast, &d.IsSpecialObservance,
			&d.IsFeast, &d.IsSunday, &d.IsVigil, &d.IsSaint)
		if err != nil {
			return nil, fmt.Errorf("scan calendar item: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar items: %w", err)
	}
	return defs, nil
}

func (db *DB) loadCollects(ctx context.Context) ([]reftables.Collect, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, text, source, notes
		FROM collects
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query collects: %w", err)
	}
	defer rows.Close()

	var collects []reftables.Collect
	for rows.Next() {
		var c reftables.Collect
		var id sql.NullString
		if err := rows.Scan(&id, &c.Title, &c.Text, &c.Source, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan collect: %w", err)
		}
		c.ID = id.String
		collects = append(collects, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collects: %w", err)
	}
	return collects, nil
}

func (db *DB) loadCommunion(ctx context.Context) (reftables.CommunionTable, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, epistle, gospel, source, is_vigil FROM communion`)
	if err != nil {
		return nil, fmt.Errorf("query communion: %w", err)
	}
	defer rows.Close()

	table := make(reftables.CommunionTable)
	for rows.Next() {
		var key, epistle, gospel string
		var c reftables.Communion
		if err := rows.Scan(&key, &epistle, &gospel, &c.Source, &c.IsVigil); err != nil {
			return nil, fmt.Errorf("scan communion: %w", err)
		}
		if c.Epistle, err = unmarshalRefs(epistle); err != nil {
			return nil, err
		}
		if c.Gospel, err = unmarshalRefs(gospel); err != nil {
			return nil, err
		}
		table[key] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communion: %w", err)
	}
	return table, nil
}

func (db *DB) loadHagiography(ctx context.Context) (reftables.HagiographyTable, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, morning, evening, link FROM hagiography`)
	if err != nil {
		return nil, fmt.Errorf("query hagiography: %w", err)
	}
	defer rows.Close()

	table := make(reftables.HagiographyTable)
	for rows.Next() {
		var key string
		var h reftables.Hagiography
		if err := rows.Scan(&key, &h.Morning, &h.Evening, &h.Link); err != nil {
			return nil, fmt.Errorf("scan hagiography: %w", err)
		}
		table[key] = h
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hagiography: %w", err)
	}
	return table, nil
}

func (db *DB) loadLessons(ctx context.Context) (reftables.LessonsTable, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, day, morning_first, morning_second, evening_first, evening_second
		FROM lessons
		ORDER BY key ASC, day ASC`)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	table := make(reftables.LessonsTable)
	for rows.Next() {
		var key string
		var day int
		var cols [4]string
		if err := rows.Scan(&key, &day, &cols[0], &cols[1], &cols[2], &cols[3]); err != nil {
			return nil, fmt.Errorf("scan lessons: %w", err)
		}
		if day != len(table[key]) {
			return nil, fmt.Errorf("lessons %q: day %d out of sequence", key, day)
		}

		var refs [4][]string
		for i, col := range cols {
			if refs[i], err = unmarshalRefs(col); err != nil {
				return nil, err
			}
		}
		table[key] = append(table[key], reftables.DayLessons{
			Morning: reftables.Lesson{First: refs[0], Second: refs[1]},
			Evening: reftables.Lesson{First: refs[2], Second: refs[3]},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return table, nil
}

// =============================================================================
// Lookups
// =============================================================================

// LatestImport returns the most recent import record.
// Returns ErrNotFound if the store is empty.
func (db *DB) LatestImport(ctx context.Context) (*ImportRecord, error) {
	var rec ImportRecord
	var importedAt sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, import_id, source, calendar_items, collects, communion, hagiography, lessons,
			schema_version, imported_at
		FROM import_log
		ORDER BY id DESC
		LIMIT 1`,
	).Scan(&rec.ID, &rec.ImportID, &rec.Source, &rec.CalendarItems, &rec.Collects,
		&rec.Communion, &rec.Hagiography, &rec.Lessons, &rec.SchemaVersion, &importedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query latest import: %w", err)
	}
	rec.ImportedAt = parseTimestamp(importedAt)
	return &rec, nil
}

// TableCounts returns the stored row count per table, keyed by the
// reference file name. Lessons are counted by key, not by day.
func (db *DB) TableCounts(ctx context.Context) (map[string]int, error) {
	queries := map[string]string{
		reftables.CalendarFile:    `SELECT COUNT(*) FROM calendar_items`,
		reftables.CollectsFile:    `SELECT COUNT(*) FROM collects`,
		reftables.CommunionFile:   `SELECT COUNT(*) FROM communion`,
		reftables.HagiographyFile: `SELECT COUNT(*) FROM hagiography`,
		reftables.LessonsFile:     `SELECT COUNT(DISTINCT key) FROM lessons`,
	}

	counts := make(map[string]int, len(queries))
	for name, q := range queries {
		var n int
		if err := db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}
