package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zapponejosh/daily-office/internal/reftables"
)

// ImportRecord describes one import of the reference tables.
type ImportRecord struct {
	ID            int64      `json:"id"`
	ImportID      string     `json:"import_id"`
	Source        string     `json:"source"`
	CalendarItems int        `json:"calendar_items"`
	Collects      int        `json:"collects"`
	Communion     int        `json:"communion"`
	Hagiography   int        `json:"hagiography"`
	Lessons       int        `json:"lessons"`
	SchemaVersion int        `json:"schema_version"`
	ImportedAt    *time.Time `json:"imported_at,omitempty"`
}

// Counts returns the row counts the import wrote, keyed like
// reftables.Tables.Counts.
func (r *ImportRecord) Counts() map[string]int {
	return map[string]int{
		reftables.CalendarFile:    r.CalendarItems,
		reftables.CollectsFile:    r.Collects,
		reftables.CommunionFile:   r.Communion,
		reftables.HagiographyFile: r.Hagiography,
		reftables.LessonsFile:     r.Lessons,
	}
}

// -----------------------------------------------------------------
// Column helpers
// -----------------------------------------------------------------

// marshalRefs encodes a scripture reference list for a TEXT column. A nil
// list is stored as "[]".
func marshalRefs(refs []string) (string, error) {
	if refs == nil {
		refs = []string{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("marshal references: %w", err)
	}
	return string(b), nil
}

func unmarshalRefs(s string) ([]string, error) {
	var refs []string
	if s == "" {
		return refs, nil
	}
	if err := json.Unmarshal([]byte(s), &refs); err != nil {
		return nil, fmt.Errorf("unmarshal references %q: %w", s, err)
	}
	return refs, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTimestamp parses a timestamp from SQLite TEXT format. Returns nil if
// the value is NULL or in no known layout.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}
