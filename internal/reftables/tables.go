// Package reftables holds the read-only reference tables the calendar and
// lectionary are computed from: calendar item definitions, collects,
// communion propers, hagiography readings and daily-office lessons.
//
// Tables are loaded once per process (from the embedded copies, a directory
// of JSON files or the SQLite store) and passed explicitly to the packages
// that need them.
package reftables

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// File names of the five reference tables.
const (
	CalendarFile    = "calendar-items.json"
	CollectsFile    = "collects.json"
	CommunionFile   = "communion.json"
	HagiographyFile = "readings.json"
	LessonsFile     = "lessons.json"
)

//go:embed data/*.json
var embedded embed.FS

// ErrInvalidTable is returned (wrapped) when a table fails validation.
var ErrInvalidTable = errors.New("invalid reference table")

// CalendarDefinition is one fixed-date entry of calendar-items.json.
//
// Date is "MM-DD", "liturgicalYear-MM-DD" or "calendarYear-MM-DD".
type CalendarDefinition struct {
	ID                  string `json:"id"`
	Date                string `json:"date"`
	Title               string `json:"title"`
	Rank                int    `json:"rank"`
	IsPrincipalSunday   bool   `json:"isPrincipalSunday,omitempty"`
	IsPrincipalFeast    bool   `json:"isPrincipalFeast,omitempty"`
	IsSpecialObservance bool   `json:"isSpecialObservance,omitempty"`
	IsFeast             bool   `json:"isFeast,omitempty"`
	IsSunday            bool   `json:"isSunday,omitempty"`
	IsVigil             bool   `json:"isVigil,omitempty"`
	IsSaint             bool   `json:"isSaint,omitempty"`
}

// Collect is one entry of collects.json. ID is optional; when present the
// collect joins on the observance identifier instead of the title.
type Collect struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Communion holds the epistle and gospel for one observance.
type Communion struct {
	Epistle []string `json:"epistle"`
	Gospel  []string `json:"gospel"`
	Source  string   `json:"source,omitempty"`
	IsVigil bool     `json:"isVigil,omitempty"`
}

// Hagiography is the morning/evening reading for a saint's day.
type Hagiography struct {
	Morning string `json:"morning,omitempty"`
	Evening string `json:"evening,omitempty"`
	Link    string `json:"link,omitempty"`
}

// Lesson is the pair of scripture lessons read at one office.
type Lesson struct {
	First  []string `json:"first"`
	Second []string `json:"second"`
}

// DayLessons holds the lessons for Morning and Evening Prayer on one day.
type DayLessons struct {
	Morning Lesson `json:"morning"`
	Evening Lesson `json:"evening"`
}

// CommunionTable maps an observance id or stripped title to its propers.
type CommunionTable map[string]Communion

// HagiographyTable maps an observance id or stripped title to its readings.
type HagiographyTable map[string]Hagiography

// LessonsTable maps an observance id, stripped title or "MM-DD" key to its
// lessons. Index 0 is the day itself; Sunday keys carry the whole week,
// Sunday through Saturday.
type LessonsTable map[string][]DayLessons

// Tables bundles the five reference tables.
type Tables struct {
	Calendar    []CalendarDefinition
	Collects    []Collect
	Communion   CommunionTable
	Hagiography HagiographyTable
	Lessons     LessonsTable
}

// Counts returns the number of entries per table, keyed by file name.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		CalendarFile:    len(t.Calendar),
		CollectsFile:    len(t.Collects),
		CommunionFile:   len(t.Communion),
		HagiographyFile: len(t.Hagiography),
		LessonsFile:     len(t.Lessons),
	}
}

// Embedded returns the tables compiled into the binary.
func Embedded() (*Tables, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded tables: %w", err)
	}
	return LoadFS(sub)
}

// MustEmbedded is Embedded for tests and tools; it panics on error.
func MustEmbedded() *Tables {
	t, err := Embedded()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadDir reads the five JSON tables from a directory.
func LoadDir(dir string) (*Tables, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads and validates the five JSON tables from fsys.
func LoadFS(fsys fs.FS) (*Tables, error) {
	var t Tables

	files := []struct {
		name string
		dst  any
	}{
		{CalendarFile, &t.Calendar},
		{CollectsFile, &t.Collects},
		{CommunionFile, &t.Communion},
		{HagiographyFile, &t.Hagiography},
		{LessonsFile, &t.Lessons},
	}

	for _, f := range files {
		data, err := fs.ReadFile(fsys, path.Clean(f.name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &t, nil
}
