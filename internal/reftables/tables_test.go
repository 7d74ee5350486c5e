package reftables

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	tables, err := Embedded()
	require.NoError(t, err)

	counts := tables.Counts()
	for _, name := range []string{CalendarFile, CollectsFile, CommunionFile, HagiographyFile, LessonsFile} {
		assert.Positive(t, counts[name], "%s should not be empty", name)
	}

	for key, days := range tables.Lessons {
		if len(days) != 1 && len(days) != 7 {
			t.Errorf("lessons %q has %d entries, want 1 or 7", key, len(days))
		}
	}
}

func TestParseMonthDay(t *testing.T) {
	tests := []struct {
		in      string
		month   time.Month
		day     int
		wantErr bool
	}{
		{"11-30", time.November, 30, false},
		{"02-29", time.February, 29, false},
		{"02-30", 0, 0, true},
		{"13-01", 0, 0, true},
		{"1-1", 0, 0, true},
		{"ab-cd", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, d, err := ParseMonthDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, m)
			assert.Equal(t, tt.day, d)
		})
	}
}

func TestSplitDateRule(t *testing.T) {
	tests := []struct {
		in, prefix, md string
	}{
		{"12-25", "", "12-25"},
		{"liturgicalYear-07-04", LiturgicalYearPrefix, "07-04"},
		{"calendarYear-12-24", CalendarYearPrefix, "12-24"},
	}
	for _, tt := range tests {
		prefix, md := SplitDateRule(tt.in)
		if prefix != tt.prefix || md != tt.md {
			t.Errorf("SplitDateRule(%q) = %q, %q, want %q, %q", tt.in, prefix, md, tt.prefix, tt.md)
		}
	}
}

func TestValidate(t *testing.T) {
	tables := &Tables{
		Calendar: []CalendarDefinition{
			{ID: "a", Date: "12-25", Title: "A", Rank: 2},
			{ID: "a", Date: "12-32", Title: "B", Rank: 10},
		},
		Collects: []Collect{
			{Title: "A", Text: "x"},
			{Title: "A", Text: "y"},
			{Title: "", Text: "z"},
		},
		Communion:   CommunionTable{"a": {}},
		Hagiography: HagiographyTable{"a": {Link: "https://example.org"}},
		Lessons:     LessonsTable{"a": make([]DayLessons, 8)},
	}

	err := tables.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTable))
	assert.Contains(t, err.Error(), `duplicate id "a"`)
	assert.Contains(t, err.Error(), "rank 10 out of range")
	assert.Contains(t, err.Error(), `duplicate title "A"`)
	assert.Contains(t, err.Error(), "8 entries")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		CalendarFile:    `[{"id":"christmas-day","date":"12-25","title":"Christmas Day","rank":2,"isPrincipalFeast":true}]`,
		CollectsFile:    `[{"id":"christmas-day","title":"Christmas Day","text":"Almighty God..."}]`,
		CommunionFile:   `{"christmas-day":{"epistle":["Hebrews 1:1-12"],"gospel":["John 1:1-14"]}}`,
		HagiographyFile: `{}`,
		LessonsFile:     `{"12-26":[{"morning":{"first":["Isaiah 9"],"second":["Luke 2"]},"evening":{"first":[],"second":[]}}]}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, tables.Calendar, 1)
	assert.Equal(t, []string{"Hebrews 1:1-12"}, tables.Communion["christmas-day"].Epistle)
	assert.Len(t, tables.Lessons["12-26"], 1)
}

func TestLoadFSErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFS(fstest.MapFS{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), CalendarFile)
	})

	t.Run("bad json", func(t *testing.T) {
		fsys := fstest.MapFS{CalendarFile: {Data: []byte(`{`)}}
		_, err := LoadFS(fsys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})
}
