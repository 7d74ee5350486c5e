package reftables

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date prefixes accepted by calendar definitions.
const (
	LiturgicalYearPrefix = "liturgicalYear-"
	CalendarYearPrefix   = "calendarYear-"
)

// ParseMonthDay parses an "MM-DD" key.
func ParseMonthDay(s string) (time.Month, int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("month-day %q: want MM-DD", s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("month-day %q: bad month", s)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > daysIn(time.Month(m)) {
		return 0, 0, fmt.Errorf("month-day %q: bad day", s)
	}
	return time.Month(m), d, nil
}

// SplitDateRule separates the year-form prefix from the month-day part of a
// calendar definition date.
func SplitDateRule(s string) (prefix, monthDay string) {
	for _, p := range []string{LiturgicalYearPrefix, CalendarYearPrefix} {
		if strings.HasPrefix(s, p) {
			return p, strings.TrimPrefix(s, p)
		}
	}
	return "", s
}

// daysIn allows Feb 29; non-leap years skip it at resolution time.
func daysIn(m time.Month) int {
	return time.Date(2000, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Validate checks every table and reports all problems at once.
func (t *Tables) Validate() error {
	var errs []error
	bad := func(table, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidTable, table, fmt.Sprintf(format, args...)))
	}

	ids := make(map[string]bool)
	for i, def := range t.Calendar {
		if def.ID == "" {
			bad(CalendarFile, "entry %d: missing id", i)
		} else if ids[def.ID] {
			bad(CalendarFile, "duplicate id %q", def.ID)
		}
		ids[def.ID] = true
		if def.Title == "" {
			bad(CalendarFile, "%s: missing title", def.ID)
		}
		if def.Rank < 1 || def.Rank > 9 {
			bad(CalendarFile, "%s: rank %d out of range", def.ID, def.Rank)
		}
		_, md := SplitDateRule(def.Date)
		if _, _, err := ParseMonthDay(md); err != nil {
			bad(CalendarFile, "%s: %v", def.ID, err)
		}
	}

	titles := make(map[string]bool)
	for i, c := range t.Collects {
		if c.Title == "" || c.Text == "" {
			bad(CollectsFile, "entry %d: title and text are required", i)
			continue
		}
		if titles[c.Title] {
			bad(CollectsFile, "duplicate title %q", c.Title)
		}
		titles[c.Title] = true
	}

	for key, c := range t.Communion {
		if len(c.Epistle) == 0 && len(c.Gospel) == 0 {
			bad(CommunionFile, "%q: no readings", key)
		}
	}

	for key, h := range t.Hagiography {
		if h.Morning == "" && h.Evening == "" {
			bad(HagiographyFile, "%q: no readings", key)
		}
	}

	for key, days := range t.Lessons {
		if len(days) == 0 || len(days) > 7 {
			bad(LessonsFile, "%q: %d entries, want 1..7", key, len(days))
		}
	}

	return errors.Join(errs...)
}
