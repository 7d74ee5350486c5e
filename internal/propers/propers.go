// Package propers joins a resolved liturgical year against the reference
// tables: collects, communion propers, saints' readings and daily lessons.
//
// Every join walks the year from Advent Sunday to the eve of the next and is
// computed once at construction. Lookups try the observance id first and
// fall back to the title with markdown links stripped.
package propers

import (
	"time"

	"github.com/zapponejosh/daily-office/internal/calendar"
)

// keysFor returns the lookup keys of an item in preference order.
func keysFor(it calendar.CalendarItem) []string {
	return []string{it.ID, calendar.StripMarkdownLinks(it.Title)}
}

// walk calls fn for every date of the year with its resolved items.
func walk(cal *calendar.Calendar, fn func(d time.Time, items []calendar.CalendarItem)) {
	for _, d := range cal.Days() {
		fn(d, cal.Day(d, true))
	}
}

func dayKey(d time.Time) string {
	return calendar.FormatDate(calendar.Civil(d))
}
