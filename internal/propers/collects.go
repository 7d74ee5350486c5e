package propers

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// CollectMatch is a collect appointed for a day.
type CollectMatch struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	Source  string `json:"source,omitempty"`
	IsVigil bool   `json:"isVigil,omitempty"`
}

// These never carry forward to the following weekdays.
var notCarried = map[string]bool{
	"annunciation": true,
	"all-saints":   true,
}

// Collects appoints a collect list to every day of a liturgical year.
type Collects struct {
	table []reftables.Collect
	byID  map[string]reftables.Collect
	days  map[string][]CollectMatch
}

// NewCollects joins cal against the collects table.
//
// A day's collects are those matched by its resolved items. A day with no
// match repeats the collect of the most recent Sunday or Principal Feast,
// and a day holding only a vigil says that collect before the vigil's own.
// A Principal Sunday starts the carry-forward afresh.
func NewCollects(cal *calendar.Calendar, table []reftables.Collect) *Collects {
	c := &Collects{
		table: table,
		byID:  make(map[string]reftables.Collect),
		days:  make(map[string][]CollectMatch),
	}
	for _, col := range table {
		if col.ID != "" {
			c.byID[col.ID] = col
		}
	}

	var lastPrimary *CollectMatch
	walk(cal, func(d time.Time, items []calendar.CalendarItem) {
		if lo.SomeBy(items, func(it calendar.CalendarItem) bool { return it.Rank == calendar.RankPrincipalSunday }) {
			lastPrimary = nil
		}

		var matched []CollectMatch
		primarySet := false
		for _, it := range items {
			col, ok := c.match(it)
			if !ok {
				continue
			}
			m := CollectMatch{Title: col.Title, Text: col.Text, Source: col.Source, IsVigil: it.IsVigil}
			matched = append(matched, m)

			if !primarySet && isPrimary(it) {
				primary := m
				lastPrimary = &primary
				primarySet = true
			}
		}

		switch {
		case len(matched) == 0:
			if lastPrimary != nil {
				matched = []CollectMatch{*lastPrimary}
			}
		case len(items) == 1 && items[0].IsVigil && lastPrimary != nil:
			matched = append([]CollectMatch{*lastPrimary}, matched...)
		}

		if len(matched) > 0 {
			c.days[dayKey(d)] = matched
		}
	})

	return c
}

func isPrimary(it calendar.CalendarItem) bool {
	if notCarried[it.ID] {
		return false
	}
	return it.IsSunday || it.IsPrincipalSunday || it.IsPrincipalFeast
}

func (c *Collects) match(it calendar.CalendarItem) (reftables.Collect, bool) {
	if col, ok := c.byID[it.ID]; ok {
		return col, true
	}
	matches := MatchCollects(c.table, calendar.StripMarkdownLinks(it.Title))
	if len(matches) == 0 {
		return reftables.Collect{}, false
	}
	return matches[0], true
}

// MatchCollects returns the collects whose title is a prefix of title.
func MatchCollects(table []reftables.Collect, title string) []reftables.Collect {
	return lo.Filter(table, func(col reftables.Collect, _ int) bool {
		return strings.HasPrefix(title, col.Title)
	})
}

// All returns the collects of every day that has any, keyed by ISO date.
func (c *Collects) All() map[string][]CollectMatch {
	out := make(map[string][]CollectMatch, len(c.days))
	for k, v := range c.days {
		out[k] = append([]CollectMatch(nil), v...)
	}
	return out
}

// Day returns the collects for d, or nil.
func (c *Collects) Day(d time.Time) []CollectMatch {
	return append([]CollectMatch(nil), c.days[dayKey(d)]...)
}
