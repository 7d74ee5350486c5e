package propers

import (
	"time"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// CommunionMatch is the epistle and gospel appointed for an observance.
type CommunionMatch struct {
	Title   string   `json:"title"`
	Epistle []string `json:"epistle"`
	Gospel  []string `json:"gospel"`
	Source  string   `json:"source,omitempty"`
	IsVigil bool     `json:"isVigil,omitempty"`
}

// Communion appoints communion propers to every day of a liturgical year.
// A day keeps at most one ordinary entry plus at most one vigil entry.
type Communion struct {
	days map[string][]CommunionMatch
}

// NewCommunion joins cal against the communion table.
func NewCommunion(cal *calendar.Calendar, table reftables.CommunionTable) *Communion {
	c := &Communion{days: make(map[string][]CommunionMatch)}

	walk(cal, func(d time.Time, items []calendar.CalendarItem) {
		var main, eve *CommunionMatch
		for _, it := range items {
			entry, ok := lookupCommunion(table, it)
			if !ok {
				continue
			}
			m := CommunionMatch{
				Title:   it.Title,
				Epistle: entry.Epistle,
				Gospel:  entry.Gospel,
				Source:  entry.Source,
				IsVigil: entry.IsVigil || it.IsVigil,
			}
			switch {
			case m.IsVigil && eve == nil:
				eve = &m
			case !m.IsVigil && main == nil:
				main = &m
			}
		}

		var out []CommunionMatch
		if main != nil {
			out = append(out, *main)
		}
		if eve != nil {
			out = append(out, *eve)
		}
		if len(out) > 0 {
			c.days[dayKey(d)] = out
		}
	})

	return c
}

func lookupCommunion(table reftables.CommunionTable, it calendar.CalendarItem) (reftables.Communion, bool) {
	for _, key := range keysFor(it) {
		if entry, ok := table[key]; ok {
			return entry, true
		}
	}
	return reftables.Communion{}, false
}

// All returns the communion propers of every day that has any.
func (c *Communion) All() map[string][]CommunionMatch {
	out := make(map[string][]CommunionMatch, len(c.days))
	for k, v := range c.days {
		out[k] = append([]CommunionMatch(nil), v...)
	}
	return out
}

// Day returns the communion propers for d, or nil.
func (c *Communion) Day(d time.Time) []CommunionMatch {
	return append([]CommunionMatch(nil), c.days[dayKey(d)]...)
}
