package propers

import (
	"time"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// HagiographyMatch is the saint's reading appointed for a day.
type HagiographyMatch struct {
	Title   string `json:"title"`
	Morning string `json:"morning,omitempty"`
	Evening string `json:"evening,omitempty"`
	Link    string `json:"link,omitempty"`
}

// Hagiography appoints saints' readings. The first resolved item of a day,
// in display order, that has an entry wins.
type Hagiography struct {
	days map[string]HagiographyMatch
}

// NewHagiography joins cal against the readings table.
func NewHagiography(cal *calendar.Calendar, table reftables.HagiographyTable) *Hagiography {
	h := &Hagiography{days: make(map[string]HagiographyMatch)}

	walk(cal, func(d time.Time, items []calendar.CalendarItem) {
		for _, it := range items {
			for _, key := range keysFor(it) {
				entry, ok := table[key]
				if !ok {
					continue
				}
				link := entry.Link
				if link == "" {
					link = calendar.LinkOf(it.Title)
				}
				h.days[dayKey(d)] = HagiographyMatch{
					Title:   it.Title,
					Morning: entry.Morning,
					Evening: entry.Evening,
					Link:    link,
				}
				return
			}
		}
	})

	return h
}

// All returns the reading of every day that has one.
func (h *Hagiography) All() map[string]HagiographyMatch {
	out := make(map[string]HagiographyMatch, len(h.days))
	for k, v := range h.days {
		out[k] = v
	}
	return out
}

// Day returns the reading for d.
func (h *Hagiography) Day(d time.Time) (HagiographyMatch, bool) {
	m, ok := h.days[dayKey(d)]
	return m, ok
}
