// Package lectionary merges the resolved calendar and its propers into one
// daily-office record per day.
package lectionary

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/propers"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// Collect is a collect as printed in an office.
type Collect struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// Third is the saint's reading added to an office.
type Third struct {
	Title   string `json:"title"`
	Reading string `json:"reading"`
	Link    string `json:"link,omitempty"`
}

// Communion is the epistle and gospel attached to an office.
type Communion struct {
	Epistle []string `json:"epistle"`
	Gospel  []string `json:"gospel"`
	Source  string   `json:"source,omitempty"`
}

// Lessons is everything appointed for one office.
type Lessons struct {
	First     []string   `json:"first"`
	Second    []string   `json:"second"`
	Third     *Third     `json:"third,omitempty"`
	Communion *Communion `json:"communion,omitempty"`
	Collects  []Collect  `json:"collects"`
}

// Item is the lectionary record for one day.
type Item struct {
	Date                string  `json:"date"`
	Season              string  `json:"season"`
	PrimaryObservance   string  `json:"primaryObservance"`
	SecondaryObservance string  `json:"secondaryObservance,omitempty"`
	Morning             Lessons `json:"morning"`
	Evening             Lessons `json:"evening"`
}

// Lectionary is the merged lectionary of one liturgical year.
type Lectionary struct {
	cal         *calendar.Calendar
	collects    *propers.Collects
	communion   *propers.Communion
	hagiography *propers.Hagiography
	lessons     *propers.Lessons
}

// New joins cal against the reference tables.
func New(cal *calendar.Calendar, tables *reftables.Tables) *Lectionary {
	return &Lectionary{
		cal:         cal,
		collects:    propers.NewCollects(cal, tables.Collects),
		communion:   propers.NewCommunion(cal, tables.Communion),
		hagiography: propers.NewHagiography(cal, tables.Hagiography),
		lessons:     propers.NewLessons(cal, tables.Lessons),
	}
}

// Calendar returns the underlying calendar.
func (l *Lectionary) Calendar() *calendar.Calendar { return l.cal }

// All returns the record of every day of the year.
func (l *Lectionary) All(withLinks bool) map[string]Item {
	days := l.cal.Days()
	out := make(map[string]Item, len(days))
	for _, d := range days {
		if item := l.Day(d, withLinks); item != nil {
			out[item.Date] = *item
		}
	}
	return out
}

// Day returns the record for d, or nil when d is outside the year. A day
// the lessons table does not reach still has its season, title and
// collects, with empty lesson lists.
func (l *Lectionary) Day(d time.Time, withLinks bool) *Item {
	d = calendar.Civil(d)
	if !l.cal.Contains(d) {
		return nil
	}

	title := func(s string) string {
		if withLinks {
			return s
		}
		return calendar.StripMarkdownLinks(s)
	}

	items := l.cal.Day(d, true)
	lessons, hasLessons := l.lessons.Day(d)

	season, _ := l.cal.SeasonOf(d)
	item := &Item{Date: calendar.FormatDate(d), Season: season.Name}

	switch {
	case len(items) > 0:
		item.PrimaryObservance = title(items[0].Title)
		if len(items) > 1 {
			item.SecondaryObservance = title(items[1].Title)
		}
	case hasLessons:
		item.PrimaryObservance = title(lessons.Title)
	default:
		item.PrimaryObservance = title(propers.WeekdayTitle(l.cal, d))
	}
	if item.PrimaryObservance == "" {
		item.PrimaryObservance = fmt.Sprintf("%s in %s", d.Weekday(), season.Name)
	}

	item.Morning.First, item.Morning.Second = refs(lessons.Morning.First), refs(lessons.Morning.Second)
	item.Evening.First, item.Evening.Second = refs(lessons.Evening.First), refs(lessons.Evening.Second)

	collects := l.collects.Day(d)
	isVigil := func(c propers.CollectMatch, _ int) bool { return c.IsVigil }
	toCollect := func(c propers.CollectMatch, _ int) Collect {
		return Collect{Title: title(c.Title), Text: c.Text, Source: c.Source}
	}
	morning := lo.Map(lo.Reject(collects, isVigil), toCollect)
	evening := lo.Map(lo.Filter(collects, isVigil), toCollect)
	if len(evening) == 0 {
		evening = morning
	}
	item.Morning.Collects = morning
	item.Evening.Collects = evening

	for _, c := range l.communion.Day(d) {
		comm := &Communion{Epistle: c.Epistle, Gospel: c.Gospel, Source: c.Source}
		if c.IsVigil {
			item.Evening.Communion = comm
		} else {
			item.Morning.Communion = comm
		}
	}

	if h, ok := l.hagiography.Day(d); ok {
		if h.Morning != "" {
			item.Morning.Third = &Third{Title: title(h.Title), Reading: h.Morning, Link: h.Link}
		}
		if h.Evening != "" {
			item.Evening.Third = &Third{Title: title(h.Title), Reading: h.Evening, Link: h.Link}
		}
	}

	return item
}

func refs(r []string) []string {
	if r == nil {
		return []string{}
	}
	return r
}
