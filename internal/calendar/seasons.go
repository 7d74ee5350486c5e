package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Season names.
const (
	Advent        = "Advent"
	Christmastide = "Christmastide"
	Epiphanytide  = "Epiphanytide"
	PreLent       = "Pre-Lent"
	Lent          = "Lent"
	Eastertide    = "Eastertide"
	Whitsuntide   = "Whitsuntide"
	Trinitytide   = "Trinitytide"
)

// Season is a named, inclusive span of the liturgical year.
type Season struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls within the season.
func (s Season) Contains(d time.Time) bool {
	d = Civil(d)
	return !d.Before(s.Start) && !d.After(s.End)
}

// Days returns the length of the season in days.
func (s Season) Days() int {
	return DaysBetween(s.Start, s.End) + 1
}

// MarshalJSON renders Start and End as YYYY-MM-DD.
func (s Season) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Start string `json:"start"`
		End   string `json:"end"`
	}{s.Name, FormatDate(s.Start), FormatDate(s.End)})
}

// keyDates are the movable anchors of one liturgical year.
type keyDates struct {
	year         int
	advent       time.Time
	christmas    time.Time
	epiphany     time.Time
	septuagesima time.Time
	ashWednesday time.Time
	palmSunday   time.Time
	easter       time.Time
	pentecost    time.Time
	trinity      time.Time
	nextAdvent   time.Time
}

func newKeyDates(year int) keyDates {
	easter := CalculateEaster(year)
	return keyDates{
		year:         year,
		advent:       FirstSundayOfAdvent(year - 1),
		christmas:    Date(year-1, time.December, 25),
		epiphany:     Date(year, time.January, 6),
		septuagesima: AddDays(easter, -63),
		ashWednesday: AddDays(easter, -46),
		palmSunday:   AddDays(easter, -7),
		easter:       easter,
		pentecost:    AddDays(easter, 49),
		trinity:      AddDays(easter, 56),
		nextAdvent:   FirstSundayOfAdvent(year),
	}
}

func (k keyDates) seasons() []Season {
	seasons := []Season{
		{Advent, k.advent, AddDays(k.christmas, -1)},
		{Christmastide, k.christmas, AddDays(k.epiphany, -1)},
		{Epiphanytide, k.epiphany, AddDays(k.septuagesima, -1)},
		{PreLent, k.septuagesima, AddDays(k.ashWednesday, -1)},
		{Lent, k.ashWednesday, AddDays(k.easter, -1)},
		{Eastertide, k.easter, AddDays(k.pentecost, -1)},
		{Whitsuntide, k.pentecost, AddDays(k.trinity, -1)},
		{Trinitytide, k.trinity, AddDays(k.nextAdvent, -1)},
	}
	mustBeContiguous(seasons, k.advent, AddDays(k.nextAdvent, -1))
	return seasons
}

// mustBeContiguous panics unless seasons tile [start, end] exactly.
func mustBeContiguous(seasons []Season, start, end time.Time) {
	next := start
	for _, s := range seasons {
		if !s.Start.Equal(next) || s.End.Before(s.Start) {
			panic(fmt.Sprintf("calendar: season %s %s..%s breaks contiguity at %s",
				s.Name, FormatDate(s.Start), FormatDate(s.End), FormatDate(next)))
		}
		next = AddDays(s.End, 1)
	}
	if !next.Equal(AddDays(end, 1)) {
		panic(fmt.Sprintf("calendar: seasons end %s, want %s", FormatDate(AddDays(next, -1)), FormatDate(end)))
	}
}
