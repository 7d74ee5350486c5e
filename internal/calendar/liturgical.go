package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the ISO civil-date layout used for DateMap keys and JSON.
const DateLayout = "2006-01-02"

// Date returns the civil date y-m-d at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Civil drops the clock and zone of t, keeping its wall-clock date.
func Civil(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// AddDays returns d moved by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Civil(b).Sub(Civil(a)).Hours() / 24)
}

// NextWeekday returns the first date on or after d that falls on wd.
func NextWeekday(d time.Time, wd time.Weekday) time.Time {
	return AddDays(d, (int(wd)-int(d.Weekday())+7)%7)
}

// NextSundayAfter returns the first Sunday strictly after d.
func NextSundayAfter(d time.Time) time.Time {
	return NextWeekday(AddDays(d, 1), time.Sunday)
}

// PreviousSunday returns d if it is a Sunday, else the Sunday before it.
func PreviousSunday(d time.Time) time.Time {
	return AddDays(d, -int(d.Weekday()))
}

// FindSundayBetween finds the Sunday within [start, end].
// Returns nil if no Sunday exists in the range.
func FindSundayBetween(start, end time.Time) *time.Time {
	current := NextWeekday(start, time.Sunday)
	if current.After(end) {
		return nil
	}
	return &current
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseDateString parses YYYY-MM-DD, rejecting impossible dates.
func ParseDateString(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// MonthDayKey returns the "MM-DD" key of a date.
func MonthDayKey(d time.Time) string {
	return d.Format("01-02")
}

// DayName returns the day of week name (Sunday, Monday, etc.)
func DayName(date time.Time) string {
	return date.Weekday().String()
}

var (
	ordinalUnits = []string{"", "First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth",
		"Tenth", "Eleventh", "Twelfth", "Thirteenth", "Fourteenth", "Fifteenth", "Sixteenth", "Seventeenth",
		"Eighteenth", "Nineteenth"}
	ordinalTens = map[int]string{2: "Twenty", 3: "Thirty"}
)

// Ordinal returns the title-case word ordinal of n, 1 through 39
// (First, Second, ..., Twenty-Fifth). Other values fall back to digits.
func Ordinal(n int) string {
	switch {
	case n >= 1 && n < 20:
		return ordinalUnits[n]
	case n == 20:
		return "Twentieth"
	case n == 30:
		return "Thirtieth"
	case n > 20 && n < 40:
		return ordinalTens[n/10] + "-" + ordinalUnits[n%10]
	}
	return fmt.Sprintf("%dth", n)
}

var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// StripMarkdownLinks replaces every [text](url) with text.
func StripMarkdownLinks(s string) string {
	return markdownLink.ReplaceAllString(s, "$1")
}

// LinkOf returns the url of the first markdown link in s, if any.
func LinkOf(s string) string {
	m := markdownLink.FindStringSubmatchIndex(s)
	if m == nil {
		return ""
	}
	link := s[m[0]:m[1]]
	return strings.TrimSuffix(link[strings.Index(link, "](")+2:], ")")
}

// WeekOfSeason returns which week of a season a date falls in, counting
// from 1 at the season's start.
func WeekOfSeason(date, seasonStart time.Time) int {
	return DaysBetween(seasonStart, date)/7 + 1
}
