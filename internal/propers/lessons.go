package propers

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// LessonMatch is the daily-office lessons appointed for a day.
type LessonMatch struct {
	Title   string           `json:"title"`
	Morning reftables.Lesson `json:"morning"`
	Evening reftables.Lesson `json:"evening"`
}

// Lessons appoints morning and evening lessons to each day.
//
// A day takes the entry of its first resolved item that has one, else the
// entry keyed by its civil MM-DD, else the weekday's entry in the cycle of
// the preceding Sunday. Days none of these reach are omitted.
type Lessons struct {
	days map[string]LessonMatch
}

// NewLessons joins cal against the lessons table.
func NewLessons(cal *calendar.Calendar, table reftables.LessonsTable) *Lessons {
	l := &Lessons{days: make(map[string]LessonMatch)}

	walk(cal, func(d time.Time, items []calendar.CalendarItem) {
		if m, ok := lessonFor(cal, table, d, items); ok {
			l.days[dayKey(d)] = m
		}
	})

	return l
}

func lessonFor(cal *calendar.Calendar, table reftables.LessonsTable, d time.Time, items []calendar.CalendarItem) (LessonMatch, bool) {
	for _, it := range items {
		if entry, ok := lookupLessons(table, it, 0); ok {
			return LessonMatch{Title: it.Title, Morning: entry.Morning, Evening: entry.Evening}, true
		}
	}

	if entries := table[calendar.MonthDayKey(d)]; len(entries) > 0 {
		return LessonMatch{
			Title:   d.Format("January 2"),
			Morning: entries[0].Morning,
			Evening: entries[0].Evening,
		}, true
	}

	weekday := int(d.Weekday())
	if weekday == 0 {
		return LessonMatch{}, false
	}
	for _, it := range cal.Day(calendar.PreviousSunday(d), true) {
		if entry, ok := lookupLessons(table, it, weekday); ok {
			return LessonMatch{
				Title:   weekdayTitle(d.Weekday(), it.Title),
				Morning: entry.Morning,
				Evening: entry.Evening,
			}, true
		}
	}

	return LessonMatch{}, false
}

func lookupLessons(table reftables.LessonsTable, it calendar.CalendarItem, index int) (reftables.DayLessons, bool) {
	for _, key := range keysFor(it) {
		if entries, ok := table[key]; ok && index < len(entries) {
			return entries[index], true
		}
	}
	return reftables.DayLessons{}, false
}

// weekdayTitle names a weekday by its Sunday: "Monday after the First
// Sunday of Advent", "Tuesday after Trinity Sunday".
func weekdayTitle(wd time.Weekday, sundayTitle string) string {
	title := sundayTitle
	if strings.Contains(title, " Sunday ") {
		title = "the " + title
	}
	return fmt.Sprintf("%s after %s", wd, title)
}

// WeekdayTitle names a weekday after the Sunday that opens its week. It
// returns "" for Sundays and for weeks whose Sunday has no observance.
func WeekdayTitle(cal *calendar.Calendar, d time.Time) string {
	if d.Weekday() == time.Sunday {
		return ""
	}
	items := cal.Day(calendar.PreviousSunday(d), true)
	if len(items) == 0 {
		return ""
	}
	sunday, ok := lo.Find(items, func(it calendar.CalendarItem) bool {
		return it.IsSunday || it.IsPrincipalSunday
	})
	if !ok {
		sunday = items[0]
	}
	return weekdayTitle(d.Weekday(), sunday.Title)
}

// All returns the lessons of every day that has any.
func (l *Lessons) All() map[string]LessonMatch {
	out := make(map[string]LessonMatch, len(l.days))
	for k, v := range l.days {
		out[k] = v
	}
	return out
}

// Day returns the lessons for d.
func (l *Lessons) Day(d time.Time) (LessonMatch, bool) {
	m, ok := l.days[dayKey(d)]
	return m, ok
}
