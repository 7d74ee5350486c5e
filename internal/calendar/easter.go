// Package calendar computes the 1928 Prayer Book liturgical calendar: the
// liturgical year containing a date, its seasons, every generated and fixed
// observance, and the resolution of competing observances by rank.
//
// All dates are civil dates held as time.Time at midnight UTC.
package calendar

import (
	"time"
)

// CalculateEaster returns Easter Day for a Gregorian year using the
// Meeus/Jones/Butcher computus.
func CalculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date(year, time.Month(month), day)
}

// FirstSundayOfAdvent returns Advent Sunday for a civil year: the Sunday of
// the week holding the first Thursday of December. It always falls between
// November 27 and December 3.
func FirstSundayOfAdvent(year int) time.Time {
	thursday := NextWeekday(Date(year, time.December, 1), time.Thursday)
	return AddDays(thursday, -4)
}

// LiturgicalYearOf returns the liturgical year a date belongs to. The
// liturgical year is named for the civil year in which its Easter falls.
func LiturgicalYearOf(date time.Time) int {
	d := Civil(date)
	if !d.Before(FirstSundayOfAdvent(d.Year())) {
		return d.Year() + 1
	}
	return d.Year()
}

// CalculateAshWednesday returns Ash Wednesday, 46 days before Easter.
func CalculateAshWednesday(year int) time.Time {
	return AddDays(CalculateEaster(year), -46)
}

// CalculateAscension returns Ascension Day, always a Thursday.
func CalculateAscension(year int) time.Time {
	return AddDays(CalculateEaster(year), 39)
}

// CalculatePentecost returns Whitsunday, seven weeks after Easter.
func CalculatePentecost(year int) time.Time {
	return AddDays(CalculateEaster(year), 49)
}

// CalculateTrinity returns Trinity Sunday.
func CalculateTrinity(year int) time.Time {
	return AddDays(CalculateEaster(year), 56)
}
