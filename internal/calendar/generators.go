package calendar

import (
	"fmt"
	"strings"
	"time"
)

// SeasonItems is the generator output for one season, before ranking.
type SeasonItems struct {
	Season string
	Items  []CalendarItem
}

type generator func(k keyDates) []CalendarItem

// generators run in season order; their concatenated output precedes the
// fixed items, which decides ties between equal ranks.
var generators = []struct {
	season string
	gen    generator
}{
	{Advent, adventItems},
	{Christmastide, christmastideItems},
	{Epiphanytide, epiphanytideItems},
	{PreLent, preLentItems},
	{Lent, lentItems},
	{Eastertide, eastertideItems},
	{Whitsuntide, whitsuntideItems},
	{Trinitytide, trinitytideItems},
}

var weekdayTitles = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func emberDays(prefix, title string, wednesday time.Time) []CalendarItem {
	return []CalendarItem{
		minorObservance(prefix+"-ember-wednesday", "Ember Wednesday "+title, wednesday),
		minorObservance(prefix+"-ember-friday", "Ember Friday "+title, AddDays(wednesday, 2)),
		minorObservance(prefix+"-ember-saturday", "Ember Saturday "+title, AddDays(wednesday, 3)),
	}
}

func adventItems(k keyDates) []CalendarItem {
	gaudete := AddDays(k.advent, 14)

	items := []CalendarItem{
		principalSunday("advent-1", "First Sunday of Advent", k.advent),
		principalSunday("advent-2", "Second Sunday of Advent", AddDays(k.advent, 7)),
		principalSunday("advent-3", "Third Sunday of Advent (Gaudete)", gaudete),
		principalSunday("advent-4", "Fourth Sunday of Advent", AddDays(k.advent, 21)),
	}
	return append(items, emberDays("advent", "in Advent", AddDays(gaudete, 3))...)
}

func christmastideItems(k keyDates) []CalendarItem {
	first := FindSundayBetween(AddDays(k.christmas, 1), AddDays(k.christmas, 7))
	if first == nil {
		panic("calendar: no Sunday between December 26 and January 1")
	}

	items := []CalendarItem{sunday("christmas-1", "First Sunday after Christmas", *first)}
	if second := AddDays(*first, 7); second.Before(k.epiphany) {
		items = append(items, sunday("christmas-2", "Second Sunday after Christmas", second))
	}
	return items
}

func epiphanytideItems(k keyDates) []CalendarItem {
	var items []CalendarItem
	d := NextSundayAfter(k.epiphany)
	for n := 1; n <= 6 && d.Before(k.septuagesima); n++ {
		items = append(items, sunday(
			fmt.Sprintf("epiphany-%d", n),
			Ordinal(n)+" Sunday after the Epiphany",
			d,
		))
		d = AddDays(d, 7)
	}
	return items
}

func preLentItems(k keyDates) []CalendarItem {
	return []CalendarItem{
		sunday("septuagesima", "Septuagesima", k.septuagesima),
		sunday("sexagesima", "Sexagesima", AddDays(k.septuagesima, 7)),
		sunday("quinquagesima", "Quinquagesima", AddDays(k.septuagesima, 14)),
	}
}

func lentItems(k keyDates) []CalendarItem {
	ash := k.ashWednesday
	items := []CalendarItem{
		majorObservance("ash-wednesday", "Ash Wednesday", ash),
		minorObservance("ash-thursday", "Thursday after Ash Wednesday", AddDays(ash, 1)),
		minorObservance("ash-friday", "Friday after Ash Wednesday", AddDays(ash, 2)),
		minorObservance("ash-saturday", "Saturday after Ash Wednesday", AddDays(ash, 3)),
	}

	lent1 := AddDays(k.easter, -42)
	titles := []string{
		"First Sunday in Lent",
		"Second Sunday in Lent",
		"Third Sunday in Lent",
		"Fourth Sunday in Lent (Laetare)",
		"Fifth Sunday in Lent (Passion Sunday)",
	}
	for i, title := range titles {
		items = append(items, principalSunday(fmt.Sprintf("lent-%d", i+1), title, AddDays(lent1, 7*i)))
	}
	items = append(items, emberDays("lent", "in Lent", AddDays(lent1, 3))...)

	holySaturday := AddDays(k.easter, -1)
	annunciation := Date(k.year, time.March, 25)
	if !annunciation.Before(k.palmSunday) && !annunciation.After(holySaturday) {
		// Monday after the Second Sunday of Easter.
		annunciation = AddDays(k.easter, 8)
	}
	annunciationItem := feast("annunciation",
		"[The Annunciation of the Blessed Virgin Mary](https://en.wikipedia.org/wiki/Annunciation)", annunciation)
	items = append(items,
		vigil("annunciation-eve", "Eve of the Annunciation", AddDays(annunciation, -1)),
		annunciationItem,
	)

	return append(items,
		principalSunday("palm-sunday", "Palm Sunday", k.palmSunday),
		majorObservance("holy-monday", "Monday in Holy Week", AddDays(k.easter, -6)),
		majorObservance("holy-tuesday", "Tuesday in Holy Week", AddDays(k.easter, -5)),
		majorObservance("holy-wednesday", "Wednesday in Holy Week", AddDays(k.easter, -4)),
		majorObservance("maundy-thursday", "Maundy Thursday", AddDays(k.easter, -3)),
		majorObservance("good-friday", "Good Friday", AddDays(k.easter, -2)),
		majorObservance("holy-saturday", "Holy Saturday", holySaturday),
		vigil("easter-vigil", "The Easter Vigil", holySaturday),
	)
}

func eastertideItems(k keyDates) []CalendarItem {
	easterDay := principalSunday("easter-day", "Easter Day", k.easter)
	easterDay.IsPrincipalFeast = true
	items := []CalendarItem{easterDay}

	for i, wd := range weekdayTitles {
		items = append(items, principalFeast(
			"easter-"+strings.ToLower(wd),
			wd+" in Easter Week",
			AddDays(k.easter, i+1),
		))
	}

	items = append(items, principalSunday("easter-2", "Second Sunday of Easter", AddDays(k.easter, 7)))
	for n := 3; n <= 6; n++ {
		items = append(items, sunday(
			fmt.Sprintf("easter-%d", n),
			Ordinal(n)+" Sunday of Easter",
			AddDays(k.easter, 7*(n-1)),
		))
	}

	return append(items,
		minorObservance("rogation-monday", "Rogation Monday", AddDays(k.easter, 36)),
		minorObservance("rogation-tuesday", "Rogation Tuesday", AddDays(k.easter, 37)),
		minorObservance("rogation-wednesday", "Rogation Wednesday", AddDays(k.easter, 38)),
		vigil("ascension-eve", "Eve of the Ascension", AddDays(k.easter, 38)),
		principalFeast("ascension", "Ascension Day", AddDays(k.easter, 39)),
		sunday("ascension-sunday", "Sunday after Ascension Day", AddDays(k.easter, 42)),
	)
}

func whitsuntideItems(k keyDates) []CalendarItem {
	whitsunday := principalSunday("pentecost", "Whitsunday", k.pentecost)
	whitsunday.IsPrincipalFeast = true

	items := []CalendarItem{
		vigil("pentecost-eve", "Eve of Pentecost", AddDays(k.pentecost, -1)),
		whitsunday,
		feast("whit-monday", "Monday in Whitsun Week", AddDays(k.pentecost, 1)),
		feast("whit-tuesday", "Tuesday in Whitsun Week", AddDays(k.pentecost, 2)),
	}
	return append(items, emberDays("whitsun", "in Whitsun Week", AddDays(k.pentecost, 3))...)
}

func trinitytideItems(k keyDates) []CalendarItem {
	items := []CalendarItem{
		principalSunday("trinity-sunday", "Trinity Sunday", k.trinity),
		feast("corpus-christi", "Corpus Christi", AddDays(k.trinity, 4)),
	}

	sundayBeforeAdvent := AddDays(k.nextAdvent, -7)
	d := AddDays(k.trinity, 7)
	for n := 1; n <= 26 && d.Before(sundayBeforeAdvent); n++ {
		items = append(items, sunday(
			fmt.Sprintf("trinity-%d", n),
			Ordinal(n)+" Sunday after Trinity",
			d,
		))
		d = AddDays(d, 7)
	}
	items = append(items, sunday("sunday-before-advent", "Sunday Before Advent", sundayBeforeAdvent))

	holyCross := Date(k.year, time.September, 14)
	items = append(items, emberDays("september", "in September", NextWeekday(AddDays(holyCross, 1), time.Wednesday))...)

	thanksgiving := AddDays(NextWeekday(Date(k.year, time.November, 1), time.Thursday), 21)
	return append(items, note("thanksgiving-day", "Thanksgiving Day", thanksgiving))
}
