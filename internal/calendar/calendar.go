package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zapponejosh/daily-office/internal/reftables"
)

// Calendar is the resolved liturgical year containing an anchor date.
// It is immutable after construction and safe for concurrent reads.
type Calendar struct {
	anchor      time.Time
	keys        keyDates
	seasons     []Season
	seasonItems []SeasonItems
	candidates  map[string][]CalendarItem
	resolved    DateMap
}

// New builds the liturgical year containing anchor. Fixed observances come
// from defs; malformed definitions panic, so validate tables at load time.
func New(anchor time.Time, defs []reftables.CalendarDefinition) *Calendar {
	anchor = Civil(anchor)
	k := newKeyDates(LiturgicalYearOf(anchor))

	c := &Calendar{
		anchor:     anchor,
		keys:       k,
		seasons:    k.seasons(),
		candidates: make(map[string][]CalendarItem),
	}

	var all []CalendarItem
	for _, g := range generators {
		items := g.gen(k)
		c.seasonItems = append(c.seasonItems, SeasonItems{Season: g.season, Items: items})
		all = append(all, items...)
	}
	all = append(all, fixedItems(k, defs)...)

	for _, it := range all {
		key := FormatDate(it.Date)
		c.candidates[key] = append(c.candidates[key], it)
	}

	c.resolved = make(DateMap)
	for key, items := range resolve(all) {
		if d, _ := time.Parse(DateLayout, key); c.Contains(d) {
			c.resolved[key] = items
		}
	}

	return c
}

// ForYear builds the liturgical year named year, anchored at its first day.
func ForYear(year int, defs []reftables.CalendarDefinition) *Calendar {
	return New(FirstSundayOfAdvent(year-1), defs)
}

// fixedItems places each definition in the year. Plain MM-DD dates roll into
// the year between this Advent Sunday and the next; dates that do not occur
// in that span (Feb 29 in a common year, or a date the span skips) are
// dropped.
func fixedItems(k keyDates, defs []reftables.CalendarDefinition) []CalendarItem {
	var items []CalendarItem
	for _, def := range defs {
		d, ok := fixedDate(k, def)
		if !ok {
			continue
		}
		items = append(items, CalendarItem{
			Date:                d,
			ID:                  def.ID,
			Title:               def.Title,
			Rank:                def.Rank,
			IsPrincipalSunday:   def.IsPrincipalSunday,
			IsPrincipalFeast:    def.IsPrincipalFeast,
			IsSpecialObservance: def.IsSpecialObservance,
			IsFeast:             def.IsFeast,
			IsSunday:            def.IsSunday,
			IsVigil:             def.IsVigil,
			IsSaint:             def.IsSaint,
		})
	}
	return items
}

func fixedDate(k keyDates, def reftables.CalendarDefinition) (time.Time, bool) {
	prefix, md := reftables.SplitDateRule(def.Date)
	month, day, err := reftables.ParseMonthDay(md)
	if err != nil {
		panic(fmt.Sprintf("calendar: definition %s: %v", def.ID, err))
	}

	var d time.Time
	switch prefix {
	case reftables.LiturgicalYearPrefix:
		d = Date(k.year, month, day)
	case reftables.CalendarYearPrefix:
		d = Date(k.year-1, month, day)
	default:
		d = Date(k.year-1, month, day)
		if d.Before(k.advent) {
			d = Date(k.year, month, day)
		}
	}

	if d.Day() != day || d.Before(k.advent) || !d.Before(k.nextAdvent) {
		return time.Time{}, false
	}
	return d, true
}

// Anchor returns the date the calendar was built for.
func (c *Calendar) Anchor() time.Time { return c.anchor }

// LiturgicalYear returns the year in which this liturgical year's Easter falls.
func (c *Calendar) LiturgicalYear() int { return c.keys.year }

// Easter returns Easter Day.
func (c *Calendar) Easter() time.Time { return c.keys.easter }

// FirstSundayOfAdvent returns the first day of the liturgical year.
func (c *Calendar) FirstSundayOfAdvent() time.Time { return c.keys.advent }

// Start returns the first day of the liturgical year.
func (c *Calendar) Start() time.Time { return c.keys.advent }

// End returns the last day of the liturgical year, the eve of next Advent.
func (c *Calendar) End() time.Time { return AddDays(c.keys.nextAdvent, -1) }

// Contains reports whether d falls within the liturgical year.
func (c *Calendar) Contains(d time.Time) bool {
	d = Civil(d)
	return !d.Before(c.Start()) && !d.After(c.End())
}

// Days returns every date of the liturgical year in order.
func (c *Calendar) Days() []time.Time {
	days := make([]time.Time, 0, 371)
	for d := c.Start(); !d.After(c.End()); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}

// Seasons returns the eight seasons in order.
func (c *Calendar) Seasons() []Season {
	return append([]Season(nil), c.seasons...)
}

// SeasonOf returns the season containing d.
func (c *Calendar) SeasonOf(d time.Time) (Season, bool) {
	for _, s := range c.seasons {
		if s.Contains(d) {
			return s, true
		}
	}
	return Season{}, false
}

// CurrentSeason returns the season containing the anchor date.
func (c *Calendar) CurrentSeason() Season {
	s, _ := c.SeasonOf(c.anchor)
	return s
}

// SeasonItems returns each season generator's output before ranking.
func (c *Calendar) SeasonItems() []SeasonItems {
	out := make([]SeasonItems, len(c.seasonItems))
	for i, si := range c.seasonItems {
		out[i] = SeasonItems{Season: si.Season, Items: append([]CalendarItem(nil), si.Items...)}
	}
	return out
}

// All returns the resolved items of every date in the year. With
// withLinks false, markdown links in titles are reduced to their text.
func (c *Calendar) All(withLinks bool) DateMap {
	out := make(DateMap, len(c.resolved))
	for key, items := range c.resolved {
		out[key] = copyItems(items, withLinks)
	}
	return out
}

// Day returns the resolved items for d in display order, or nil.
func (c *Calendar) Day(d time.Time, withLinks bool) []CalendarItem {
	return copyItems(c.resolved[FormatDate(Civil(d))], withLinks)
}

// SortedDates returns the keys of a DateMap in date order.
func SortedDates(m DateMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyItems(items []CalendarItem, withLinks bool) []CalendarItem {
	if items == nil {
		return nil
	}
	out := make([]CalendarItem, len(items))
	copy(out, items)
	if !withLinks {
		for i := range out {
			out[i].Title = StripMarkdownLinks(out[i].Title)
		}
	}
	return out
}

func (c *Calendar) candidateHas(d time.Time, match func(id string) bool) bool {
	for _, it := range c.candidates[FormatDate(Civil(d))] {
		if match(it.ID) {
			return true
		}
	}
	return false
}

func (c *Calendar) resolvedHas(d time.Time, match func(CalendarItem) bool) bool {
	for _, it := range c.resolved[FormatDate(Civil(d))] {
		if match(it) {
			return true
		}
	}
	return false
}

func (c *Calendar) inSeason(name string, d time.Time) bool {
	s, ok := c.SeasonOf(d)
	return ok && s.Name == name
}

func between(d, start, end time.Time) bool {
	d = Civil(d)
	return !d.Before(start) && !d.After(end)
}

func (c *Calendar) IsAdvent(d time.Time) bool        { return c.inSeason(Advent, d) }
func (c *Calendar) IsChristmastide(d time.Time) bool { return c.inSeason(Christmastide, d) }
func (c *Calendar) IsEpiphanytide(d time.Time) bool  { return c.inSeason(Epiphanytide, d) }
func (c *Calendar) IsPreLent(d time.Time) bool       { return c.inSeason(PreLent, d) }
func (c *Calendar) IsLent(d time.Time) bool          { return c.inSeason(Lent, d) }
func (c *Calendar) IsEastertide(d time.Time) bool    { return c.inSeason(Eastertide, d) }
func (c *Calendar) IsWhitsuntide(d time.Time) bool   { return c.inSeason(Whitsuntide, d) }
func (c *Calendar) IsTrinitytide(d time.Time) bool   { return c.inSeason(Trinitytide, d) }

// IsHolyWeek reports Palm Sunday through Holy Saturday.
func (c *Calendar) IsHolyWeek(d time.Time) bool {
	return between(d, c.keys.palmSunday, AddDays(c.keys.easter, -1))
}

// IsOctaveOfChristmas reports Christmas Day through the Circumcision.
func (c *Calendar) IsOctaveOfChristmas(d time.Time) bool {
	return between(d, c.keys.christmas, AddDays(c.keys.christmas, 7))
}

// IsOctaveOfEaster reports Easter Day through the Second Sunday of Easter.
func (c *Calendar) IsOctaveOfEaster(d time.Time) bool {
	return between(d, c.keys.easter, AddDays(c.keys.easter, 7))
}

// IsEmberDay reports the Ember Days, whether or not another observance
// outranks them.
func (c *Calendar) IsEmberDay(d time.Time) bool {
	return c.candidateHas(d, func(id string) bool { return strings.Contains(id, "-ember-") })
}

// IsRogationDay reports the three days before Ascension Day.
func (c *Calendar) IsRogationDay(d time.Time) bool {
	return c.candidateHas(d, func(id string) bool { return strings.HasPrefix(id, "rogation-") })
}

var solemnDays = map[string]bool{
	"maundy-thursday": true,
	"good-friday":     true,
	"holy-saturday":   true,
	"all-souls":       true,
}

// IsSolemn is true only for Maundy Thursday, Good Friday, Holy Saturday and
// All Souls' Day.
func (c *Calendar) IsSolemn(d time.Time) bool {
	return c.resolvedHas(d, func(it CalendarItem) bool { return solemnDays[it.ID] })
}

// IsSaintDay reports whether the day's leading observance is a saint.
func (c *Calendar) IsSaintDay(d time.Time) bool {
	items := c.resolved[FormatDate(Civil(d))]
	return len(items) > 0 && items[0].IsSaint
}

func (c *Calendar) IsSunday(d time.Time) bool {
	return d.Weekday() == time.Sunday
}

func (c *Calendar) IsFeast(d time.Time) bool {
	return c.resolvedHas(d, func(it CalendarItem) bool { return it.IsFeast })
}

func (c *Calendar) IsPrincipalFeast(d time.Time) bool {
	return c.resolvedHas(d, func(it CalendarItem) bool { return it.IsPrincipalFeast })
}

func (c *Calendar) IsVigil(d time.Time) bool {
	return c.resolvedHas(d, func(it CalendarItem) bool { return it.IsVigil })
}

// Predicates evaluates every predicate for d.
func (c *Calendar) Predicates(d time.Time) map[string]bool {
	return map[string]bool{
		"isAdvent":            c.IsAdvent(d),
		"isChristmastide":     c.IsChristmastide(d),
		"isEpiphanytide":      c.IsEpiphanytide(d),
		"isPreLent":           c.IsPreLent(d),
		"isLent":              c.IsLent(d),
		"isHolyWeek":          c.IsHolyWeek(d),
		"isEastertide":        c.IsEastertide(d),
		"isWhitsuntide":       c.IsWhitsuntide(d),
		"isTrinitytide":       c.IsTrinitytide(d),
		"isOctaveOfChristmas": c.IsOctaveOfChristmas(d),
		"isOctaveOfEaster":    c.IsOctaveOfEaster(d),
		"isEmberDay":          c.IsEmberDay(d),
		"isRogationDay":       c.IsRogationDay(d),
		"isSolemn":            c.IsSolemn(d),
		"isSaintDay":          c.IsSaintDay(d),
		"isSunday":            c.IsSunday(d),
		"isFeast":             c.IsFeast(d),
		"isPrincipalFeast":    c.IsPrincipalFeast(d),
		"isVigil":             c.IsVigil(d),
	}
}

// TrinitytideSundays counts the Sundays from Trinity Sunday through the
// Sunday Before Advent.
func (c *Calendar) TrinitytideSundays() int {
	return DaysBetween(c.keys.trinity, c.keys.nextAdvent) / 7
}
