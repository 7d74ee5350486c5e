package lectionary

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

type yearKey struct {
	year      int
	withLinks bool
}

// Cache memoizes lectionaries per liturgical year. It is safe for
// concurrent use.
type Cache struct {
	tables *reftables.Tables

	mu    sync.Mutex
	years map[int]*Lectionary
	all   map[yearKey]map[string]Item

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache returns an empty cache over tables.
func NewCache(tables *reftables.Tables) *Cache {
	return &Cache{
		tables: tables,
		years:  make(map[int]*Lectionary),
		all:    make(map[yearKey]map[string]Item),
	}
}

// Tables returns the reference tables the cache computes from.
func (c *Cache) Tables() *reftables.Tables { return c.tables }

// Year returns the lectionary of the named liturgical year.
func (c *Cache) Year(year int) *Lectionary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yearLocked(year)
}

func (c *Cache) yearLocked(year int) *Lectionary {
	if l, ok := c.years[year]; ok {
		c.hits.Add(1)
		return l
	}
	c.misses.Add(1)
	l := New(calendar.ForYear(year, c.tables.Calendar), c.tables)
	c.years[year] = l
	return l
}

// For returns the lectionary of the liturgical year containing d.
func (c *Cache) For(d time.Time) *Lectionary {
	return c.Year(calendar.LiturgicalYearOf(d))
}

// Day returns the record for d.
func (c *Cache) Day(d time.Time, withLinks bool) *Item {
	return c.For(d).Day(d, withLinks)
}

// All returns every record of the named liturgical year. The map is
// shared between callers and must not be modified.
func (c *Cache) All(year int, withLinks bool) map[string]Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := yearKey{year, withLinks}
	if m, ok := c.all[key]; ok {
		c.hits.Add(1)
		return m
	}
	m := c.yearLocked(year).All(withLinks)
	c.all[key] = m
	return m
}

// Warm computes the year containing d, and the following year once d is
// within a month of its end.
func (c *Cache) Warm(d time.Time) []int {
	year := calendar.LiturgicalYearOf(d)
	warmed := []int{year}
	c.All(year, false)

	if calendar.DaysBetween(d, calendar.FirstSundayOfAdvent(year)) <= 31 {
		c.All(year+1, false)
		warmed = append(warmed, year+1)
	}
	return warmed
}

// Purge drops every memoized year.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.years)
	c.years = make(map[int]*Lectionary)
	c.all = make(map[yearKey]map[string]Item)
	return n
}

// Stats returns the hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of memoized years.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.years)
}
