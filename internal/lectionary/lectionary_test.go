package lectionary

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

func newLectionary(t *testing.T, year int) *Lectionary {
	t.Helper()
	tables, err := reftables.Embedded()
	require.NoError(t, err)
	return New(calendar.ForYear(year, tables.Calendar), tables)
}

func day(t *testing.T, l *Lectionary, s string, withLinks bool) *Item {
	t.Helper()
	d, err := calendar.ParseDateString(s)
	require.NoError(t, err)
	return l.Day(d, withLinks)
}

func collectTitles(cs []Collect) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title
	}
	return out
}

func TestChristmasDay(t *testing.T) {
	l := newLectionary(t, 2026)
	item := day(t, l, "2025-12-25", false)
	require.NotNil(t, item)

	assert.Equal(t, "2025-12-25", item.Date)
	assert.Equal(t, calendar.Christmastide, item.Season)
	assert.Equal(t, "Christmas Day", item.PrimaryObservance)
	assert.Empty(t, item.SecondaryObservance)

	assert.Equal(t, []string{"Isaiah 9:2-7"}, item.Morning.First)
	assert.Equal(t, []string{"Luke 2:1-20"}, item.Morning.Second)
	assert.Equal(t, []string{"1 John 4:7-14"}, item.Evening.Second)

	require.NotNil(t, item.Morning.Communion)
	assert.Equal(t, []string{"Hebrews 1:1-12"}, item.Morning.Communion.Epistle)
	assert.Nil(t, item.Evening.Communion)

	assert.Equal(t, []string{"Christmas Day"}, collectTitles(item.Morning.Collects))
	assert.Equal(t, item.Morning.Collects, item.Evening.Collects)
	assert.Nil(t, item.Morning.Third)
}

func TestEasterDay(t *testing.T) {
	l := newLectionary(t, 2026)
	item := day(t, l, "2026-04-05", false)
	require.NotNil(t, item)

	assert.Equal(t, calendar.Eastertide, item.Season)
	assert.Equal(t, "Easter Day", item.PrimaryObservance)
	assert.Equal(t, []string{"Exodus 12:1-14"}, item.Morning.First)
	require.NotNil(t, item.Morning.Communion)
	assert.Equal(t, []string{"John 20:1-10"}, item.Morning.Communion.Gospel)
	assert.Equal(t, []string{"Easter Day"}, collectTitles(item.Morning.Collects))
}

func TestVigilSplitsOffices(t *testing.T) {
	l := newLectionary(t, 2026)
	item := day(t, l, "2025-12-24", false)
	require.NotNil(t, item)

	assert.Equal(t, "Christmas Eve", item.PrimaryObservance)
	assert.Equal(t, []string{"Fourth Sunday of Advent"}, collectTitles(item.Morning.Collects))
	assert.Equal(t, []string{"Christmas Eve"}, collectTitles(item.Evening.Collects))

	assert.Nil(t, item.Morning.Communion)
	require.NotNil(t, item.Evening.Communion)
	assert.Equal(t, []string{"Luke 2:1-14"}, item.Evening.Communion.Gospel)
}

func TestSecondaryObservanceAndThird(t *testing.T) {
	l := newLectionary(t, 2026)

	plain := day(t, l, "2026-10-18", false)
	require.NotNil(t, plain)
	assert.Equal(t, "Twentieth Sunday after Trinity", plain.PrimaryObservance)
	assert.Equal(t, "Saint Luke the Evangelist", plain.SecondaryObservance)
	require.NotNil(t, plain.Morning.Third)
	require.NotNil(t, plain.Evening.Third)
	assert.Equal(t, "Saint Luke the Evangelist", plain.Morning.Third.Title)
	assert.NotEqual(t, plain.Morning.Third.Reading, plain.Evening.Third.Reading)

	linked := day(t, l, "2026-10-18", true)
	require.NotNil(t, linked)
	assert.Contains(t, linked.SecondaryObservance, "](https://")
	assert.Contains(t, linked.Morning.Third.Title, "](https://")
}

func TestLessonsTitleFallback(t *testing.T) {
	l := newLectionary(t, 2026)
	item := day(t, l, "2025-12-01", false)
	require.NotNil(t, item)

	assert.Equal(t, "Monday after the First Sunday of Advent", item.PrimaryObservance)
	assert.Equal(t, calendar.Advent, item.Season)
	assert.Equal(t, []string{"First Sunday of Advent"}, collectTitles(item.Morning.Collects))
}

func TestEveryDayHasRecord(t *testing.T) {
	for _, year := range []int{2000, 2026, 2038, 2050} {
		l := newLectionary(t, year)
		days := l.Calendar().Days()
		all := l.All(false)
		require.Len(t, all, len(days), "year %d", year)

		for _, d := range days {
			item, ok := all[calendar.FormatDate(d)]
			require.True(t, ok, "%s missing", calendar.FormatDate(d))
			assert.NotEmpty(t, item.Season, item.Date)
			assert.NotEmpty(t, item.PrimaryObservance, item.Date)
			assert.NotNil(t, item.Morning.First, item.Date)
			assert.NotNil(t, item.Evening.Second, item.Date)
		}
	}
}

func TestWeekdayWithoutLessons(t *testing.T) {
	l := newLectionary(t, 2026)

	tests := []struct {
		date   string
		season string
		title  string
	}{
		{"2026-02-09", calendar.PreLent, "Monday after Sexagesima"},
		{"2026-03-03", calendar.Lent, "Tuesday after the Second Sunday in Lent"},
		{"2026-06-10", calendar.Trinitytide, "Wednesday after the First Sunday after Trinity"},
		{"2026-08-12", calendar.Trinitytide, "Wednesday after the Tenth Sunday after Trinity"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			item := day(t, l, tt.date, false)
			require.NotNil(t, item)
			assert.Equal(t, tt.season, item.Season)
			assert.Equal(t, tt.title, item.PrimaryObservance)
			assert.Empty(t, item.Morning.First)
			assert.Len(t, item.Morning.Collects, 1)
			assert.Equal(t, item.Morning.Collects, item.Evening.Collects)
		})
	}
}

func TestDayOutsideYear(t *testing.T) {
	l := newLectionary(t, 2026)
	assert.Nil(t, day(t, l, "2025-11-29", false))
	assert.Nil(t, day(t, l, "2026-11-29", false))
	assert.NotNil(t, day(t, l, "2026-11-28", false))
}

func TestCache(t *testing.T) {
	tables, err := reftables.Embedded()
	require.NoError(t, err)
	cache := NewCache(tables)

	d := calendar.Date(2025, time.December, 25)
	first := cache.Day(d, false)
	second := cache.Day(d, false)
	require.NotNil(t, first)
	assert.Equal(t, first, second)

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	year := cache.All(2026, true)
	assert.Contains(t, year, "2025-12-25")
	assert.Same(t, cache.For(d), cache.Year(2026))

	assert.Equal(t, 1, cache.Purge())
	assert.Equal(t, 0, cache.Len())
}

func TestCacheWarm(t *testing.T) {
	tables, err := reftables.Embedded()
	require.NoError(t, err)
	cache := NewCache(tables)

	assert.Equal(t, []int{2026}, cache.Warm(calendar.Date(2026, time.March, 1)))
	assert.Equal(t, []int{2026, 2027}, cache.Warm(calendar.Date(2026, time.November, 10)))
	assert.Equal(t, 2, cache.Len())
}

func TestCacheConcurrent(t *testing.T) {
	tables, err := reftables.Embedded()
	require.NoError(t, err)
	cache := NewCache(tables)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := calendar.AddDays(calendar.Date(2026, time.January, 1), i*30)
			assert.NotNil(t, cache.All(calendar.LiturgicalYearOf(d), i%2 == 0))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
}
