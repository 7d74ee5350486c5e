package icsexport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/lectionary"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

func year2026(t *testing.T) *lectionary.Lectionary {
	t.Helper()
	tables := reftables.MustEmbedded()
	return lectionary.New(calendar.ForYear(2026, tables.Calendar), tables)
}

func TestWrite(t *testing.T) {
	l := year2026(t)
	stamp := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, l, Options{Stamp: stamp}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+DefaultProductID)
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "UID:2025-12-25-christmas-day@daily-office")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20251225")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20251226")
	assert.Contains(t, out, "SUMMARY:Christmas Day")
	assert.Contains(t, out, "DTSTAMP:20251101T120000Z")
}

func TestBuildEvents(t *testing.T) {
	l := year2026(t)
	feed := Build(l, Options{Host: "example.org", Stamp: time.Now()})

	parsed, err := ics.ParseCalendar(strings.NewReader(feed.Serialize()))
	require.NoError(t, err)

	total := 0
	for _, items := range l.Calendar().All(false) {
		total += len(items)
	}
	events := parsed.Events()
	assert.Len(t, events, total)

	byUID := make(map[string]*ics.VEvent, len(events))
	for _, ev := range events {
		byUID[ev.Id()] = ev
	}

	luke := byUID["2026-10-18-saint-luke@example.org"]
	require.NotNil(t, luke)
	assert.Equal(t, "Saint Luke the Evangelist", luke.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Luke_the_Evangelist", luke.GetProperty(ics.ComponentPropertyUrl).Value)
	assert.Equal(t, "Saint", luke.GetProperty(ics.ComponentPropertyCategories).Value)

	christmas := byUID["2025-12-25-christmas-day@example.org"]
	require.NotNil(t, christmas)
	desc := christmas.GetProperty(ics.ComponentPropertyDescription)
	require.NotNil(t, desc)
	assert.Contains(t, desc.Value, "Isaiah 9:2-7")
	assert.Contains(t, desc.Value, "Hebrews 1:1-12")
}

func TestDescribe(t *testing.T) {
	item := &lectionary.Item{
		Morning: lectionary.Lessons{First: []string{"Isaiah 1:1-20"}, Second: []string{"Luke 1:1-25"}},
		Evening: lectionary.Lessons{
			Communion: &lectionary.Communion{Epistle: []string{"Titus 2:11-15"}, Gospel: []string{"Luke 2:1-14"}},
		},
	}
	assert.Equal(t,
		"Morning Prayer: Isaiah 1:1-20; Luke 1:1-25\nEvening Prayer communion: Titus 2:11-15; Luke 2:1-14",
		describe(item),
	)
	assert.Empty(t, describe(&lectionary.Item{}))
}
