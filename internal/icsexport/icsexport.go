// Package icsexport renders a resolved liturgical year as an iCalendar
// feed of all-day events, one per observance.
package icsexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/lectionary"
)

// DefaultProductID identifies the generator in PRODID.
const DefaultProductID = "-//daily-office//1928 BCP Calendar//EN"

// Options controls feed metadata.
type Options struct {
	ProductID string    // PRODID; DefaultProductID when empty
	Host      string    // UID domain; "daily-office" when empty
	Stamp     time.Time // DTSTAMP of every event; time.Now when zero
}

// Build returns the feed for the liturgical year of l. Each resolved item
// becomes an event whose UID is stable across rebuilds. The primary
// observance of a day also carries that day's lessons in its description.
func Build(l *lectionary.Lectionary, opts Options) *ics.Calendar {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Host == "" {
		opts.Host = "daily-office"
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now().UTC()
	}

	cal := l.Calendar()
	feed := ics.NewCalendar()
	feed.SetMethod(ics.MethodPublish)
	feed.SetProductId(opts.ProductID)
	feed.SetXWRCalName(fmt.Sprintf("Liturgical Year %d", cal.LiturgicalYear()))

	all := cal.All(true)
	for _, key := range calendar.SortedDates(all) {
		d, err := calendar.ParseDateString(key)
		if err != nil {
			continue
		}
		record := l.Day(d, false)

		for i, it := range all[key] {
			ev := feed.AddEvent(fmt.Sprintf("%s-%s@%s", key, it.ID, opts.Host))
			ev.SetDtStampTime(opts.Stamp)
			ev.SetAllDayStartAt(d)
			ev.SetAllDayEndAt(calendar.AddDays(d, 1))
			ev.SetSummary(calendar.StripMarkdownLinks(it.Title))
			ev.AddProperty(ics.ComponentPropertyCategories, calendar.RankName(it.Rank))
			if link := calendar.LinkOf(it.Title); link != "" {
				ev.SetURL(link)
			}
			if i == 0 && record != nil {
				if desc := describe(record); desc != "" {
					ev.SetDescription(desc)
				}
			}
		}
	}

	return feed
}

// Write serializes the feed for l to w.
func Write(w io.Writer, l *lectionary.Lectionary, opts Options) error {
	if err := Build(l, opts).SerializeTo(w); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	return nil
}

func describe(item *lectionary.Item) string {
	var lines []string
	office := func(name string, ls lectionary.Lessons) {
		if refs := append(append([]string{}, ls.First...), ls.Second...); len(refs) > 0 {
			lines = append(lines, name+": "+strings.Join(refs, "; "))
		}
		if ls.Communion != nil {
			lines = append(lines, name+" communion: "+strings.Join(append(append([]string{}, ls.Communion.Epistle...), ls.Communion.Gospel...), "; "))
		}
	}
	office("Morning Prayer", item.Morning)
	office("Evening Prayer", item.Evening)
	return strings.Join(lines, "\n")
}
