package main

import (
	"time"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/lectionary"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// yearCoverage summarises how much of one liturgical year the reference
// tables can fill.
type yearCoverage struct {
	Year                  int      `json:"year"`
	Days                  int      `json:"days"`
	WithLessons           int      `json:"withLessons"`
	WithoutCommunion      int      `json:"withoutCommunion"`
	WithoutCollect        []string `json:"withoutCollect,omitempty"`
	SundaysWithoutLessons []string `json:"sundaysWithoutLessons,omitempty"`
	TrinitytideSundays    int      `json:"trinitytideSundays"`
}

func coverage(tables *reftables.Tables, from, to int) []yearCoverage {
	var out []yearCoverage
	for year := from; year <= to; year++ {
		cal := calendar.ForYear(year, tables.Calendar)
		l := lectionary.New(cal, tables)

		yc := yearCoverage{Year: year, TrinitytideSundays: cal.TrinitytideSundays()}
		for _, d := range cal.Days() {
			item := l.Day(d, false)
			yc.Days++

			if len(item.Morning.First) > 0 || len(item.Evening.First) > 0 {
				yc.WithLessons++
			} else if d.Weekday() == time.Sunday {
				yc.SundaysWithoutLessons = append(yc.SundaysWithoutLessons, item.Date)
			}
			if item.Morning.Communion == nil && item.Evening.Communion == nil {
				yc.WithoutCommunion++
			}
			if len(item.Morning.Collects) == 0 && len(item.Evening.Collects) == 0 {
				yc.WithoutCollect = append(yc.WithoutCollect, item.Date)
			}
		}
		out = append(out, yc)
	}
	return out
}
