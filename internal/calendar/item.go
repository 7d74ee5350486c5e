package calendar

import (
	"encoding/json"
	"time"
)

// Ranks, most important first.
const (
	RankPrincipalSunday = 1
	RankPrincipalFeast  = 2
	RankMajorObservance = 3
	RankFeast           = 4
	RankMinorObservance = 5
	RankSaint           = 6
	RankSunday          = 7
	RankVigil           = 8
	RankNote            = 9
)

var rankNames = map[int]string{
	RankPrincipalSunday: "Principal Sunday",
	RankPrincipalFeast:  "Principal Feast",
	RankMajorObservance: "Major Observance",
	RankFeast:           "Feast",
	RankMinorObservance: "Minor Observance",
	RankSaint:           "Saint",
	RankSunday:          "Sunday",
	RankVigil:           "Vigil",
	RankNote:            "Note",
}

// RankName returns the display name of a rank.
func RankName(rank int) string {
	return rankNames[rank]
}

// CalendarItem is one observance on one date.
type CalendarItem struct {
	Date                time.Time `json:"-"`
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Rank                int       `json:"rank"`
	IsPrincipalSunday   bool      `json:"isPrincipalSunday"`
	IsPrincipalFeast    bool      `json:"isPrincipalFeast"`
	IsSpecialObservance bool      `json:"isSpecialObservance"`
	IsFeast             bool      `json:"isFeast"`
	IsSunday            bool      `json:"isSunday"`
	IsVigil             bool      `json:"isVigil"`
	IsSaint             bool      `json:"isSaint"`
}

// MarshalJSON renders Date as YYYY-MM-DD.
func (i CalendarItem) MarshalJSON() ([]byte, error) {
	type plain CalendarItem
	return json.Marshal(struct {
		Date string `json:"date"`
		plain
	}{FormatDate(i.Date), plain(i)})
}

// displaceable reports whether a major observance moves this item to a
// later date instead of suppressing it.
func (i CalendarItem) displaceable() bool {
	return i.IsFeast && !i.IsPrincipalFeast
}

// displayWeight orders items within a day. Sundays sort ahead of saints.
func (i CalendarItem) displayWeight() int {
	if i.Rank == RankSunday {
		return 11
	}
	return i.Rank * 2
}

// DateMap maps an ISO date to its resolved items in display order.
type DateMap map[string][]CalendarItem

func principalSunday(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankPrincipalSunday, IsPrincipalSunday: true, IsSunday: true}
}

func principalFeast(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankPrincipalFeast, IsPrincipalFeast: true}
}

func majorObservance(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankMajorObservance, IsSpecialObservance: true}
}

func feast(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankFeast, IsFeast: true}
}

func minorObservance(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankMinorObservance, IsSpecialObservance: true}
}

func sunday(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankSunday, IsSunday: true}
}

func vigil(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankVigil, IsVigil: true}
}

func note(id, title string, d time.Time) CalendarItem {
	return CalendarItem{Date: d, ID: id, Title: title, Rank: RankNote}
}
