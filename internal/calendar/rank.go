package calendar

import (
	"fmt"
	"sort"
)

// maxTransfer bounds the forward walk of a displaced feast. Holy Week and
// Easter Week together block at most fifteen consecutive days.
const maxTransfer = 60

func hasMajor(items []CalendarItem) bool {
	for _, it := range items {
		if it.Rank <= RankMajorObservance {
			return true
		}
	}
	return false
}

// resolve ranks the candidate items of one liturgical year.
//
// Transfer pass: on any date holding a rank 1-3 item, displaceable feasts
// move forward to the first date free of rank 1-3 items.
//
// Selection pass: every rank 7-9 item survives, except that a rank-7
// Sunday yields to a Principal Feast. Of ranks 1-6 only the single most
// important survives, the earliest candidate winning ties.
func resolve(candidates []CalendarItem) DateMap {
	byDate := make(map[string][]CalendarItem)
	for _, it := range candidates {
		key := FormatDate(it.Date)
		byDate[key] = append(byDate[key], it)
	}

	dates := make([]string, 0, len(byDate))
	for key := range byDate {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	for _, key := range dates {
		day := byDate[key]
		if !hasMajor(day) {
			continue
		}

		kept := day[:0:0]
		for _, it := range day {
			if !it.displaceable() {
				kept = append(kept, it)
				continue
			}
			target := it.Date
			for steps := 1; ; steps++ {
				if steps > maxTransfer {
					panic(fmt.Sprintf("calendar: no free date within %d days for %s from %s", maxTransfer, it.ID, key))
				}
				target = AddDays(target, 1)
				if !hasMajor(byDate[FormatDate(target)]) {
					break
				}
			}
			it.Date = target
			tk := FormatDate(target)
			byDate[tk] = append(byDate[tk], it)
		}
		byDate[key] = kept
	}

	out := make(DateMap, len(byDate))
	for key, day := range byDate {
		if survivors := selectSurvivors(day); len(survivors) > 0 {
			out[key] = survivors
		}
	}
	return out
}

func selectSurvivors(day []CalendarItem) []CalendarItem {
	hasPrincipalFeast := false
	for _, it := range day {
		if it.Rank == RankPrincipalFeast {
			hasPrincipalFeast = true
		}
	}

	var out []CalendarItem
	best := -1
	for i, it := range day {
		switch {
		case it.Rank == RankSunday && hasPrincipalFeast:
		case it.Rank >= RankSunday:
			out = append(out, it)
		case best < 0 || it.Rank < day[best].Rank:
			best = i
		}
	}
	if best >= 0 {
		out = append(out, day[best])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].displayWeight() < out[j].displayWeight()
	})
	return out
}
