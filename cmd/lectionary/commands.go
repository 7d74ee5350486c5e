package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/icsexport"
	"github.com/zapponejosh/daily-office/internal/lectionary"
)

func (st *state) lectionary(year int) *lectionary.Lectionary {
	return lectionary.New(calendar.ForYear(year, st.tables.Calendar), st.tables)
}

// dateArg parses an optional YYYY-MM-DD argument, defaulting to today.
func (st *state) dateArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		return st.cfg.Today(), nil
	}
	d, err := calendar.ParseDateString(args[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

// yearArg parses an optional liturgical year, defaulting to the current one.
func (st *state) yearArg(args []string) (int, error) {
	if len(args) == 0 {
		return calendar.LiturgicalYearOf(st.cfg.Today()), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil || year < 1583 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", args[0])
	}
	return year, nil
}

type keyDatesOutput struct {
	LiturgicalYear      int               `json:"liturgicalYear"`
	FirstSundayOfAdvent string            `json:"firstSundayOfAdvent"`
	Christmas           string            `json:"christmas"`
	AshWednesday        string            `json:"ashWednesday"`
	Easter              string            `json:"easter"`
	Ascension           string            `json:"ascension"`
	Whitsunday          string            `json:"whitsunday"`
	TrinitySunday       string            `json:"trinitySunday"`
	NextAdvent          string            `json:"nextAdvent"`
	TrinitytideSundays  int               `json:"trinitytideSundays"`
	Seasons             []calendar.Season `json:"seasons"`
}

func datesCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "dates [year]",
		Short: "Key dates and seasons of a liturgical year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := st.yearArg(args)
			if err != nil {
				return err
			}
			cal := calendar.ForYear(year, st.tables.Calendar)
			out := keyDatesOutput{
				LiturgicalYear:      year,
				FirstSundayOfAdvent: calendar.FormatDate(cal.FirstSundayOfAdvent()),
				Christmas:           calendar.FormatDate(calendar.Date(year-1, time.December, 25)),
				AshWednesday:        calendar.FormatDate(calendar.CalculateAshWednesday(year)),
				Easter:              calendar.FormatDate(cal.Easter()),
				Ascension:           calendar.FormatDate(calendar.CalculateAscension(year)),
				Whitsunday:          calendar.FormatDate(calendar.CalculatePentecost(year)),
				TrinitySunday:       calendar.FormatDate(calendar.CalculateTrinity(year)),
				NextAdvent:          calendar.FormatDate(calendar.FirstSundayOfAdvent(year)),
				TrinitytideSundays:  cal.TrinitytideSundays(),
				Seasons:             cal.Seasons(),
			}
			return render(cmd.OutOrStdout(), st.format, out)
		},
	}
}

type dayOutput struct {
	Date       string                  `json:"date"`
	Day        string                  `json:"day"`
	Season     string                  `json:"season"`
	Week       int                     `json:"week"`
	Items      []calendar.CalendarItem `json:"items"`
	Predicates map[string]bool         `json:"predicates"`
	Lectionary *lectionary.Item        `json:"lectionary"`
}

func dayCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "day [date]",
		Short: "Calendar items and lectionary for one date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := st.dateArg(args)
			if err != nil {
				return err
			}
			l := st.lectionary(calendar.LiturgicalYearOf(d))
			cal := l.Calendar()

			season, _ := cal.SeasonOf(d)
			items := cal.Day(d, st.links)
			if items == nil {
				items = []calendar.CalendarItem{}
			}
			return render(cmd.OutOrStdout(), st.format, dayOutput{
				Date:       calendar.FormatDate(d),
				Day:        calendar.DayName(d),
				Season:     season.Name,
				Week:       calendar.WeekOfSeason(d, season.Start),
				Items:      items,
				Predicates: cal.Predicates(d),
				Lectionary: l.Day(d, st.links),
			})
		},
	}
}

func calendarCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [year]",
		Short: "Resolved calendar items for every date of a liturgical year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := st.yearArg(args)
			if err != nil {
				return err
			}
			cal := calendar.ForYear(year, st.tables.Calendar)
			return render(cmd.OutOrStdout(), st.format, cal.All(st.links))
		},
	}
}

func yearCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "year [year]",
		Short: "Lectionary for every date of a liturgical year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := st.yearArg(args)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), st.format, st.lectionary(year).All(st.links))
		},
	}
}

func coverageCmd(st *state) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Report dates the reference tables leave without propers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := calendar.LiturgicalYearOf(st.cfg.Today())
			if from == 0 {
				from = current
			}
			if to == 0 {
				to = from
			}
			if to < from {
				return fmt.Errorf("--to %d is before --from %d", to, from)
			}
			st.log.Debug("Checking coverage", "from", from, "to", to)
			return render(cmd.OutOrStdout(), st.format, coverage(st.tables, from, to))
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "First liturgical year (default current)")
	cmd.Flags().IntVar(&to, "to", 0, "Last liturgical year (default --from)")
	return cmd
}

func icsCmd(st *state) *cobra.Command {
	var output, host string

	cmd := &cobra.Command{
		Use:   "ics [year]",
		Short: "Export a liturgical year as an iCalendar feed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := st.yearArg(args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := icsexport.Write(w, st.lectionary(year), icsexport.Options{Host: host}); err != nil {
				return fmt.Errorf("write calendar: %w", err)
			}
			if output != "" && output != "-" {
				st.log.Info("Wrote calendar", "year", year, "path", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&host, "host", "", "Domain used in event UIDs")
	return cmd
}
