package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/config"
	"github.com/zapponejosh/daily-office/internal/icsexport"
	"github.com/zapponejosh/daily-office/internal/lectionary"
	"github.com/zapponejosh/daily-office/internal/logger"
)

// Years outside this span are rejected; the computus and the 1928 tables
// are only meaningful inside it.
const (
	MinYear = 1900
	MaxYear = 2199
)

// HealthChecker reports the health of an optional backing store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	cache  *lectionary.Cache
	store  HealthChecker
	cfg    *config.Config
	logger *slog.Logger
	today  func() time.Time
}

// NewHandlers creates a new Handlers instance. store may be nil when the
// reference tables do not come from SQLite.
func NewHandlers(cache *lectionary.Cache, store HealthChecker, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		cache:  cache,
		store:  store,
		cfg:    cfg,
		logger: logger,
		today:  cfg.Today,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Health(r.Context()); err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			WriteError(w, CodeStoreUnhealthy, "Reference store unhealthy: %v", err)
			return
		}
	}

	WriteSuccess(w, map[string]any{
		"status":      "healthy",
		"tables":      h.cache.Tables().Counts(),
		"cachedYears": h.cache.Len(),
	})
}

// CalendarResponse is the resolved calendar of one liturgical year.
type CalendarResponse struct {
	LiturgicalYear      int               `json:"liturgicalYear"`
	FirstSundayOfAdvent string            `json:"firstSundayOfAdvent"`
	Easter              string            `json:"easter"`
	End                 string            `json:"end"`
	Season              string            `json:"season"`
	Seasons             []calendar.Season `json:"seasons"`
	Dates               calendar.DateMap  `json:"dates"`
}

// GetCalendar handles GET /api/v1/calendar?date=YYYY-MM-DD&links=true
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	date, ok := h.queryDate(w, r)
	if !ok {
		return
	}

	cal := h.cache.For(date).Calendar()
	season, _ := cal.SeasonOf(date)

	WriteSuccess(w, CalendarResponse{
		LiturgicalYear:      cal.LiturgicalYear(),
		FirstSundayOfAdvent: calendar.FormatDate(cal.FirstSundayOfAdvent()),
		Easter:              calendar.FormatDate(cal.Easter()),
		End:                 calendar.FormatDate(cal.End()),
		Season:              season.Name,
		Seasons:             cal.Seasons(),
		Dates:               cal.All(withLinks(r)),
	})
}

// DayResponse is the resolved calendar of one date.
type DayResponse struct {
	Date           string                  `json:"date"`
	DayName        string                  `json:"dayName"`
	LiturgicalYear int                     `json:"liturgicalYear"`
	Season         string                  `json:"season"`
	Items          []calendar.CalendarItem `json:"items"`
	Predicates     map[string]bool         `json:"predicates"`
}

// GetCalendarDay handles GET /api/v1/calendar/day/{date}
func (h *Handlers) GetCalendarDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	cal := h.cache.For(date).Calendar()
	season, _ := cal.SeasonOf(date)
	items := cal.Day(date, withLinks(r))
	if items == nil {
		items = []calendar.CalendarItem{}
	}

	WriteSuccess(w, DayResponse{
		Date:           calendar.FormatDate(date),
		DayName:        calendar.DayName(date),
		LiturgicalYear: cal.LiturgicalYear(),
		Season:         season.Name,
		Items:          items,
		Predicates:     cal.Predicates(date),
	})
}

// GetSeasons handles GET /api/v1/calendar/seasons?date=YYYY-MM-DD
func (h *Handlers) GetSeasons(w http.ResponseWriter, r *http.Request) {
	date, ok := h.queryDate(w, r)
	if !ok {
		return
	}

	cal := h.cache.For(date).Calendar()
	current, _ := cal.SeasonOf(date)

	WriteSuccess(w, map[string]any{
		"liturgicalYear": cal.LiturgicalYear(),
		"current":        current,
		"seasons":        cal.Seasons(),
	})
}

// GetCalendarICS handles GET /api/v1/calendar/{year}.ics
func (h *Handlers) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("liturgical-year-%d.ics", year)))
	if err := icsexport.Write(w, h.cache.Year(year), icsexport.Options{Host: r.Host}); err != nil {
		logger.Error(r.Context(), "failed to write calendar feed", err, slog.Int("year", year))
	}
}

// GetTodayLectionary handles GET /api/v1/lectionary/today
func (h *Handlers) GetTodayLectionary(w http.ResponseWriter, r *http.Request) {
	h.writeDay(w, r, h.today())
}

// GetDateLectionary handles GET /api/v1/lectionary/date/{date}
func (h *Handlers) GetDateLectionary(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	h.writeDay(w, r, date)
}

func (h *Handlers) writeDay(w http.ResponseWriter, r *http.Request, date time.Time) {
	item := h.cache.Day(date, withLinks(r))
	if item == nil {
		WriteError(w, CodeNotFound, "No lectionary entry for %s", calendar.FormatDate(date))
		return
	}
	WriteSuccess(w, item)
}

// GetYearLectionary handles GET /api/v1/lectionary/year/{year}
func (h *Handlers) GetYearLectionary(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, h.cache.All(year, withLinks(r)))
}

// GetRangeLectionary handles GET /api/v1/lectionary/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetRangeLectionary(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		WriteError(w, CodeInvalidRange, "Both start and end date parameters are required")
		return
	}

	startDate, err := calendar.ParseDateString(startStr)
	if err != nil {
		WriteError(w, CodeInvalidDate, "Invalid start date format: %s. Use YYYY-MM-DD", startStr)
		return
	}

	endDate, err := calendar.ParseDateString(endStr)
	if err != nil {
		WriteError(w, CodeInvalidDate, "Invalid end date format: %s. Use YYYY-MM-DD", endStr)
		return
	}

	if !yearInRange(startDate.Year()) || !yearInRange(endDate.Year()) {
		WriteError(w, CodeDateOutOfRange, "Dates must fall between %d and %d", MinYear, MaxYear)
		return
	}

	if startDate.After(endDate) {
		WriteError(w, CodeInvalidRange, "Start date must be before or equal to end date")
		return
	}

	if calendar.DaysBetween(startDate, endDate) >= h.cfg.MaxRangeDays {
		WriteError(w, CodeInvalidRange, "Date range cannot exceed %d days", h.cfg.MaxRangeDays)
		return
	}

	links := withLinks(r)
	results := []lectionary.Item{}
	for d := startDate; !d.After(endDate); d = calendar.AddDays(d, 1) {
		if item := h.cache.Day(d, links); item != nil {
			results = append(results, *item)
		}
	}

	WriteSuccess(w, results)
}

// PurgeCache handles POST /api/v1/admin/cache/purge
func (h *Handlers) PurgeCache(w http.ResponseWriter, r *http.Request) {
	n := h.cache.Purge()
	logger.Info(r.Context(), "lectionary cache purged", slog.Int("years", n))
	WriteSuccess(w, map[string]int{"purged": n})
}

// =============================================================================
// Parameter helpers
// =============================================================================

// queryDate reads ?date=, defaulting to today.
func (h *Handlers) queryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return h.today(), true
	}
	date, err := calendar.ParseDateString(s)
	if err != nil {
		WriteError(w, CodeInvalidDate, "Invalid date format: %s. Use YYYY-MM-DD", s)
		return time.Time{}, false
	}
	if !yearInRange(date.Year()) {
		WriteError(w, CodeDateOutOfRange, "Date must fall between %d and %d", MinYear, MaxYear)
		return time.Time{}, false
	}
	return date, true
}

func pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := chi.URLParam(r, "date")
	date, err := calendar.ParseDateString(s)
	if err != nil {
		WriteError(w, CodeInvalidDate, "Invalid date format: %s. Use YYYY-MM-DD", s)
		return time.Time{}, false
	}
	if !yearInRange(date.Year()) {
		WriteError(w, CodeDateOutOfRange, "Date must fall between %d and %d", MinYear, MaxYear)
		return time.Time{}, false
	}
	return date, true
}

func pathYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := chi.URLParam(r, "year")
	year, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 {
		WriteError(w, CodeInvalidDate, "Invalid year: %s. Use YYYY", s)
		return 0, false
	}
	if !yearInRange(year) {
		WriteError(w, CodeDateOutOfRange, "Year must be between %d and %d", MinYear, MaxYear)
		return 0, false
	}
	return year, true
}

func yearInRange(year int) bool {
	return year >= MinYear && year <= MaxYear
}

func withLinks(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("links"))
	return err == nil && v
}
