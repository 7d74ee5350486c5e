package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/daily-office/internal/calendar"
	"github.com/zapponejosh/daily-office/internal/config"
	"github.com/zapponejosh/daily-office/internal/lectionary"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

const testAPIKey = "admin-test-key"

type testEnv struct {
	cache    *lectionary.Cache
	handlers *Handlers
	router   http.Handler
}

type fakeStore struct{ err error }

func (f fakeStore) Health(context.Context) error { return f.err }

func setupTest(t *testing.T, store HealthChecker) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Port:            8080,
		Env:             config.EnvDevelopment,
		Timezone:        "UTC",
		ReferenceSource: config.SourceEmbedded,
		APIKey:          testAPIKey,
		LogLevel:        "error",
		LogFormat:       "text",
		MaxRangeDays:    90,
	}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := lectionary.NewCache(reftables.MustEmbedded())
	handlers := NewHandlers(cache, store, cfg, logger)
	handlers.today = func() time.Time { return calendar.Date(2025, time.December, 25) }

	return &testEnv{
		cache:    cache,
		handlers: handlers,
		router:   SetupRoutes(handlers, NewMetrics(cache), cfg, logger),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v[0])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the envelope and its data into data.
func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *ErrorInfo      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), rec.Body.String())
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return Response{Success: raw.Success, Error: raw.Error}
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string         `json:"status"`
		Tables map[string]int `json:"tables"`
	}
	resp := decode(t, rec, &body)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", body.Status)
	assert.Positive(t, body.Tables[reftables.CollectsFile])
}

func TestHealthCheckStoreDown(t *testing.T) {
	env := setupTest(t, fakeStore{err: errors.New("disk gone")})

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decode(t, rec, nil)
	assert.Equal(t, CodeStoreUnhealthy, resp.Error.Code)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestGetCalendar(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar?date=2026-04-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		LiturgicalYear      int                                 `json:"liturgicalYear"`
		FirstSundayOfAdvent string                              `json:"firstSundayOfAdvent"`
		Easter              string                              `json:"easter"`
		Season              string                              `json:"season"`
		Seasons             []map[string]string                 `json:"seasons"`
		Dates               map[string][]map[string]interface{} `json:"dates"`
	}
	decode(t, rec, &body)

	assert.Equal(t, 2026, body.LiturgicalYear)
	assert.Equal(t, "2025-11-30", body.FirstSundayOfAdvent)
	assert.Equal(t, "2026-04-05", body.Easter)
	assert.Equal(t, calendar.Eastertide, body.Season)
	assert.Len(t, body.Seasons, 8)
	require.Contains(t, body.Dates, "2026-04-05")
	assert.Equal(t, "easter-day", body.Dates["2026-04-05"][0]["id"])
}

func TestGetCalendarDefaultsToToday(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		LiturgicalYear int    `json:"liturgicalYear"`
		Season         string `json:"season"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2026, body.LiturgicalYear)
	assert.Equal(t, calendar.Christmastide, body.Season)
}

func TestGetCalendarDay(t *testing.T) {
	env := setupTest(t, nil)

	tests := []struct {
		name      string
		path      string
		wantIDs   []string
		wantTitle string
	}{
		{"saint with links", "/api/v1/calendar/day/2025-12-26?links=true", []string{"saint-stephen"}, "[Saint Stephen, Deacon and Martyr](https://en.wikipedia.org/wiki/Saint_Stephen)"},
		{"saint without links", "/api/v1/calendar/day/2025-12-26", []string{"saint-stephen"}, "Saint Stephen, Deacon and Martyr"},
		{"empty day", "/api/v1/calendar/day/2025-12-01", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var body DayResponse
			decode(t, rec, &body)

			ids := []string{}
			for _, it := range body.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, body.Items[0].Title)
			}
			assert.Contains(t, body.Predicates, "isAdvent")
		})
	}
}

func TestGetCalendarDayPredicates(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar/day/2026-04-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body DayResponse
	decode(t, rec, &body)
	assert.Equal(t, "Friday", body.DayName)
	assert.Equal(t, calendar.Lent, body.Season)
	assert.True(t, body.Predicates["isHolyWeek"])
	assert.True(t, body.Predicates["isSolemn"])
	assert.False(t, body.Predicates["isEastertide"])
}

func TestGetSeasons(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar/seasons?date=2026-06-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Current map[string]string   `json:"current"`
		Seasons []map[string]string `json:"seasons"`
	}
	decode(t, rec, &body)
	assert.Equal(t, calendar.Trinitytide, body.Current["name"])
	assert.Equal(t, "2026-05-31", body.Current["start"])
	assert.Equal(t, calendar.Advent, body.Seasons[0]["name"])
}

func TestGetCalendarICS(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar/2026.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Easter Day")

	rec = env.do(t, http.MethodGet, "/api/v1/calendar/1492.ics", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// LECTIONARY
// =============================================================================

func TestGetTodayLectionary(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/lectionary/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var item lectionary.Item
	decode(t, rec, &item)
	assert.Equal(t, "2025-12-25", item.Date)
	assert.Equal(t, "Christmas Day", item.PrimaryObservance)
}

func TestGetDateLectionary(t *testing.T) {
	env := setupTest(t, nil)

	tests := []struct {
		name       string
		date       string
		wantStatus int
		wantCode   ErrorCode
		wantTitle  string
	}{
		{"easter", "2026-04-05", http.StatusOK, "", "Easter Day"},
		{"advent weekday", "2025-12-01", http.StatusOK, "", "Monday after the First Sunday of Advent"},
		{"weekday without lessons", "2026-02-09", http.StatusOK, "", "Monday after Sexagesima"},
		{"impossible date", "2026-02-30", http.StatusBadRequest, CodeInvalidDate, ""},
		{"malformed date", "Easter", http.StatusBadRequest, CodeInvalidDate, ""},
		{"year out of range", "1066-10-14", http.StatusBadRequest, CodeDateOutOfRange, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/lectionary/date/"+tt.date, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var item lectionary.Item
			resp := decode(t, rec, &item)
			if tt.wantCode != "" {
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantTitle, item.PrimaryObservance)
		})
	}
}

func TestGetYearLectionary(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/lectionary/year/2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var year map[string]lectionary.Item
	decode(t, rec, &year)
	assert.Contains(t, year, "2025-11-30")
	assert.Contains(t, year, "2026-11-26")
	assert.NotContains(t, year, "2026-11-29")
	assert.Len(t, year, 364)

	rec = env.do(t, http.MethodGet, "/api/v1/lectionary/year/26", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRangeLectionary(t *testing.T) {
	env := setupTest(t, nil)

	t.Run("spans a year boundary", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/lectionary/range?start=2025-11-28&end=2025-12-02", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var items []lectionary.Item
		decode(t, rec, &items)
		require.Len(t, items, 5)
		assert.Equal(t, "2025-11-28", items[0].Date)
		assert.Equal(t, "2025-11-30", items[2].Date)
		assert.Equal(t, "2025-12-02", items[4].Date)
	})

	t.Run("years outside the supported span", func(t *testing.T) {
		env.cache.Purge()
		for _, path := range []string{
			"/api/v1/lectionary/range?start=0005-12-25&end=0005-12-26",
			"/api/v1/lectionary/range?start=9999-12-25&end=9999-12-26",
			"/api/v1/lectionary/range?start=2199-12-30&end=2200-01-02",
		} {
			rec := env.do(t, http.MethodGet, path, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, path)
			resp := decode(t, rec, nil)
			assert.Equal(t, CodeDateOutOfRange, resp.Error.Code, path)
		}
		assert.Zero(t, env.cache.Len(), "rejected ranges must not fill the cache")
	})

	errorCases := []struct {
		name string
		path string
		code ErrorCode
	}{
		{"missing end", "/api/v1/lectionary/range?start=2025-12-01", CodeInvalidRange},
		{"reversed", "/api/v1/lectionary/range?start=2025-12-10&end=2025-12-01", CodeInvalidRange},
		{"too long", "/api/v1/lectionary/range?start=2025-01-01&end=2025-12-31", CodeInvalidRange},
		{"bad start date", "/api/v1/lectionary/range?start=2025-13-01&end=2025-12-31", CodeInvalidDate},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tc.path, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode(t, rec, nil)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

// =============================================================================
// ADMIN + MIDDLEWARE
// =============================================================================

func TestPurgeCache(t *testing.T) {
	env := setupTest(t, nil)
	env.cache.Year(2026)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/cache/purge", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/cache/purge", http.Header{"X-Api-Key": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, env.cache.Len())

	rec = env.do(t, http.MethodPost, "/api/v1/admin/cache/purge", http.Header{"X-Api-Key": {testAPIKey}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body map[string]int
	decode(t, rec, &body)
	assert.Equal(t, 1, body["purged"])
	assert.Zero(t, env.cache.Len())
}

func TestRequestID(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	incoming := "6f1c1d8e-2b7a-4d0e-9a43-1f7a9b0e2c11"
	rec = env.do(t, http.MethodGet, "/health", http.Header{RequestIDHeader: {incoming}})
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	rec = env.do(t, http.MethodGet, "/health", http.Header{RequestIDHeader: {"not-a-uuid"}})
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestNotFoundAndMethod(t *testing.T) {
	env := setupTest(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(t, http.MethodOptions, "/api/v1/lectionary/today", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("calendar: no free date")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec, nil)
	assert.Equal(t, CodeInternal, resp.Error.Code)
}

func TestMetrics(t *testing.T) {
	env := setupTest(t, nil)

	env.do(t, http.MethodGet, "/api/v1/lectionary/date/2025-12-25", nil)
	env.do(t, http.MethodGet, "/api/v1/lectionary/date/2025-12-26", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `daily_office_http_requests_total{method="GET",route="/api/v1/lectionary/date/{date}",status="200"} 2`)
	assert.Contains(t, body, "daily_office_cache_misses_total 1")
	assert.Contains(t, body, "daily_office_cache_hits_total 1")
	assert.Contains(t, body, "daily_office_cache_years 1")
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestChainMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := ChainMiddleware(mark("outer"), mark("inner"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestErrorCodeStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		CodeInvalidDate:      http.StatusBadRequest,
		CodeDateOutOfRange:   http.StatusBadRequest,
		CodeInvalidRange:     http.StatusBadRequest,
		CodeNotFound:         http.StatusNotFound,
		CodeMethodNotAllowed: http.StatusMethodNotAllowed,
		CodeUnauthorized:     http.StatusUnauthorized,
		CodeStoreUnhealthy:   http.StatusServiceUnavailable,
		CodeInternal:         http.StatusInternalServerError,
		ErrorCode("UNKNOWN"): http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.Status(), string(code))
	}

	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, CodeNotFound, "No lectionary entry for %s", "2026-02-09"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "No lectionary entry for 2026-02-09", resp.Error.Message)
}
