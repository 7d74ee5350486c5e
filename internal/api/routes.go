package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/daily-office/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
//	GET  /health
//	GET  /metrics
//	GET  /api/v1/calendar                  ?date= &links=
//	GET  /api/v1/calendar/day/{date}       &links=
//	GET  /api/v1/calendar/seasons          ?date=
//	GET  /api/v1/calendar/{year}.ics
//	GET  /api/v1/lectionary/today          ?links=
//	GET  /api/v1/lectionary/date/{date}    ?links=
//	GET  /api/v1/lectionary/year/{year}    ?links=
//	GET  /api/v1/lectionary/range          ?start= &end= &links=
//	POST /api/v1/admin/cache/purge         (X-API-Key)
func SetupRoutes(handlers *Handlers, metrics *Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		MetricsMiddleware(metrics),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, CodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, CodeMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", handlers.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", handlers.GetCalendar)
			r.Get("/day/{date}", handlers.GetCalendarDay)
			r.Get("/seasons", handlers.GetSeasons)
			r.Get("/{year:[0-9]{4}}.ics", handlers.GetCalendarICS)
		})

		r.Route("/lectionary", func(r chi.Router) {
			r.Get("/today", handlers.GetTodayLectionary)
			r.Get("/date/{date}", handlers.GetDateLectionary)
			r.Get("/year/{year}", handlers.GetYearLectionary)
			r.Get("/range", handlers.GetRangeLectionary)
		})

		admin := ChainMiddleware(AuthMiddleware(cfg, logger), NoStoreMiddleware())
		r.With(admin).Post("/admin/cache/purge", handlers.PurgeCache)
	})

	return r
}
