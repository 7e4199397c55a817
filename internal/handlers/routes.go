package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"syllabus_calendar/internal/metrics"
)

type Router struct {
	Calendar *CalendarHandler
	Syllabus *SyllabusHandler
	Google   *GoogleCalendarHandler
	Metrics  http.Handler
	HTTP     *metrics.HTTP
	Log      *zap.Logger
}

// Handler builds the mux and wraps it with request logging and latency metrics.
func (rt Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/calendar/extract-events", rt.Calendar.HandleExtractEvents)
	mux.HandleFunc("GET /api/calendar/events/{user_id}", rt.Calendar.HandleListEvents)
	mux.HandleFunc("PUT /api/calendar/events/{event_id}", rt.Calendar.HandleUpdateEvent)
	mux.HandleFunc("DELETE /api/calendar/events/syllabus/{syllabus_id}", rt.Calendar.HandleDeleteSyllabusEvents)
	mux.HandleFunc("GET /api/calendar/export.ics", rt.Calendar.HandleExportICS)

	mux.HandleFunc("POST /api/syllabi/process", rt.Syllabus.HandleProcess)

	mux.HandleFunc("GET /auth/google", rt.Google.HandleGoogleLogin)
	mux.HandleFunc("GET /auth/callback", rt.Google.HandleGoogleCallback)
	mux.HandleFunc("POST /api/google-calendar/export", rt.Google.HandleExport)
	mux.HandleFunc("GET /api/google-calendar/events", rt.Google.HandleUpcoming)
	mux.HandleFunc("POST /api/calendar/import-from-google", rt.Google.HandleImport)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rt.logger(), http.StatusOK, map[string]string{"status": "ok"})
	})
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	return rt.observe(mux)
}

func (rt Router) logger() *zap.Logger {
	if rt.Log == nil {
		return zap.NewNop()
	}
	return rt.Log
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (rt Router) observe(next *http.ServeMux) http.Handler {
	log := rt.logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// The mux fills in r.Pattern while routing.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		if rt.HTTP != nil {
			rt.HTTP.Requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())
		}
		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
