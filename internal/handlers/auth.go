package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
)

const (
	oauthStateCookie    = "oauth_state"
	defaultUpcomingDays = 7
	maxUpcomingDays     = 365
)

type GoogleCalendarHandler struct {
	calendar CalendarSync
	events   EventStore
	validate *validator.Validate
	log      *zap.Logger
}

// NewGoogleCalendarHandler accepts a nil sync when no OAuth client is configured;
// every route then answers 503.
func NewGoogleCalendarHandler(sync CalendarSync, events EventStore, log *zap.Logger) *GoogleCalendarHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleCalendarHandler{
		calendar: sync,
		events:   events,
		validate: newValidator(),
		log:      log,
	}
}

func (h *GoogleCalendarHandler) configured(w http.ResponseWriter) bool {
	if h.calendar == nil {
		writeError(w, h.log, http.StatusServiceUnavailable, "Google Calendar is not configured", nil)
		return false
	}
	return true
}

// /auth/google -> redirect to google
func (h *GoogleCalendarHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.calendar.GetAuthURL(state), http.StatusTemporaryRedirect)
}

// /auth/callback -> Google sends the code here
func (h *GoogleCalendarHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleGoogleCallback"
	if !h.configured(w) {
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, h.log, http.StatusBadRequest, "OAuth state mismatch", nil)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.log, http.StatusBadRequest, "Code not found", nil)
		return
	}

	if err := h.calendar.ExchangeCode(r.Context(), code); err != nil {
		h.log.Error("exchange oauth code", zap.String("op", op), zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Failed to exchange code", err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth", MaxAge: -1})
	writeJSON(w, h.log, http.StatusOK, map[string]string{
		"message": "Google Calendar connected. You can close this window.",
	})
}

type googleExportRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	ClassID string `json:"class_id"`
}

type exportFailure struct {
	EventID string `json:"event_id"`
	Error   string `json:"error"`
}

// HandleExport pushes a user's not yet exported events to Google Calendar.
// One failing event does not stop the rest.
func (h *GoogleCalendarHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleExport"
	if !h.configured(w) {
		return
	}
	if !h.calendar.IsAuthorized() {
		writeError(w, h.log, http.StatusUnauthorized, storage.ErrCalendarNotConnected.Error(), nil)
		return
	}

	var req googleExportRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid request", err)
		return
	}

	events, err := h.events.ListEvents(r.Context(), models.EventFilter{
		UserID:         req.UserID,
		ClassID:        req.ClassID,
		OnlyUnexported: true,
	})
	if err != nil {
		h.log.Error("list unexported events", zap.String("op", op), zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Failed to fetch calendar events", err)
		return
	}

	exported := 0
	failures := []exportFailure{}
	for _, event := range events {
		created, err := h.calendar.CreateEvent(r.Context(), event)
		if err != nil {
			h.log.Warn("push event", zap.String("op", op), zap.String("event_id", event.ID), zap.Error(err))
			failures = append(failures, exportFailure{EventID: event.ID, Error: err.Error()})
			continue
		}

		uid := created.ICalUID
		if uid == "" {
			uid = created.Id
		}
		if err := h.events.MarkExported(r.Context(), event.ID, uid); err != nil {
			h.log.Warn("mark exported", zap.String("op", op), zap.String("event_id", event.ID), zap.Error(err))
			failures = append(failures, exportFailure{EventID: event.ID, Error: err.Error()})
			continue
		}
		exported++
	}

	h.log.Info("google export finished",
		zap.String("op", op),
		zap.String("user_id", req.UserID),
		zap.Int("exported", exported),
		zap.Int("failed", len(failures)),
	)

	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"message":  "Calendar events exported to Google Calendar",
		"exported": exported,
		"failed":   failures,
	})
}

// HandleUpcoming lists what is already on the connected calendar.
func (h *GoogleCalendarHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleUpcoming"
	if !h.configured(w) {
		return
	}

	days := defaultUpcomingDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxUpcomingDays {
			writeError(w, h.log, http.StatusBadRequest, "days must be between 1 and 365", nil)
			return
		}
		days = n
	}

	items, err := h.calendar.ListEvents(r.Context(), days)
	if err != nil {
		status := http.StatusInternalServerError
		if !h.calendar.IsAuthorized() {
			status = http.StatusUnauthorized
		}
		h.log.Warn("list google events", zap.String("op", op), zap.Error(err))
		writeError(w, h.log, status, "Failed to fetch Google Calendar events", err)
		return
	}

	type upcoming struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
		Start   string `json:"start"`
	}
	out := make([]upcoming, 0, len(items))
	for _, item := range items {
		start := ""
		if item.Start != nil {
			start = item.Start.DateTime
			if start == "" {
				start = item.Start.Date
			}
		}
		out = append(out, upcoming{ID: item.Id, Summary: item.Summary, Start: start})
	}

	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"events": out,
		"count":  len(out),
	})
}
