package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"syllabus_calendar/internal/ics"
	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
)

const icsCalendarName = "Syllabus deadlines"

type CalendarHandler struct {
	extractor Extractor
	events    EventStore
	location  *time.Location
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

func NewCalendarHandler(extractor Extractor, events EventStore, location *time.Location, log *zap.Logger) *CalendarHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &CalendarHandler{
		extractor: extractor,
		events:    events,
		location:  location,
		validate:  newValidator(),
		log:       log,
		now:       time.Now,
	}
}

type extractEventsRequest struct {
	PDFContext    string `json:"pdf_context" validate:"required"`
	ReferenceYear int    `json:"reference_year" validate:"omitempty,min=1900,max=9999"`
}

type extractEventsResponse struct {
	Message          string                  `json:"message"`
	Events           []models.ExtractedEvent `json:"events"`
	Count            int                     `json:"count"`
	ExtractionMethod models.ExtractionMethod `json:"extraction_method"`
}

// HandleExtractEvents runs the pipeline on raw syllabus text without storing anything.
func (ch *CalendarHandler) HandleExtractEvents(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleExtractEvents"

	var req extractEventsRequest
	err := decodeJSON(w, r, ch.validate, &req)
	if err == nil && strings.TrimSpace(req.PDFContext) == "" {
		err = errors.New("missing required field: pdf_context")
	}
	if err != nil {
		ch.log.Debug("bad extract request", zap.String("op", op), zap.Error(err))
		writeError(w, ch.log, http.StatusBadRequest, "Missing required field: pdf_context", err)
		return
	}

	year := req.ReferenceYear
	if year == 0 {
		year = ch.now().In(ch.location).Year()
	}

	result := ch.extractor.Run(r.Context(), req.PDFContext, year)
	if result.Canceled {
		ch.log.Info("extraction canceled by client", zap.String("op", op))
		writeError(w, ch.log, http.StatusServiceUnavailable, "Extraction canceled", r.Context().Err())
		return
	}

	writeJSON(w, ch.log, http.StatusOK, extractEventsResponse{
		Message:          "Calendar events extracted successfully",
		Events:           result.Events,
		Count:            len(result.Events),
		ExtractionMethod: result.Method,
	})
}

type eventFilterQuery struct {
	ClassID   string `json:"class_id"`
	EventType string `json:"event_type" validate:"omitempty,eventtype"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
}

func (ch *CalendarHandler) parseFilter(r *http.Request, userID string) (models.EventFilter, error) {
	q := r.URL.Query()
	query := eventFilterQuery{
		ClassID:   q.Get("class_id"),
		EventType: q.Get("event_type"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if err := validateStruct(ch.validate, &query); err != nil {
		return models.EventFilter{}, err
	}
	return models.EventFilter{
		UserID:    userID,
		ClassID:   query.ClassID,
		EventType: models.EventType(query.EventType),
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
	}, nil
}

// HandleListEvents serves GET /api/calendar/events/{user_id}.
func (ch *CalendarHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleListEvents"

	filter, err := ch.parseFilter(r, r.PathValue("user_id"))
	if err != nil {
		writeError(w, ch.log, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	events, err := ch.events.ListEvents(r.Context(), filter)
	if err != nil {
		ch.log.Error("list events", zap.String("op", op), zap.String("user_id", filter.UserID), zap.Error(err))
		writeError(w, ch.log, http.StatusInternalServerError, "Failed to fetch calendar events", err)
		return
	}

	writeJSON(w, ch.log, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

type updateEventRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description"`
	EventType   *string `json:"event_type" validate:"omitnil,eventtype"`
	DueDate     *string `json:"due_date" validate:"omitnil,isodate"`
	DueTime     *string `json:"due_time" validate:"omitnil,clock"`
}

func (req updateEventRequest) patch() models.EventPatch {
	patch := models.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
	}
	if req.EventType != nil {
		eventType := models.EventType(*req.EventType)
		patch.EventType = &eventType
	}
	return patch
}

// HandleUpdateEvent serves PUT /api/calendar/events/{event_id}.
func (ch *CalendarHandler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleUpdateEvent"
	eventID := r.PathValue("event_id")

	var req updateEventRequest
	if err := decodeJSON(w, r, ch.validate, &req); err != nil {
		writeError(w, ch.log, http.StatusBadRequest, "Invalid update", err)
		return
	}
	patch := req.patch()
	if patch.Empty() {
		writeError(w, ch.log, http.StatusBadRequest, "No fields to update", nil)
		return
	}

	event, err := ch.events.UpdateEvent(r.Context(), eventID, patch)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, ch.log, http.StatusNotFound, "Calendar event not found", nil)
		return
	}
	if err != nil {
		ch.log.Error("update event", zap.String("op", op), zap.String("event_id", eventID), zap.Error(err))
		writeError(w, ch.log, http.StatusInternalServerError, "Failed to update calendar event", err)
		return
	}

	writeJSON(w, ch.log, http.StatusOK, map[string]any{
		"message": "Calendar event updated successfully",
		"event":   event,
	})
}

// HandleDeleteSyllabusEvents serves DELETE /api/calendar/events/syllabus/{syllabus_id}.
func (ch *CalendarHandler) HandleDeleteSyllabusEvents(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleDeleteSyllabusEvents"
	syllabusID := r.PathValue("syllabus_id")

	deleted, err := ch.events.DeleteBySyllabus(r.Context(), syllabusID)
	if err != nil {
		ch.log.Error("delete events", zap.String("op", op), zap.String("syllabus_id", syllabusID), zap.Error(err))
		writeError(w, ch.log, http.StatusInternalServerError, "Failed to delete calendar events", err)
		return
	}

	writeJSON(w, ch.log, http.StatusOK, map[string]any{
		"message":     "Calendar events deleted successfully",
		"syllabus_id": syllabusID,
		"deleted":     deleted,
	})
}

// HandleExportICS serves a user's events as an .ics download.
func (ch *CalendarHandler) HandleExportICS(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleExportICS"

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, ch.log, http.StatusBadRequest, "Missing required parameter: user_id", nil)
		return
	}
	filter, err := ch.parseFilter(r, userID)
	if err != nil {
		writeError(w, ch.log, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	events, err := ch.events.ListEvents(r.Context(), filter)
	if err != nil {
		ch.log.Error("list events for ics", zap.String("op", op), zap.String("user_id", userID), zap.Error(err))
		writeError(w, ch.log, http.StatusInternalServerError, "Failed to fetch calendar events", err)
		return
	}

	feed, err := ics.Export(events, icsCalendarName, ch.now(), ch.location)
	if err != nil {
		ch.log.Error("render ics", zap.String("op", op), zap.Error(err))
		writeError(w, ch.log, http.StatusInternalServerError, "Failed to export calendar", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		ch.log.Warn("write ics", zap.String("op", op), zap.Error(err))
	}
}
