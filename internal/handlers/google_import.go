package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
)

const importConfidence = 1.0

type importEvent struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	EventType   string  `json:"event_type" validate:"omitempty,eventtype"`
	DueDate     string  `json:"due_date" validate:"required,isodate"`
	DueTime     string  `json:"due_time" validate:"clock"`
	SourceText  string  `json:"source_text"`
}

type importRequest struct {
	ClassID string        `json:"class_id" validate:"required"`
	UserID  string        `json:"user_id" validate:"required"`
	Events  []importEvent `json:"events" validate:"required,min=1,max=500,dive"`
}

// HandleImport stores events the user picked from their Google Calendar.
// The events come from the request body, so no OAuth connection is needed.
func (h *GoogleCalendarHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleImport"

	var req importRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		h.log.Debug("bad import request", zap.String("op", op), zap.Error(err))
		writeError(w, h.log, http.StatusBadRequest, "Invalid import request", err)
		return
	}

	events := make([]models.ExtractedEvent, 0, len(req.Events))
	for i, item := range req.Events {
		if strings.TrimSpace(item.Title) == "" {
			writeError(w, h.log, http.StatusBadRequest, "Invalid import request",
				fmt.Errorf("events[%d]: missing required field: title", i))
			return
		}
		event := models.ExtractedEvent{
			Title:           strings.TrimSpace(item.Title),
			Description:     item.Description,
			EventType:       models.EventType(item.EventType),
			DueDate:         item.DueDate,
			ConfidenceScore: importConfidence,
			SourceText:      item.SourceText,
		}
		if event.EventType == "" {
			event.EventType = models.EventTypeDeadline
		}
		if item.DueTime != "" {
			dueTime := item.DueTime
			event.DueTime = &dueTime
		}
		if event.SourceText == "" {
			event.SourceText = event.Title
		}
		events = append(events, event)
	}

	owner := storage.EventOwner{ClassID: req.ClassID, UserID: req.UserID}
	stored, err := h.events.InsertEvents(r.Context(), owner, models.ExtractionMethodGoogle, events)
	if err != nil {
		h.log.Error("store imported events", zap.String("op", op), zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Failed to import events from Google Calendar", err)
		return
	}

	h.log.Info("google import finished",
		zap.String("op", op),
		zap.String("user_id", req.UserID),
		zap.String("class_id", req.ClassID),
		zap.Int("imported", len(stored)),
	)

	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"message":        "Events imported from Google Calendar",
		"imported_count": len(stored),
		"events":         stored,
	})
}
