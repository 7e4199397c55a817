package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
)

type SyllabusHandler struct {
	extractor Extractor
	syllabi   SyllabusStore
	events    EventStore
	location  *time.Location
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

func NewSyllabusHandler(extractor Extractor, syllabi SyllabusStore, events EventStore, location *time.Location, log *zap.Logger) *SyllabusHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &SyllabusHandler{
		extractor: extractor,
		syllabi:   syllabi,
		events:    events,
		location:  location,
		validate:  newValidator(),
		log:       log,
		now:       time.Now,
	}
}

type processSyllabusRequest struct {
	SyllabusID string `json:"syllabus_id" validate:"required"`
	ClassID    string `json:"class_id" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
}

// HandleProcess extracts events from a stored syllabus and saves them for the user.
// Reprocessing replaces the events of an earlier run.
func (sh *SyllabusHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	op := "handlers.HandleProcess"
	ctx := r.Context()

	var req processSyllabusRequest
	if err := decodeJSON(w, r, sh.validate, &req); err != nil {
		writeError(w, sh.log, http.StatusBadRequest, "Invalid request", err)
		return
	}
	log := sh.log.With(zap.String("op", op), zap.String("syllabus_id", req.SyllabusID))

	syllabus, err := sh.syllabi.GetSyllabus(ctx, req.SyllabusID, req.ClassID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, sh.log, http.StatusNotFound, "Syllabus not found", nil)
		return
	}
	if err != nil {
		log.Error("get syllabus", zap.Error(err))
		writeError(w, sh.log, http.StatusInternalServerError, "Failed to load syllabus", err)
		return
	}
	if syllabus.ContentText == nil || strings.TrimSpace(*syllabus.ContentText) == "" {
		writeError(w, sh.log, http.StatusBadRequest, "Syllabus has no text content", nil)
		return
	}

	if err := sh.syllabi.BeginProcessing(ctx, syllabus.ID); err != nil {
		if errors.Is(err, storage.ErrAlreadyProcessing) {
			writeError(w, sh.log, http.StatusConflict, "Syllabus is already being processed", nil)
			return
		}
		log.Error("begin processing", zap.Error(err))
		writeError(w, sh.log, http.StatusInternalServerError, "Failed to update syllabus status", err)
		return
	}

	// Status bookkeeping must land even if the client goes away.
	bookkeeping := context.WithoutCancel(ctx)

	result := sh.extractor.Run(ctx, *syllabus.ContentText, sh.now().In(sh.location).Year())
	if result.Canceled {
		sh.fail(bookkeeping, log, syllabus.ID, "extraction canceled")
		writeError(w, sh.log, http.StatusServiceUnavailable, "Extraction canceled", ctx.Err())
		return
	}

	if _, err := sh.events.DeleteBySyllabus(bookkeeping, syllabus.ID); err != nil {
		log.Error("clear previous events", zap.Error(err))
		sh.fail(bookkeeping, log, syllabus.ID, err.Error())
		writeError(w, sh.log, http.StatusInternalServerError, "Failed to store calendar events", err)
		return
	}

	owner := storage.EventOwner{SyllabusID: &syllabus.ID, ClassID: req.ClassID, UserID: req.UserID}
	stored, err := sh.events.InsertEvents(bookkeeping, owner, result.Method, result.Events)
	if err != nil {
		log.Error("insert events", zap.Error(err))
		sh.fail(bookkeeping, log, syllabus.ID, err.Error())
		writeError(w, sh.log, http.StatusInternalServerError, "Failed to store calendar events", err)
		return
	}

	if err := sh.syllabi.FinishProcessing(bookkeeping, syllabus.ID, models.StatusCompleted, nil); err != nil {
		log.Error("finish processing", zap.Error(err))
		writeError(w, sh.log, http.StatusInternalServerError, "Failed to update syllabus status", err)
		return
	}

	log.Info("syllabus processed",
		zap.String("method", string(result.Method)),
		zap.Int("events", len(stored)),
	)

	writeJSON(w, sh.log, http.StatusOK, map[string]any{
		"message":           "Syllabus processed successfully",
		"syllabus_id":       syllabus.ID,
		"extraction_method": result.Method,
		"events":            stored,
		"count":             len(stored),
	})
}

func (sh *SyllabusHandler) fail(ctx context.Context, log *zap.Logger, id, reason string) {
	if err := sh.syllabi.FinishProcessing(ctx, id, models.StatusFailed, &reason); err != nil {
		log.Error("mark syllabus failed", zap.Error(err))
	}
}
