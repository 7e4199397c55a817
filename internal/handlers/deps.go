package handlers

import (
	"context"

	"google.golang.org/api/calendar/v3"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
	"syllabus_calendar/internal/usecases"
)

type Extractor interface {
	Run(ctx context.Context, text string, referenceYear int) usecases.Result
}

type EventStore interface {
	InsertEvents(ctx context.Context, owner storage.EventOwner, method models.ExtractionMethod, events []models.ExtractedEvent) ([]models.CalendarEvent, error)
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.CalendarEvent, error)
	DeleteBySyllabus(ctx context.Context, syllabusID string) (int64, error)
	MarkExported(ctx context.Context, id, uid string) error
}

type SyllabusStore interface {
	GetSyllabus(ctx context.Context, id, classID string) (models.Syllabus, error)
	BeginProcessing(ctx context.Context, id string) error
	FinishProcessing(ctx context.Context, id string, status models.ProcessingStatus, errMsg *string) error
}

// CalendarSync is the Google Calendar side of the export.
type CalendarSync interface {
	IsAuthorized() bool
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) error
	CreateEvent(ctx context.Context, event models.CalendarEvent) (*calendar.Event, error)
	ListEvents(ctx context.Context, days int) ([]*calendar.Event, error)
}
