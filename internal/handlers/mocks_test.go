package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"google.golang.org/api/calendar/v3"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
	"syllabus_calendar/internal/usecases"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Run(ctx context.Context, text string, referenceYear int) usecases.Result {
	args := m.Called(ctx, text, referenceYear)
	return args.Get(0).(usecases.Result)
}

type mockEventStore struct {
	mock.Mock
}

func (m *mockEventStore) InsertEvents(ctx context.Context, owner storage.EventOwner, method models.ExtractionMethod, events []models.ExtractedEvent) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, owner, method, events)
	stored, _ := args.Get(0).([]models.CalendarEvent)
	return stored, args.Error(1)
}

func (m *mockEventStore) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, filter)
	events, _ := args.Get(0).([]models.CalendarEvent)
	return events, args.Error(1)
}

func (m *mockEventStore) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.CalendarEvent, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(models.CalendarEvent), args.Error(1)
}

func (m *mockEventStore) DeleteBySyllabus(ctx context.Context, syllabusID string) (int64, error) {
	args := m.Called(ctx, syllabusID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEventStore) MarkExported(ctx context.Context, id, uid string) error {
	return m.Called(ctx, id, uid).Error(0)
}

type mockSyllabusStore struct {
	mock.Mock
}

func (m *mockSyllabusStore) GetSyllabus(ctx context.Context, id, classID string) (models.Syllabus, error) {
	args := m.Called(ctx, id, classID)
	return args.Get(0).(models.Syllabus), args.Error(1)
}

func (m *mockSyllabusStore) BeginProcessing(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSyllabusStore) FinishProcessing(ctx context.Context, id string, status models.ProcessingStatus, errMsg *string) error {
	return m.Called(ctx, id, status, errMsg).Error(0)
}

type mockCalendarSync struct {
	mock.Mock
}

func (m *mockCalendarSync) IsAuthorized() bool {
	return m.Called().Bool(0)
}

func (m *mockCalendarSync) GetAuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockCalendarSync) ExchangeCode(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockCalendarSync) CreateEvent(ctx context.Context, event models.CalendarEvent) (*calendar.Event, error) {
	args := m.Called(ctx, event)
	created, _ := args.Get(0).(*calendar.Event)
	return created, args.Error(1)
}

func (m *mockCalendarSync) ListEvents(ctx context.Context, days int) ([]*calendar.Event, error) {
	args := m.Called(ctx, days)
	items, _ := args.Get(0).([]*calendar.Event)
	return items, args.Error(1)
}
