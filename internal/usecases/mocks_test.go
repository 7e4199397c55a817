package usecases

import (
	"context"

	"github.com/stretchr/testify/mock"

	"syllabus_calendar/internal/models"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockStrategy struct {
	mock.Mock
	method models.ExtractionMethod
}

func (m *mockStrategy) Method() models.ExtractionMethod {
	return m.method
}

func (m *mockStrategy) Extract(ctx context.Context, text string, referenceYear int) ([]models.ExtractedEvent, error) {
	args := m.Called(ctx, text, referenceYear)
	events, _ := args.Get(0).([]models.ExtractedEvent)
	return events, args.Error(1)
}
