package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/storage"
	"syllabus_calendar/internal/usecases"
)

const processBody = `{"syllabus_id":"syl-1","class_id":"class-1","user_id":"user-1"}`

func pendingSyllabus(content *string) models.Syllabus {
	return models.Syllabus{ID: "syl-1", ClassID: "class-1", ContentText: content, ProcessingStatus: models.StatusPending}
}

func TestHandleProcess_StoresEventsAndCompletes(t *testing.T) {
	ts := newTestServer(t)
	text := "Assignment due: September 15, 2025. Midterm Exam - Oct 10."
	extracted := []models.ExtractedEvent{
		{Title: "due", EventType: models.EventTypeAssignment, DueDate: "2025-09-15", ConfidenceScore: 0.7},
		{Title: "exam due", EventType: models.EventTypeExam, DueDate: "2025-10-10", ConfidenceScore: 0.7},
	}
	owner := storage.EventOwner{SyllabusID: ptr("syl-1"), ClassID: "class-1", UserID: "user-1"}
	stored := []models.CalendarEvent{
		{ID: "ev-1", Title: "due", DueDate: "2025-09-15"},
		{ID: "ev-2", Title: "exam due", DueDate: "2025-10-10"},
	}

	ts.syllabi.On("GetSyllabus", mock.Anything, "syl-1", "class-1").Return(pendingSyllabus(&text), nil)
	ts.syllabi.On("BeginProcessing", mock.Anything, "syl-1").Return(nil)
	ts.extractor.On("Run", mock.Anything, text, 2025).
		Return(usecases.Result{Events: extracted, Method: models.ExtractionMethodRegex})
	ts.events.On("DeleteBySyllabus", mock.Anything, "syl-1").Return(int64(0), nil)
	ts.events.On("InsertEvents", mock.Anything, owner, models.ExtractionMethodRegex, extracted).Return(stored, nil)
	ts.syllabi.On("FinishProcessing", mock.Anything, "syl-1", models.StatusCompleted, (*string)(nil)).Return(nil)

	rec := ts.do(http.MethodPost, "/api/syllabi/process", processBody)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "regex", body["extraction_method"])
	assert.Equal(t, "syl-1", body["syllabus_id"])
}

func TestHandleProcess_UnknownSyllabus(t *testing.T) {
	ts := newTestServer(t)
	ts.syllabi.On("GetSyllabus", mock.Anything, "syl-1", "class-1").
		Return(models.Syllabus{}, storage.ErrNotFound)

	rec := ts.do(http.MethodPost, "/api/syllabi/process", processBody)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Syllabus not found", decodeBody(t, rec)["error"])
}

func TestHandleProcess_NoContent(t *testing.T) {
	for name, content := range map[string]*string{
		"nil":   nil,
		"blank": ptr("  \n"),
	} {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.syllabi.On("GetSyllabus", mock.Anything, "syl-1", "class-1").Return(pendingSyllabus(content), nil)

			rec := ts.do(http.MethodPost, "/api/syllabi/process", processBody)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleProcess_AlreadyProcessing(t *testing.T) {
	ts := newTestServer(t)
	ts.syllabi.On("GetSyllabus", mock.Anything, "syl-1", "class-1").Return(pendingSyllabus(ptr("Quiz - Oct 1")), nil)
	ts.syllabi.On("BeginProcessing", mock.Anything, "syl-1").Return(storage.ErrAlreadyProcessing)

	rec := ts.do(http.MethodPost, "/api/syllabi/process", processBody)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleProcess_StorageFailureMarksFailed(t *testing.T) {
	ts := newTestServer(t)
	text := "Quiz - Oct 1"
	extracted := []models.ExtractedEvent{{Title: "quiz due", EventType: models.EventTypeQuiz, DueDate: "2025-10-01", ConfidenceScore: 0.7}}

	ts.syllabi.On("GetSyllabus", mock.Anything, "syl-1", "class-1").Return(pendingSyllabus(&text), nil)
	ts.syllabi.On("BeginProcessing", mock.Anything, "syl-1").Return(nil)
	ts.extractor.On("Run", mock.Anything, text, 2025).
		Return(usecases.Result{Events: extracted, Method: models.ExtractionMethodRegex})
	ts.events.On("DeleteBySyllabus", mock.Anything, "syl-1").Return(int64(0), nil)
	ts.events.On("InsertEvents", mock.Anything, mock.Anything, models.ExtractionMethodRegex, extracted).
		Return(nil, errors.New("disk full"))
	ts.syllabi.On("FinishProcessing", mock.Anything, "syl-1", models.StatusFailed, ptr("disk full")).Return(nil)

	rec := ts.do(http.MethodPost, "/api/syllabi/process", processBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleProcess_CanceledRunIsNotPersisted(t *testing.T) {
	ts := newTestServer(t)
	text := "Quiz - Oct 1"

	ts.syllabi.On("GetSyllabus", mock.Anything, "syl-1", "class-1").Return(pendingSyllabus(&text), nil)
	ts.syllabi.On("BeginProcessing", mock.Anything, "syl-1").Return(nil)
	ts.extractor.On("Run", mock.Anything, text, 2025).
		Return(usecases.Result{Events: []models.ExtractedEvent{}, Canceled: true})
	ts.syllabi.On("FinishProcessing", mock.Anything, "syl-1", models.StatusFailed, ptr("extraction canceled")).Return(nil)

	rec := ts.do(http.MethodPost, "/api/syllabi/process", processBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	ts.events.AssertNotCalled(t, "InsertEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleProcess_ValidatesBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/syllabi/process", `{"syllabus_id":"syl-1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["details"].(string)
	assert.Contains(t, details, "class_id")
	assert.Contains(t, details, "user_id")
}
