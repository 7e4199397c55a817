package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllabus_calendar/internal/models"
)

func TestExtractWithRegex_MixedFormats(t *testing.T) {
	text := "Assignment due: September 15, 2024. Midterm Exam - Oct 10."

	events := ExtractWithRegex(text, 2024)
	require.Len(t, events, 2)

	assert.Equal(t, models.EventTypeAssignment, events[0].EventType)
	assert.Equal(t, "2024-09-15", events[0].DueDate)
	assert.Equal(t, "due", events[0].Title)
	assert.Equal(t, "Assignment due: September 15, 2024", events[0].SourceText)
	assert.Equal(t, 0.7, events[0].ConfidenceScore)
	assert.Nil(t, events[0].DueTime)

	assert.Equal(t, models.EventTypeExam, events[1].EventType)
	assert.Equal(t, "2024-10-10", events[1].DueDate)
	assert.Equal(t, "exam due", events[1].Title)
	assert.Equal(t, "Midterm Exam - Oct 10", events[1].SourceText)
}

func TestExtractWithRegex_NumericDate(t *testing.T) {
	events := ExtractWithRegex("Project Final report 12/05/2024", 2020)
	require.Len(t, events, 1)

	assert.Equal(t, models.EventTypeProject, events[0].EventType)
	assert.Equal(t, "Final report", events[0].Title)
	assert.Equal(t, "2024-12-05", events[0].DueDate)
}

func TestExtractWithRegex_RefinesGenericKeyword(t *testing.T) {
	events := ExtractWithRegex("Due: Chapter 3 reading response 9/3/2024", 2024)
	require.Len(t, events, 1)

	assert.Equal(t, models.EventTypeReading, events[0].EventType)
	assert.Equal(t, "Chapter 3 reading response", events[0].Title)
}

func TestExtractWithRegex_EmptyTitleFallsBack(t *testing.T) {
	events := ExtractWithRegex("Quiz: Jan 20, 2025", 2024)
	require.Len(t, events, 1)

	assert.Equal(t, models.EventTypeQuiz, events[0].EventType)
	assert.Equal(t, "quiz due", events[0].Title)
	assert.Equal(t, "2025-01-20", events[0].DueDate)
}

func TestExtractWithRegex_ExplicitYearWinsOverReference(t *testing.T) {
	events := ExtractWithRegex("Final Exam: December 12, 2025", 2024)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-12-12", events[0].DueDate)
}

func TestExtractWithRegex_KeepsExamQualifier(t *testing.T) {
	events := ExtractWithRegex("Final Exam - Dec 10, 2024", 2020)
	require.Len(t, events, 1)

	assert.Equal(t, models.EventTypeExam, events[0].EventType)
	assert.Equal(t, "2024-12-10", events[0].DueDate)
	assert.Equal(t, "Final Exam - Dec 10, 2024", events[0].SourceText)
}

func TestExtractWithRegex_SkipsInvalidDates(t *testing.T) {
	text := "Homework 1 due 2/30/2024\nHomework 2 due 3/1/2024"

	events := ExtractWithRegex(text, 2024)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-03-01", events[0].DueDate)
	assert.Equal(t, models.EventTypeAssignment, events[0].EventType)
}

func TestExtractWithRegex_DocumentOrder(t *testing.T) {
	text := "Quiz 1 - Sep 5\nAssignment 1: 9/10/2024\nExam 1 on October 1, 2024"

	events := ExtractWithRegex(text, 2024)
	require.Len(t, events, 3)
	assert.Equal(t, "2024-09-05", events[0].DueDate)
	assert.Equal(t, "2024-09-10", events[1].DueDate)
	assert.Equal(t, "2024-10-01", events[2].DueDate)
}

func TestExtractWithRegex_NothingFound(t *testing.T) {
	for _, text := range []string{"", "No dates here at all.", "Overdue items are penalized", "]]][[{{ 99/99/9999"} {
		assert.Empty(t, ExtractWithRegex(text, 2024), text)
	}
}

func TestRegexExtractor_Strategy(t *testing.T) {
	var r RegexExtractor
	assert.Equal(t, models.ExtractionMethodRegex, r.Method())

	events, err := r.Extract(context.Background(), "Exam: May 2, 2024", 2024)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-05-02", events[0].DueDate)
}
