package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"syllabus_calendar/internal/models"
)

func TestClassifyEvent(t *testing.T) {
	tests := []struct {
		title       string
		description string
		want        models.EventType
	}{
		{"Midterm Exam", "", models.EventTypeExam},
		{"Reading Chapter 5", "", models.EventTypeReading},
		{"Homework 2", "", models.EventTypeAssignment},
		{"Project exam review", "", models.EventTypeExam},
		{"Essay", "covers the final", models.EventTypeExam},
		{"Read the textbook", "", models.EventTypeReading},
		{"Chapter 4", "paper due", models.EventTypeAssignment},
		{"Office hours", "", models.EventTypeDeadline},
		{"", "", models.EventTypeDeadline},
		{"QUIZ 3", "", models.EventTypeExam},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEvent(tt.title, tt.description))
		})
	}
}

func TestKeywordEventType(t *testing.T) {
	assert.Equal(t, models.EventTypeExam, keywordEventType("Final  Exam"))
	assert.Equal(t, models.EventTypeExam, keywordEventType("Midterm"))
	assert.Equal(t, models.EventTypeQuiz, keywordEventType("quiz"))
	assert.Equal(t, models.EventTypeProject, keywordEventType("Project"))
	assert.Equal(t, models.EventTypeAssignment, keywordEventType("ASSIGNMENT"))
	assert.Equal(t, models.EventTypeAssignment, keywordEventType("homework"))
	assert.Equal(t, models.EventTypeReading, keywordEventType("Reading"))
	assert.Equal(t, models.EventTypeDeadline, keywordEventType("due"))
	assert.Equal(t, models.EventTypeDeadline, keywordEventType("deadline"))
}
