package usecases

import (
	"strings"

	"syllabus_calendar/internal/models"
)

// Checked in order; the first set with a hit decides the type.
var keywordSets = []struct {
	eventType models.EventType
	keywords  []string
}{
	{models.EventTypeExam, []string{"exam", "test", "quiz", "midterm", "final", "assessment"}},
	{models.EventTypeAssignment, []string{"assignment", "homework", "project", "paper", "essay", "due"}},
	{models.EventTypeReading, []string{"reading", "chapter", "textbook", "article", "book"}},
}

// ClassifyEvent guesses an event type from free text. Exam keywords beat
// assignment keywords, which beat reading keywords. Falls back to deadline.
func ClassifyEvent(title, description string) models.EventType {
	text := strings.ToLower(title + " " + description)

	for _, set := range keywordSets {
		for _, keyword := range set.keywords {
			if strings.Contains(text, keyword) {
				return set.eventType
			}
		}
	}
	return models.EventTypeDeadline
}

// keywordEventType maps the keyword captured by a regex template to a type.
func keywordEventType(keyword string) models.EventType {
	k := strings.ToLower(keyword)

	switch {
	case strings.Contains(k, "exam"), strings.Contains(k, "final"), strings.Contains(k, "midterm"):
		return models.EventTypeExam
	case strings.Contains(k, "quiz"):
		return models.EventTypeQuiz
	case strings.Contains(k, "project"):
		return models.EventTypeProject
	case strings.Contains(k, "assignment"), strings.Contains(k, "homework"):
		return models.EventTypeAssignment
	case strings.Contains(k, "reading"):
		return models.EventTypeReading
	}
	return models.EventTypeDeadline
}
