package models

import (
	"time"
)

type EventType string

const (
	EventTypeAssignment EventType = "assignment"
	EventTypeExam       EventType = "exam"
	EventTypeQuiz       EventType = "quiz"
	EventTypeProject    EventType = "project"
	EventTypeReading    EventType = "reading"
	EventTypeDeadline   EventType = "deadline"
)

var EventTypes = []EventType{
	EventTypeAssignment,
	EventTypeExam,
	EventTypeQuiz,
	EventTypeProject,
	EventTypeReading,
	EventTypeDeadline,
}

func (t EventType) String() string {
	return string(t)
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ExtractedEvent is a candidate event produced by one extraction run.
// It carries no identity; storage assigns ids and ownership when persisting.
type ExtractedEvent struct {
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	EventType       EventType `json:"eventType"`
	DueDate         string    `json:"dueDate"`
	DueTime         *string   `json:"dueTime"`
	ConfidenceScore float64   `json:"confidenceScore"`
	SourceText      string    `json:"sourceText"`
}

type ExtractionMethod string

const (
	ExtractionMethodLLM    ExtractionMethod = "llm"
	ExtractionMethodRegex  ExtractionMethod = "regex"
	ExtractionMethodGoogle ExtractionMethod = "google_calendar_import"
)

// CalendarEvent is a stored event row.
type CalendarEvent struct {
	ID               string     `json:"id" db:"id"`
	SyllabusID       *string    `json:"syllabus_id" db:"syllabus_id"`
	ClassID          string     `json:"class_id" db:"class_id"`
	UserID           string     `json:"user_id" db:"user_id"`
	Title            string     `json:"title" db:"title"`
	Description      *string    `json:"description" db:"description"`
	EventType        EventType  `json:"event_type" db:"event_type"`
	DueDate          string     `json:"due_date" db:"due_date"`
	DueTime          *string    `json:"due_time" db:"due_time"`
	ConfidenceScore  *float64   `json:"confidence_score" db:"confidence_score"`
	SourceText       *string    `json:"source_text" db:"source_text"`
	ExtractionMethod *string    `json:"extraction_method" db:"extraction_method"`
	IsExported       bool       `json:"is_exported" db:"is_exported"`
	ExportedAt       *time.Time `json:"exported_at" db:"exported_at"`
	ICSUID           *string    `json:"ics_uid" db:"ics_uid"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type EventFilter struct {
	UserID    string
	ClassID   string
	EventType EventType
	StartDate string
	EndDate   string
	// OnlyUnexported limits the result to events not yet pushed to Google Calendar.
	OnlyUnexported bool
}

// EventPatch holds the user-editable fields of a stored event. Nil fields are left untouched.
type EventPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	EventType   *EventType `json:"event_type"`
	DueDate     *string    `json:"due_date"`
	DueTime     *string    `json:"due_time"`
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.EventType == nil && p.DueDate == nil && p.DueTime == nil
}
