package usecases

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"syllabus_calendar/internal/models"
)

const (
	unknownEventTitle    = "Unknown Event"
	defaultLLMConfidence = 0.5
)

// Greedy: first '[' through last ']'.
var jsonArraySpan = regexp.MustCompile(`(?s)\[.*\]`)

// ParseLLMResponse pulls the JSON array out of a free-text reply and coerces each
// element field by field. Elements that are not objects are dropped and counted.
func ParseLLMResponse(response string, referenceYear int) ([]models.ExtractedEvent, int, error) {
	jsonText := jsonArraySpan.FindString(response)
	if jsonText == "" {
		if trimmed := strings.TrimSpace(response); trimmed != "" && gjson.Valid(trimmed) {
			return nil, 0, ErrNotArray
		}
		return nil, 0, ErrNoJSONArray
	}
	if !gjson.Valid(jsonText) {
		return nil, 0, ErrNoJSONArray
	}

	payload := gjson.Parse(jsonText)
	if !payload.IsArray() {
		return nil, 0, ErrNotArray
	}

	events := []models.ExtractedEvent{}
	dropped := 0
	payload.ForEach(func(_, element gjson.Result) bool {
		if !element.IsObject() {
			dropped++
			return true
		}
		events = append(events, coerceEvent(element, referenceYear))
		return true
	})

	return events, dropped, nil
}

// field reads the first present key, accepting camelCase and snake_case spellings.
func field(obj gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := obj.Get(key); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func coerceEvent(obj gjson.Result, referenceYear int) models.ExtractedEvent {
	event := models.ExtractedEvent{
		Title:           unknownEventTitle,
		EventType:       models.EventTypeDeadline,
		ConfidenceScore: defaultLLMConfidence,
	}

	if v := field(obj, "title"); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
		event.Title = strings.TrimSpace(v.Str)
	}

	if v := field(obj, "description"); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
		desc := strings.TrimSpace(v.Str)
		event.Description = &desc
	}

	if v := field(obj, "eventType", "event_type", "type"); v.Type == gjson.String {
		if t := models.EventType(strings.ToLower(strings.TrimSpace(v.Str))); t.Valid() {
			event.EventType = t
		}
	}

	if v := field(obj, "dueDate", "due_date", "date"); v.Type == gjson.String {
		raw := strings.TrimSpace(v.Str)
		if d, ok := timestampDate(raw); ok {
			event.DueDate = d.String()
		} else if d, ok := ParseDate(raw, referenceYear); ok {
			event.DueDate = d.String()
		} else {
			event.DueDate = raw
		}
	}

	if v := field(obj, "dueTime", "due_time", "time"); v.Type == gjson.String {
		if t, ok := normalizeTime(v.Str); ok {
			event.DueTime = &t
		}
	}

	if v := field(obj, "confidenceScore", "confidence_score", "confidence"); v.Type == gjson.Number && !math.IsNaN(v.Num) {
		event.ConfidenceScore = v.Num
	}

	if v := field(obj, "sourceText", "source_text"); v.Type == gjson.String {
		event.SourceText = v.Str
	}

	return event
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3PM", "3 PM"}

// normalizeTime turns "14:30", "2:30 PM" and similar into "HH:MM".
func normalizeTime(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ".", "")
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// timestampDate keeps the calendar day of an ISO timestamp as written, without
// shifting it into another zone.
func timestampDate(raw string) (models.Date, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.NewDate(t.Year(), t.Month(), t.Day())
		}
	}
	return models.Date{}, false
}
