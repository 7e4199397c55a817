package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"syllabus_calendar/internal/ai"
	"syllabus_calendar/internal/models"
)

const EXTRACTION_PROMPT = `You are an assistant that extracts calendar events from academic syllabi.
Identify assignments, exams, quizzes, projects, readings and other deadlines that have an explicit date.

Return a JSON array. Each element must be an object with exactly these fields:
- "title": short human-readable name of the event
- "description": extra details, or null
- "eventType": one of "assignment", "exam", "quiz", "project", "reading", "deadline"
- "dueDate": the date in ISO format YYYY-MM-DD
- "dueTime": the time in 24-hour HH:MM format, or null if no time is given
- "confidenceScore": a number from 0.0 to 1.0 describing how sure you are
- "sourceText": the exact substring of the syllabus the event was taken from

Rules:
1. Only extract events with explicit dates ("due September 15", not "second Tuesday").
2. If a date has no year, assume %d.
3. Be conservative with confidenceScore; use high values only for unambiguous dates.
4. If there are no events, return [].
5. Return only the JSON array, no other text.

Syllabus text:
`

var (
	ErrNoJSONArray = errors.New("no JSON array in response")
	ErrNotArray    = errors.New("response payload is not an array")
)

// LLMError reports why the LLM strategy produced nothing usable.
type LLMError struct {
	Reason string
	Err    error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm extraction failed (%s): %v", e.Reason, e.Err)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

const (
	reasonBackend = "backend"
	reasonStatus  = "status"
	reasonParse   = "parse"
	reasonSchema  = "schema"
)

// LLMExtractor asks the generative backend for a JSON array of events.
type LLMExtractor struct {
	client ai.Client
	log    *zap.Logger
}

func NewLLMExtractor(client ai.Client, log *zap.Logger) *LLMExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMExtractor{client: client, log: log}
}

func (le *LLMExtractor) Method() models.ExtractionMethod {
	return models.ExtractionMethodLLM
}

func BuildExtractionPrompt(text string, referenceYear int) string {
	return fmt.Sprintf(EXTRACTION_PROMPT, referenceYear) + text
}

func (le *LLMExtractor) Extract(ctx context.Context, text string, referenceYear int) ([]models.ExtractedEvent, error) {
	op := "usecases.LLMExtractor.Extract"

	response, err := le.client.Generate(ctx, BuildExtractionPrompt(text, referenceYear))
	if err != nil {
		var statusErr *ai.StatusError
		if errors.As(err, &statusErr) {
			return nil, &LLMError{Reason: reasonStatus, Err: err}
		}
		return nil, &LLMError{Reason: reasonBackend, Err: err}
	}

	events, dropped, err := ParseLLMResponse(response, referenceYear)
	if err != nil {
		le.log.Debug("unparseable llm reply", zap.String("op", op), zap.Int("reply_len", len(response)))
		reason := reasonParse
		if errors.Is(err, ErrNotArray) {
			reason = reasonSchema
		}
		return nil, &LLMError{Reason: reason, Err: err}
	}
	if dropped > 0 {
		le.log.Debug("dropped malformed llm elements", zap.String("op", op), zap.Int("dropped", dropped))
	}

	return events, nil
}
