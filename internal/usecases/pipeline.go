package usecases

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"syllabus_calendar/internal/metrics"
	"syllabus_calendar/internal/models"
)

// Strategy is one way of turning syllabus text into candidate events.
type Strategy interface {
	Method() models.ExtractionMethod
	Extract(ctx context.Context, text string, referenceYear int) ([]models.ExtractedEvent, error)
}

type Result struct {
	Events []models.ExtractedEvent
	// Method names the strategy whose output was used. Empty when canceled.
	Method   models.ExtractionMethod
	Canceled bool
}

// Pipeline runs the primary strategy and falls back to the secondary on any
// error, then validates and deduplicates. It holds no per-run state.
type Pipeline struct {
	primary  Strategy
	fallback Strategy
	log      *zap.Logger
	metrics  *metrics.Extraction
}

// NewPipeline wires the two stages. primary may be nil, in which case only the
// fallback runs.
func NewPipeline(primary, fallback Strategy, log *zap.Logger, m *metrics.Extraction) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewExtraction(nil)
	}
	return &Pipeline{primary: primary, fallback: fallback, log: log, metrics: m}
}

func (p *Pipeline) Run(ctx context.Context, text string, referenceYear int) Result {
	op := "usecases.Pipeline.Run"

	if strings.TrimSpace(text) == "" {
		return Result{Events: []models.ExtractedEvent{}, Method: p.fallback.Method()}
	}

	events, method, err := p.attempt(ctx, text, referenceYear)
	if err != nil {
		p.log.Info("extraction stopped", zap.String("op", op), zap.Error(err))
		return Result{Events: []models.ExtractedEvent{}, Canceled: true}
	}
	p.metrics.Runs.WithLabelValues(string(method)).Inc()

	valid := ValidateEvents(events)
	unique := DeduplicateEvents(valid)

	p.metrics.Dropped.WithLabelValues("validate").Add(float64(len(events) - len(valid)))
	p.metrics.Dropped.WithLabelValues("dedup").Add(float64(len(valid) - len(unique)))
	p.metrics.Kept.Add(float64(len(unique)))

	p.log.Debug("extraction finished",
		zap.String("op", op),
		zap.String("method", string(method)),
		zap.Int("extracted", len(events)),
		zap.Int("valid", len(valid)),
		zap.Int("unique", len(unique)),
	)

	return Result{Events: unique, Method: method}
}

// attempt only returns an error when ctx is done.
func (p *Pipeline) attempt(ctx context.Context, text string, referenceYear int) ([]models.ExtractedEvent, models.ExtractionMethod, error) {
	op := "usecases.Pipeline.attempt"

	if p.primary != nil {
		events, err := p.primary.Extract(ctx, text, referenceYear)
		if err == nil {
			return events, p.primary.Method(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}

		reason := "unknown"
		var llmErr *LLMError
		if errors.As(err, &llmErr) {
			reason = llmErr.Reason
		}
		p.metrics.LLMFailures.WithLabelValues(reason).Inc()
		p.log.Warn("primary extraction failed, falling back",
			zap.String("op", op),
			zap.String("primary", string(p.primary.Method())),
			zap.String("fallback", string(p.fallback.Method())),
			zap.Error(err),
		)
	}

	events, err := p.fallback.Extract(ctx, text, referenceYear)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		p.log.Warn("fallback extraction failed", zap.String("op", op), zap.Error(err))
		return []models.ExtractedEvent{}, p.fallback.Method(), nil
	}
	return events, p.fallback.Method(), nil
}

// ValidateEvents drops events that are incomplete or out of range.
func ValidateEvents(events []models.ExtractedEvent) []models.ExtractedEvent {
	valid := make([]models.ExtractedEvent, 0, len(events))
	for _, event := range events {
		if normalized, ok := validateEvent(event); ok {
			valid = append(valid, normalized)
		}
	}
	return valid
}

func validateEvent(event models.ExtractedEvent) (models.ExtractedEvent, bool) {
	if strings.TrimSpace(event.Title) == "" || event.DueDate == "" || event.EventType == "" {
		return event, false
	}
	if !event.EventType.Valid() {
		return event, false
	}
	date, ok := ParseISODate(event.DueDate)
	if !ok {
		return event, false
	}
	if math.IsNaN(event.ConfidenceScore) || event.ConfidenceScore < 0 || event.ConfidenceScore > 1 {
		return event, false
	}

	event.DueDate = date.String()
	return event, true
}

// DeduplicateEvents keeps the first event per lower(title)+date, preserving order.
func DeduplicateEvents(events []models.ExtractedEvent) []models.ExtractedEvent {
	seen := make(map[string]struct{}, len(events))
	unique := make([]models.ExtractedEvent, 0, len(events))
	for _, event := range events {
		key := strings.ToLower(event.Title) + "-" + event.DueDate
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, event)
	}
	return unique
}
