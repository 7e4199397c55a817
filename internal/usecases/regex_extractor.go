package usecases

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"syllabus_calendar/internal/models"
)

const regexConfidence = 0.7

const (
	eventKeywords = `(final\s+exam|midterm(?:\s+exam)?|assignment|homework|exam|quiz|project|reading|deadline|due)`
	looseKeywords = `(final\s+exam|midterm(?:\s+exam)?|exam|quiz|assignment|homework|project|reading|deadline|due)`
)

type templateKind int

const (
	monthDayYear templateKind = iota
	numericDate
	monthDay
)

// Templates are tried in order. A match overlapping text already claimed by an
// earlier template is ignored.
var eventTemplates = []struct {
	re   *regexp.Regexp
	kind templateKind
}{
	// "Assignment due: September 15, 2024"
	{
		re:   regexp.MustCompile(`(?i)\b` + eventKeywords + `[\s:]+([^:.\n]*?)[\s:]*\b` + monthPattern + `\s+(\d{1,2}),?\s+(\d{4})\b`),
		kind: monthDayYear,
	},
	// "Due: 9/15/2024"
	{
		re:   regexp.MustCompile(`(?i)\b` + eventKeywords + `[\s:]+([^:.\n]*?)[\s:]*\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		kind: numericDate,
	},
	// "Final Exam - Dec 10"
	{
		re:   regexp.MustCompile(`(?i)\b` + looseKeywords + `[\s:\-–]+([^:.\n\-–]*?)[\s:\-–]*\b` + monthPattern + `\s+(\d{1,2})\b`),
		kind: monthDay,
	},
}

// RegexExtractor is the deterministic fallback strategy. It never fails.
type RegexExtractor struct{}

func (RegexExtractor) Method() models.ExtractionMethod {
	return models.ExtractionMethodRegex
}

func (r RegexExtractor) Extract(_ context.Context, text string, referenceYear int) ([]models.ExtractedEvent, error) {
	return ExtractWithRegex(text, referenceYear), nil
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

type positioned struct {
	span  span
	event models.ExtractedEvent
}

// ExtractWithRegex pattern-matches dated event phrases in document order.
func ExtractWithRegex(text string, referenceYear int) []models.ExtractedEvent {
	var claimed []span
	var found []positioned

	for _, tpl := range eventTemplates {
		for _, idx := range tpl.re.FindAllStringSubmatchIndex(text, -1) {
			s := span{idx[0], idx[1]}
			if slices.ContainsFunc(claimed, s.overlaps) {
				continue
			}

			groups := make([]string, len(idx)/2)
			for i := range groups {
				if idx[2*i] >= 0 {
					groups[i] = text[idx[2*i]:idx[2*i+1]]
				}
			}

			event, ok := eventFromMatch(tpl.kind, groups, referenceYear)
			if !ok {
				continue
			}
			claimed = append(claimed, s)
			found = append(found, positioned{span: s, event: event})
		}
	}

	slices.SortStableFunc(found, func(a, b positioned) int {
		return a.span.start - b.span.start
	})

	events := make([]models.ExtractedEvent, 0, len(found))
	for _, f := range found {
		events = append(events, f.event)
	}
	return events
}

// groups[0] is the whole match, [1] keyword, [2] title, then the date parts.
func eventFromMatch(kind templateKind, groups []string, referenceYear int) (models.ExtractedEvent, bool) {
	var year, day int
	var month time.Month

	switch kind {
	case monthDayYear:
		m, ok := lookupMonth(groups[3])
		if !ok {
			return models.ExtractedEvent{}, false
		}
		month, day, year = m, atoi(groups[4]), atoi(groups[5])
	case numericDate:
		month, day, year = time.Month(atoi(groups[3])), atoi(groups[4]), atoi(groups[5])
	case monthDay:
		m, ok := lookupMonth(groups[3])
		if !ok {
			return models.ExtractedEvent{}, false
		}
		month, day, year = m, atoi(groups[4]), referenceYear
	}

	dueDate, ok := ParseISODate(fmt.Sprintf("%04d-%02d-%02d", year, int(month), day))
	if !ok {
		return models.ExtractedEvent{}, false
	}

	title := strings.Trim(groups[2], " \t-–:,")
	eventType := keywordEventType(groups[1])
	if eventType == models.EventTypeDeadline && title != "" {
		eventType = ClassifyEvent(title, "")
	}
	if title == "" {
		title = fmt.Sprintf("%s due", eventType)
	}

	return models.ExtractedEvent{
		Title:           title,
		EventType:       eventType,
		DueDate:         dueDate.String(),
		ConfidenceScore: regexConfidence,
		SourceText:      groups[0],
	}, true
}
