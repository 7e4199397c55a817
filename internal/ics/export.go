package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"syllabus_calendar/internal/models"
)

const productName = "syllabus_calendar"

// Export renders events as an iCalendar feed. Events without a due time become
// all-day entries; timed ones are read as wall-clock time in loc and written in UTC.
func Export(events []models.CalendarEvent, calendarName string, now time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendarFor(productName)
	cal.SetMethod(ical.MethodPublish)
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	for _, event := range events {
		uid := uuid.NewString()
		if event.ICSUID != nil && *event.ICSUID != "" {
			uid = *event.ICSUID
		}

		vevent := cal.AddEvent(uid)
		vevent.SetDtStampTime(now)
		vevent.SetSummary(event.Title)

		description := event.Title
		if event.Description != nil && *event.Description != "" {
			description = *event.Description
		}
		vevent.SetDescription(description)
		vevent.AddProperty(ical.ComponentPropertyCategories, string(event.EventType))

		if event.DueTime == nil || *event.DueTime == "" {
			day, err := time.ParseInLocation(models.DateFormat, event.DueDate, loc)
			if err != nil {
				return "", fmt.Errorf("event %s: bad due date %q: %w", event.ID, event.DueDate, err)
			}
			vevent.SetAllDayStartAt(day)
			continue
		}

		start, err := time.ParseInLocation(models.DateFormat+" 15:04", event.DueDate+" "+*event.DueTime, loc)
		if err != nil {
			return "", fmt.Errorf("event %s: bad due time %q %q: %w", event.ID, event.DueDate, *event.DueTime, err)
		}
		vevent.SetStartAt(start)
	}

	return cal.Serialize(), nil
}
