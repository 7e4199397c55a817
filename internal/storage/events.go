package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"syllabus_calendar/internal/models"
)

var eventColumns = []string{
	"id", "syllabus_id", "class_id", "user_id", "title", "description", "event_type",
	"due_date::text", "to_char(due_time, 'HH24:MI')", "confidence_score", "source_text",
	"extraction_method", "is_exported", "exported_at", "ics_uid", "created_at", "updated_at",
}

var eventColumnsSQL = strings.Join(eventColumns, ", ")

// EventOwner says whose calendar a batch of extracted events belongs to.
type EventOwner struct {
	SyllabusID *string
	ClassID    string
	UserID     string
}

type EventStorage struct {
	db  DB
	now func() time.Time
}

func NewEventStorage(db DB) *EventStorage {
	return &EventStorage{
		db:  db,
		now: time.Now,
	}
}

// InsertEvents stores a batch in one transaction and returns the stored rows.
func (es *EventStorage) InsertEvents(
	ctx context.Context,
	owner EventOwner,
	method models.ExtractionMethod,
	events []models.ExtractedEvent,
) ([]models.CalendarEvent, error) {
	op := "internal/storage/events.go InsertEvents"

	stored := make([]models.CalendarEvent, 0, len(events))
	if len(events) == 0 {
		return stored, nil
	}

	sql_query := `
	INSERT INTO calendar_events
	(id, syllabus_id, class_id, user_id, title, description, event_type, due_date, due_time,
	confidence_score, source_text, extraction_method, is_exported, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9::time, $10, $11, $12, false, $13, $13);
	`

	tx, err := es.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failure to begin transaction in %s: %w", op, err)
	}

	now := es.now()
	methodName := string(method)
	for _, event := range events {
		score := event.ConfidenceScore
		source := event.SourceText
		row := models.CalendarEvent{
			ID:               uuid.NewString(),
			SyllabusID:       owner.SyllabusID,
			ClassID:          owner.ClassID,
			UserID:           owner.UserID,
			Title:            event.Title,
			Description:      event.Description,
			EventType:        event.EventType,
			DueDate:          event.DueDate,
			DueTime:          event.DueTime,
			ConfidenceScore:  &score,
			SourceText:       &source,
			ExtractionMethod: &methodName,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		_, err := tx.Exec(
			ctx,
			sql_query,
			row.ID,
			row.SyllabusID,
			row.ClassID,
			row.UserID,
			row.Title,
			row.Description,
			string(row.EventType),
			row.DueDate,
			row.DueTime,
			row.ConfidenceScore,
			row.SourceText,
			row.ExtractionMethod,
			now,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("failure to insert event %q in %s: %w", row.Title, op, err)
		}
		stored = append(stored, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failure to commit events in %s: %w", op, err)
	}
	return stored, nil
}

// ListEvents returns a user's events ordered by due date, then due time.
func (es *EventStorage) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	op := "internal/storage/events.go ListEvents"

	sb := squirrel.Select(eventColumns...).
		From("calendar_events").
		Where(squirrel.Eq{"user_id": filter.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	if filter.ClassID != "" {
		sb = sb.Where(squirrel.Eq{"class_id": filter.ClassID})
	}
	if filter.EventType != "" {
		sb = sb.Where(squirrel.Eq{"event_type": string(filter.EventType)})
	}
	if filter.StartDate != "" {
		sb = sb.Where("due_date >= ?::date", filter.StartDate)
	}
	if filter.EndDate != "" {
		sb = sb.Where("due_date <= ?::date", filter.EndDate)
	}
	if filter.OnlyUnexported {
		sb = sb.Where(squirrel.Eq{"is_exported": false})
	}
	sb = sb.OrderBy("due_date ASC", "due_time ASC NULLS LAST", "created_at ASC")

	sql_query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failure to build query in %s: %w", op, err)
	}

	rows, err := es.db.Query(ctx, sql_query, args...)
	if err != nil {
		return nil, fmt.Errorf("failure to get events in %s: %w", op, err)
	}
	defer rows.Close()

	events := []models.CalendarEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failure to scan events in %s: %w", op, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failure to read events in %s: %w", op, err)
	}

	return events, nil
}

// UpdateEvent applies the non-nil fields of patch. An empty DueTime clears the time.
func (es *EventStorage) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.CalendarEvent, error) {
	op := "internal/storage/events.go UpdateEvent"

	ub := squirrel.Update("calendar_events").
		Set("updated_at", es.now()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + eventColumnsSQL).
		PlaceholderFormat(squirrel.Dollar)

	if patch.Title != nil {
		ub = ub.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		ub = ub.Set("description", *patch.Description)
	}
	if patch.EventType != nil {
		ub = ub.Set("event_type", string(*patch.EventType))
	}
	if patch.DueDate != nil {
		ub = ub.Set("due_date", squirrel.Expr("?::date", *patch.DueDate))
	}
	if patch.DueTime != nil {
		if *patch.DueTime == "" {
			ub = ub.Set("due_time", nil)
		} else {
			ub = ub.Set("due_time", squirrel.Expr("?::time", *patch.DueTime))
		}
	}

	sql_query, args, err := ub.ToSql()
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("failure to build query in %s: %w", op, err)
	}

	event, err := scanEvent(es.db.QueryRow(ctx, sql_query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CalendarEvent{}, fmt.Errorf("event %s in %s: %w", id, op, ErrNotFound)
	}
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("failure to update event in %s: %w", op, err)
	}
	return event, nil
}

// DeleteBySyllabus removes every event extracted from a syllabus and reports how many went.
func (es *EventStorage) DeleteBySyllabus(ctx context.Context, syllabusID string) (int64, error) {
	op := "internal/storage/events.go DeleteBySyllabus"

	sql_query := `DELETE FROM calendar_events WHERE syllabus_id = $1;`

	tag, err := es.db.Exec(ctx, sql_query, syllabusID)
	if err != nil {
		return 0, fmt.Errorf("failure to delete events in %s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

// MarkExported records that an event was pushed to an external calendar under uid.
func (es *EventStorage) MarkExported(ctx context.Context, id, uid string) error {
	op := "internal/storage/events.go MarkExported"

	sql_query := `
	UPDATE calendar_events
	SET is_exported = true, exported_at = $2, ics_uid = $3, updated_at = $2
	WHERE id = $1;
	`

	tag, err := es.db.Exec(ctx, sql_query, id, es.now(), uid)
	if err != nil {
		return fmt.Errorf("failure to mark event exported in %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s in %s: %w", id, op, ErrNotFound)
	}
	return nil
}

func scanEvent(row pgx.Row) (models.CalendarEvent, error) {
	var event models.CalendarEvent
	var eventType string

	err := row.Scan(
		&event.ID,
		&event.SyllabusID,
		&event.ClassID,
		&event.UserID,
		&event.Title,
		&event.Description,
		&eventType,
		&event.DueDate,
		&event.DueTime,
		&event.ConfidenceScore,
		&event.SourceText,
		&event.ExtractionMethod,
		&event.IsExported,
		&event.ExportedAt,
		&event.ICSUID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return models.CalendarEvent{}, err
	}

	event.EventType = models.EventType(eventType)
	return event, nil
}
