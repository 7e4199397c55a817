package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"syllabus_calendar/internal/models"
)

type SyllabusStorage struct {
	db  DB
	now func() time.Time
}

func NewSyllabusStorage(db DB) *SyllabusStorage {
	return &SyllabusStorage{
		db:  db,
		now: time.Now,
	}
}

// GetSyllabus loads a syllabus that belongs to classID.
func (ss *SyllabusStorage) GetSyllabus(ctx context.Context, id, classID string) (models.Syllabus, error) {
	op := "internal/storage/syllabus.go GetSyllabus"

	sql_query := `
	SELECT id, class_id, content_text, processing_status, processing_error
	FROM syllabi
	WHERE id = $1 AND class_id = $2;
	`

	var syllabus models.Syllabus
	var status string

	err := ss.db.QueryRow(ctx, sql_query, id, classID).Scan(
		&syllabus.ID,
		&syllabus.ClassID,
		&syllabus.ContentText,
		&status,
		&syllabus.ProcessingError,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Syllabus{}, fmt.Errorf("syllabus %s in %s: %w", id, op, ErrNotFound)
	}
	if err != nil {
		return models.Syllabus{}, fmt.Errorf("failure to get syllabus in %s: %w", op, err)
	}

	syllabus.ProcessingStatus = models.ProcessingStatus(status)
	return syllabus, nil
}

// BeginProcessing flips the syllabus to processing unless a run already holds it.
func (ss *SyllabusStorage) BeginProcessing(ctx context.Context, id string) error {
	op := "internal/storage/syllabus.go BeginProcessing"

	sql_query := `
	UPDATE syllabi
	SET processing_status = $2, processing_error = NULL, updated_at = $3
	WHERE id = $1 AND processing_status <> $2;
	`

	tag, err := ss.db.Exec(ctx, sql_query, id, string(models.StatusProcessing), ss.now())
	if err != nil {
		return fmt.Errorf("failure to lock syllabus in %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("syllabus %s in %s: %w", id, op, ErrAlreadyProcessing)
	}
	return nil
}

// FinishProcessing records the final status. errMsg is stored only for failed runs.
func (ss *SyllabusStorage) FinishProcessing(ctx context.Context, id string, status models.ProcessingStatus, errMsg *string) error {
	op := "internal/storage/syllabus.go FinishProcessing"

	sql_query := `
	UPDATE syllabi
	SET processing_status = $2, processing_error = $3, updated_at = $4
	WHERE id = $1;
	`

	if status != models.StatusFailed {
		errMsg = nil
	}

	tag, err := ss.db.Exec(ctx, sql_query, id, string(status), errMsg, ss.now())
	if err != nil {
		return fmt.Errorf("failure to update syllabus status in %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("syllabus %s in %s: %w", id, op, ErrNotFound)
	}
	return nil
}
