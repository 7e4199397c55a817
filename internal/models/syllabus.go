package models

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

type Syllabus struct {
	ID               string           `json:"id" db:"id"`
	ClassID          string           `json:"class_id" db:"class_id"`
	ContentText      *string          `json:"content_text" db:"content_text"`
	ProcessingStatus ProcessingStatus `json:"processing_status" db:"processing_status"`
	ProcessingError  *string          `json:"processing_error" db:"processing_error"`
}
