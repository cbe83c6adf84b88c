package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Open reports whether the task still occupies its document's processing
// slot. At most one open task may exist per document.
func (s TaskStatus) Open() bool {
	return s == TaskPending || s == TaskProcessing
}

// ProcessingTask is one asynchronous extraction run over a document.
// Lifecycle: pending -> processing -> completed | failed. Completion is
// independent of extraction quality; low quality is a property of the data.
type ProcessingTask struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"document_id"`
	Status           TaskStatus `gorm:"not null;default:'pending'" json:"status"`
	ProfileVersionID *uuid.UUID `gorm:"type:uuid" json:"profile_version_id,omitempty"`
	ErrorMessage     *string    `gorm:"type:text" json:"error_message,omitempty"`
	Attempts         int        `gorm:"not null;default:0" json:"attempts"`
	StartedAt        *time.Time `gorm:"type:timestamp" json:"started_at,omitempty"`
	FinishedAt       *time.Time `gorm:"type:timestamp" json:"finished_at,omitempty"`
	CreatedAt        time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProcessingTask) TableName() string {
	return "processing_tasks"
}
