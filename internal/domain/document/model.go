// Package document tracks ingested statement files and their processing
// lifecycle: pending -> processing -> completed | error.
package document

import (
	"time"

	"github.com/google/uuid"
)

// Status is a document's processing state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Document is one ingested statement file. Content holds the raw bytes only
// while the document is in flight; ContentHash is the durable identity used
// for whole-file dedup. A terminal status is set exactly once per processing
// attempt.
type Document struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Content          []byte     `json:"-"`
	ContentHash      string     `json:"content_hash"`
	Status           Status     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	TransactionCount int        `json:"transaction_count"`
	FileNameDate     *time.Time `json:"file_name_date,omitempty"`
	PeriodStart      *time.Time `json:"period_start,omitempty"`
	PeriodEnd        *time.Time `json:"period_end,omitempty"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}
