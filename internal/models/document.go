package models

import "time"

// DocumentStatus enumerates the moderation lifecycle states of a document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusDenied   DocumentStatus = "denied"
	DocumentStatusReported DocumentStatus = "reported"
	DocumentStatusBanned   DocumentStatus = "banned"
)

// Valid reports whether the status is one of the five lifecycle states.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusApproved, DocumentStatusDenied, DocumentStatusReported, DocumentStatusBanned:
		return true
	}
	return false
}

// Actionable reports whether a moderator may still act on the document.
// Approved, denied and banned are terminal for moderation.
func (s DocumentStatus) Actionable() bool {
	return s == DocumentStatusPending || s == DocumentStatusReported
}

// Document represents an uploaded artifact in the documents table.
type Document struct {
	ID          int64          `db:"id" json:"id"`
	UploaderID  int64          `db:"uploader_id" json:"uploader_id"`
	Status      DocumentStatus `db:"status" json:"status"`
	Module      string         `db:"module" json:"module"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	University  string         `db:"university" json:"university"`
	Category    string         `db:"category" json:"category"`
	Year        int            `db:"year" json:"year"`
	Author      string         `db:"author" json:"author"`
	FileName    string         `db:"file_name" json:"file_name"`
	FilePath    string         `db:"file_path" json:"-"`
	FileSize    int64          `db:"file_size" json:"file_size"`
	MimeType    string         `db:"mime_type" json:"mime_type"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentDetail joins a document with its moderation metadata for
// read-side views.
type DocumentDetail struct {
	Document
	ApprovedAt     *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	DeniedAt       *time.Time `db:"denied_at" json:"denied_at,omitempty"`
	DenialComments *string    `db:"denial_comments" json:"denial_comments,omitempty"`
	AverageRating  *float64   `db:"average_rating" json:"average_rating,omitempty"`
	ReportCount    int        `db:"report_count" json:"report_count,omitempty"`
}

// DocumentFilter captures listing criteria for the projection layer.
type DocumentFilter struct {
	Status   *DocumentStatus
	Search   string
	Page     int
	PageSize int
}
