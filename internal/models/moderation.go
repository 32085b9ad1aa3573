package models

import "time"

// ModerationAction is the verb a moderator applies to a document.
type ModerationAction string

const (
	ModerationActionApprove    ModerationAction = "approve"
	ModerationActionDisapprove ModerationAction = "disapprove"
)

// Valid reports whether the action is recognised.
func (a ModerationAction) Valid() bool {
	return a == ModerationActionApprove || a == ModerationActionDisapprove
}

// ApprovalRecord is written exactly once, on first approval of a document.
type ApprovalRecord struct {
	ID         string    `db:"id" json:"id"`
	DocumentID int64     `db:"document_id" json:"document_id"`
	ApprovedBy int64     `db:"approved_by" json:"approved_by"`
	ApprovedAt time.Time `db:"approved_at" json:"approved_at"`
}

// DenialRecord is written once per denial and carries the mandatory
// moderator comments.
type DenialRecord struct {
	ID         string    `db:"id" json:"id"`
	DocumentID int64     `db:"document_id" json:"document_id"`
	DeniedBy   int64     `db:"denied_by" json:"denied_by"`
	Comments   string    `db:"comments" json:"comments"`
	DeniedAt   time.Time `db:"denied_at" json:"denied_at"`
}

// ModerationActivity is a flattened approval/denial row used by the
// admin export.
type ModerationActivity struct {
	DocumentID    int64     `db:"document_id"`
	DocumentTitle string    `db:"document_title"`
	Action        string    `db:"action"`
	ActorID       int64     `db:"actor_id"`
	Comments      *string   `db:"comments"`
	OccurredAt    time.Time `db:"occurred_at"`
}
