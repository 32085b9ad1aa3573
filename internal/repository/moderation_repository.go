package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unidocs/unidocs-api/internal/models"
)

// ModerationRepository persists approval and denial records plus the pending
// moderation queue.
type ModerationRepository struct {
	db *sqlx.DB
}

// NewModerationRepository constructs the repository.
func NewModerationRepository(db *sqlx.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// ExistsApproval checks whether an approval record already exists for the
// document. Runs inside the caller's transaction.
func (r *ModerationRepository) ExistsApproval(ctx context.Context, q sqlx.ExtContext, documentID int64) (bool, error) {
	const query = `SELECT 1 FROM approval_records WHERE document_id = $1 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, q, &exists, query, documentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check approval record: %w", err)
	}
	return true, nil
}

// CreateApproval inserts the one-and-only approval record for a document.
func (r *ModerationRepository) CreateApproval(ctx context.Context, q sqlx.ExtContext, record *models.ApprovalRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ApprovedAt.IsZero() {
		record.ApprovedAt = time.Now().UTC()
	}
	const query = `INSERT INTO approval_records (id, document_id, approved_by, approved_at)
        VALUES (:id, :document_id, :approved_by, :approved_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, record); err != nil {
		return fmt.Errorf("create approval record: %w", err)
	}
	return nil
}

// CreateDenial inserts a denial record with the moderator's comments.
func (r *ModerationRepository) CreateDenial(ctx context.Context, q sqlx.ExtContext, record *models.DenialRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.DeniedAt.IsZero() {
		record.DeniedAt = time.Now().UTC()
	}
	const query = `INSERT INTO denial_records (id, document_id, denied_by, comments, denied_at)
        VALUES (:id, :document_id, :denied_by, :comments, :denied_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, record); err != nil {
		return fmt.Errorf("create denial record: %w", err)
	}
	return nil
}

// DeleteQueueEntry removes the pending moderation queue row for a document.
// Missing rows are not an error; the queue entry only exists for documents
// awaiting their first decision.
func (r *ModerationRepository) DeleteQueueEntry(ctx context.Context, q sqlx.ExtContext, documentID int64) error {
	const query = `DELETE FROM moderation_queue WHERE document_id = $1`
	if _, err := q.ExecContext(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete queue entry: %w", err)
	}
	return nil
}

// ListActivity returns the flattened approval/denial history, newest first.
func (r *ModerationRepository) ListActivity(ctx context.Context, limit int) ([]models.ModerationActivity, error) {
	if limit <= 0 {
		limit = 1000
	}
	const query = `SELECT * FROM (
        SELECT ar.document_id, d.title AS document_title, 'approve' AS action,
               ar.approved_by AS actor_id, NULL AS comments, ar.approved_at AS occurred_at
        FROM approval_records ar JOIN documents d ON d.id = ar.document_id
        UNION ALL
        SELECT dr.document_id, d.title AS document_title, 'disapprove' AS action,
               dr.denied_by AS actor_id, dr.comments, dr.denied_at AS occurred_at
        FROM denial_records dr JOIN documents d ON d.id = dr.document_id
        ) activity ORDER BY occurred_at DESC LIMIT $1`
	var rows []models.ModerationActivity
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list moderation activity: %w", err)
	}
	return rows, nil
}
