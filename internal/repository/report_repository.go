package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

// pqUniqueViolation is the Postgres error code for unique constraint hits.
const pqUniqueViolation = "23505"

// ReportRepository persists user reports against documents.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ExistsForUser checks whether this user already reported this document.
// Runs inside the caller's transaction; the unique index on
// (document_id, reporter_id) remains the backstop for the check-then-insert
// race.
func (r *ReportRepository) ExistsForUser(ctx context.Context, q sqlx.ExtContext, documentID, reporterID int64) (bool, error) {
	const query = `SELECT 1 FROM reports WHERE document_id = $1 AND reporter_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, q, &exists, query, documentID, reporterID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check report: %w", err)
	}
	return true, nil
}

// Create inserts a report row. A unique-index violation surfaces as Conflict
// so concurrent identical reports fail cleanly instead of double-counting.
func (r *ReportRepository) Create(ctx context.Context, q sqlx.ExtContext, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO reports (id, document_id, reporter_id, details, severity, created_at)
        VALUES (:id, :document_id, :reporter_id, :details, :severity, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, report); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "document already reported by this user")
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// ListByDocument returns all reports against a document with context,
// newest first. Moderator-facing.
func (r *ReportRepository) ListByDocument(ctx context.Context, documentID int64) ([]models.ReportDetail, error) {
	const query = `SELECT rp.id, rp.document_id, rp.reporter_id, rp.details, rp.severity, rp.created_at,
        d.title AS document_title, d.status AS document_status
        FROM reports rp JOIN documents d ON d.id = rp.document_id
        WHERE rp.document_id = $1 ORDER BY rp.created_at DESC`
	var reports []models.ReportDetail
	if err := r.db.SelectContext(ctx, &reports, query, documentID); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
