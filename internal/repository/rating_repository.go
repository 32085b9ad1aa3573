package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

// RatingRepository persists per-user document ratings and keeps the derived
// aggregate row consistent with the raw rating rows.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository constructs the repository.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Exists checks for a rating by this user on this document inside the
// caller's transaction.
func (r *RatingRepository) Exists(ctx context.Context, q sqlx.ExtContext, documentID, userID int64) (bool, error) {
	const query = `SELECT 1 FROM ratings WHERE document_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, q, &exists, query, documentID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check rating: %w", err)
	}
	return true, nil
}

// Create inserts a rating row. The unique index on (document_id, user_id)
// backstops the existence check under concurrent submissions.
func (r *RatingRepository) Create(ctx context.Context, q sqlx.ExtContext, rating *models.Rating) error {
	now := time.Now().UTC()
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = now
	}
	rating.UpdatedAt = now
	const query = `INSERT INTO ratings (document_id, user_id, value, created_at, updated_at)
        VALUES (:document_id, :user_id, :value, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, rating); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "document already rated by this user")
		}
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

// Update overwrites the rating value in place, reporting how many rows
// matched.
func (r *RatingRepository) Update(ctx context.Context, q sqlx.ExtContext, documentID, userID int64, value float64) (int64, error) {
	const query = `UPDATE ratings SET value = $3, updated_at = NOW() WHERE document_id = $1 AND user_id = $2`
	result, err := q.ExecContext(ctx, query, documentID, userID, value)
	if err != nil {
		return 0, fmt.Errorf("update rating: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update rating rows: %w", err)
	}
	return affected, nil
}

// Delete removes the rating row, reporting how many rows matched.
func (r *RatingRepository) Delete(ctx context.Context, q sqlx.ExtContext, documentID, userID int64) (int64, error) {
	const query = `DELETE FROM ratings WHERE document_id = $1 AND user_id = $2`
	result, err := q.ExecContext(ctx, query, documentID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete rating: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete rating rows: %w", err)
	}
	return affected, nil
}

// RecomputeAggregate re-derives the aggregate from a full scan of the rating
// rows. A rescan beats an incremental running sum: it is exact and immune to
// drift across many small updates. With zero rows left the aggregate row is
// removed entirely.
func (r *RatingRepository) RecomputeAggregate(ctx context.Context, q sqlx.ExtContext, documentID int64) error {
	const scan = `SELECT COUNT(*) AS cnt, COALESCE(ROUND(AVG(value)::numeric, 2), 0) AS avg FROM ratings WHERE document_id = $1`
	var agg struct {
		Count   int     `db:"cnt"`
		Average float64 `db:"avg"`
	}
	if err := sqlx.GetContext(ctx, q, &agg, scan, documentID); err != nil {
		return fmt.Errorf("scan ratings: %w", err)
	}

	if agg.Count == 0 {
		const del = `DELETE FROM rating_aggregates WHERE document_id = $1`
		if _, err := q.ExecContext(ctx, del, documentID); err != nil {
			return fmt.Errorf("delete rating aggregate: %w", err)
		}
		return nil
	}

	const upsert = `INSERT INTO rating_aggregates (document_id, average) VALUES ($1, $2)
        ON CONFLICT (document_id) DO UPDATE SET average = EXCLUDED.average`
	if _, err := q.ExecContext(ctx, upsert, documentID, agg.Average); err != nil {
		return fmt.Errorf("upsert rating aggregate: %w", err)
	}
	return nil
}

// GetAggregate returns the current aggregate for a document.
func (r *RatingRepository) GetAggregate(ctx context.Context, documentID int64) (*models.RatingAggregate, error) {
	const query = `SELECT document_id, average FROM rating_aggregates WHERE document_id = $1`
	var agg models.RatingAggregate
	if err := r.db.GetContext(ctx, &agg, query, documentID); err != nil {
		return nil, err
	}
	return &agg, nil
}
