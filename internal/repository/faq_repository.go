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

// FAQRepository persists FAQ entries and their helpfulness ratings. The FAQ
// aggregate mirrors the document one but also carries a count.
type FAQRepository struct {
	db *sqlx.DB
}

// NewFAQRepository constructs the repository.
func NewFAQRepository(db *sqlx.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// List returns all FAQ entries with their current aggregates.
func (r *FAQRepository) List(ctx context.Context) ([]models.FAQDetail, error) {
	const query = `SELECT f.id, f.question, f.answer, f.created_at, fa.average, fa.rating_count
        FROM faqs f LEFT JOIN faq_rating_aggregates fa ON fa.faq_id = f.id ORDER BY f.id`
	var faqs []models.FAQDetail
	if err := r.db.SelectContext(ctx, &faqs, query); err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return faqs, nil
}

// GetForUpdate reads an FAQ inside the caller's transaction and locks its row,
// serializing concurrent aggregate recomputation.
func (r *FAQRepository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id int64) (*models.FAQ, error) {
	const query = `SELECT id, question, answer, created_at FROM faqs WHERE id = $1 FOR UPDATE`
	var faq models.FAQ
	if err := sqlx.GetContext(ctx, q, &faq, query, id); err != nil {
		return nil, err
	}
	return &faq, nil
}

// CreateRating inserts an FAQ rating row.
func (r *FAQRepository) CreateRating(ctx context.Context, q sqlx.ExtContext, rating *models.FAQRating) error {
	now := time.Now().UTC()
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = now
	}
	rating.UpdatedAt = now
	const query = `INSERT INTO faq_ratings (faq_id, user_id, value, created_at, updated_at)
        VALUES (:faq_id, :user_id, :value, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, rating); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "faq already rated by this user")
		}
		return fmt.Errorf("create faq rating: %w", err)
	}
	return nil
}

// ExistsRating checks for an FAQ rating by this user inside the caller's
// transaction.
func (r *FAQRepository) ExistsRating(ctx context.Context, q sqlx.ExtContext, faqID, userID int64) (bool, error) {
	const query = `SELECT 1 FROM faq_ratings WHERE faq_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, q, &exists, query, faqID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check faq rating: %w", err)
	}
	return true, nil
}

// DeleteRating removes the FAQ rating row, reporting how many rows matched.
func (r *FAQRepository) DeleteRating(ctx context.Context, q sqlx.ExtContext, faqID, userID int64) (int64, error) {
	const query = `DELETE FROM faq_ratings WHERE faq_id = $1 AND user_id = $2`
	result, err := q.ExecContext(ctx, query, faqID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete faq rating: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete faq rating rows: %w", err)
	}
	return affected, nil
}

// RecomputeAggregate mirrors the document aggregate rescan for FAQ targets,
// keeping mean and count in one row and deleting it when no ratings remain.
func (r *FAQRepository) RecomputeAggregate(ctx context.Context, q sqlx.ExtContext, faqID int64) error {
	const scan = `SELECT COUNT(*) AS cnt, COALESCE(ROUND(AVG(value)::numeric, 2), 0) AS avg FROM faq_ratings WHERE faq_id = $1`
	var agg struct {
		Count   int     `db:"cnt"`
		Average float64 `db:"avg"`
	}
	if err := sqlx.GetContext(ctx, q, &agg, scan, faqID); err != nil {
		return fmt.Errorf("scan faq ratings: %w", err)
	}

	if agg.Count == 0 {
		const del = `DELETE FROM faq_rating_aggregates WHERE faq_id = $1`
		if _, err := q.ExecContext(ctx, del, faqID); err != nil {
			return fmt.Errorf("delete faq rating aggregate: %w", err)
		}
		return nil
	}

	const upsert = `INSERT INTO faq_rating_aggregates (faq_id, average, rating_count) VALUES ($1, $2, $3)
        ON CONFLICT (faq_id) DO UPDATE SET average = EXCLUDED.average, rating_count = EXCLUDED.rating_count`
	if _, err := q.ExecContext(ctx, upsert, faqID, agg.Average, agg.Count); err != nil {
		return fmt.Errorf("upsert faq rating aggregate: %w", err)
	}
	return nil
}

// GetAggregate returns the current FAQ aggregate.
func (r *FAQRepository) GetAggregate(ctx context.Context, faqID int64) (*models.FAQRatingAggregate, error) {
	const query = `SELECT faq_id, average, rating_count FROM faq_rating_aggregates WHERE faq_id = $1`
	var agg models.FAQRatingAggregate
	if err := r.db.GetContext(ctx, &agg, query, faqID); err != nil {
		return nil, err
	}
	return &agg, nil
}
