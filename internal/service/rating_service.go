package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type ratingStore interface {
	Exists(ctx context.Context, q sqlx.ExtContext, documentID, userID int64) (bool, error)
	Create(ctx context.Context, q sqlx.ExtContext, rating *models.Rating) error
	Update(ctx context.Context, q sqlx.ExtContext, documentID, userID int64, value float64) (int64, error)
	Delete(ctx context.Context, q sqlx.ExtContext, documentID, userID int64) (int64, error)
	RecomputeAggregate(ctx context.Context, q sqlx.ExtContext, documentID int64) error
	GetAggregate(ctx context.Context, documentID int64) (*models.RatingAggregate, error)
}

type faqRatingStore interface {
	List(ctx context.Context) ([]models.FAQDetail, error)
	GetForUpdate(ctx context.Context, q sqlx.ExtContext, id int64) (*models.FAQ, error)
	ExistsRating(ctx context.Context, q sqlx.ExtContext, faqID, userID int64) (bool, error)
	CreateRating(ctx context.Context, q sqlx.ExtContext, rating *models.FAQRating) error
	DeleteRating(ctx context.Context, q sqlx.ExtContext, faqID, userID int64) (int64, error)
	RecomputeAggregate(ctx context.Context, q sqlx.ExtContext, faqID int64) error
	GetAggregate(ctx context.Context, faqID int64) (*models.FAQRatingAggregate, error)
}

// RatingRequest carries the rating value for submit and update.
type RatingRequest struct {
	Value float64 `json:"value"`
}

// RatingService maintains per-user ratings and their derived aggregates. Each
// mutation locks the target row, mutates the rating set and rescans it into
// the aggregate within one transaction, so the aggregate always reflects
// exactly the live rating rows.
//
// Duplicate submissions are rejected rather than silently updated; re-rating
// is the explicit update path.
type RatingService struct {
	tx      txRunner
	docs    documentGuardStore
	ratings ratingStore
	faqs    faqRatingStore
	cache   cacheInvalidator
	logger  *zap.Logger
}

// NewRatingService constructs RatingService.
func NewRatingService(tx txRunner, docs documentGuardStore, ratings ratingStore, faqs faqRatingStore, cache cacheInvalidator, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{tx: tx, docs: docs, ratings: ratings, faqs: faqs, cache: cache, logger: logger}
}

// SubmitRating records a first rating for (document, user) and recomputes the
// aggregate. Only approved documents accept ratings.
func (s *RatingService) SubmitRating(ctx context.Context, documentID, userID int64, value float64) (*models.RatingAggregate, error) {
	if err := validateRatingValue(value); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockRateableDocument(ctx, tx, documentID); err != nil {
			return err
		}

		exists, err := s.ratings.Exists(ctx, tx, documentID, userID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing rating")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "document already rated by this user")
		}

		rating := &models.Rating{DocumentID: documentID, UserID: userID, Value: value}
		if err := s.ratings.Create(ctx, tx, rating); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) {
				return appErr
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record rating")
		}
		return s.recompute(ctx, tx, documentID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProjections(ctx)
	return s.currentAggregate(ctx, documentID)
}

// UpdateRating overwrites an existing rating in place and recomputes the
// aggregate.
func (s *RatingService) UpdateRating(ctx context.Context, documentID, userID int64, value float64) (*models.RatingAggregate, error) {
	if err := validateRatingValue(value); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockDocument(ctx, tx, documentID); err != nil {
			return err
		}

		affected, err := s.ratings.Update(ctx, tx, documentID, userID, value)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rating")
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "rating not found")
		}
		return s.recompute(ctx, tx, documentID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProjections(ctx)
	return s.currentAggregate(ctx, documentID)
}

// DeleteRating removes a rating. When the last rating for the document goes,
// the aggregate row goes with it.
func (s *RatingService) DeleteRating(ctx context.Context, documentID, userID int64) error {
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockDocument(ctx, tx, documentID); err != nil {
			return err
		}

		affected, err := s.ratings.Delete(ctx, tx, documentID, userID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rating")
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "rating not found")
		}
		return s.recompute(ctx, tx, documentID)
	})
	if err != nil {
		return err
	}

	s.invalidateProjections(ctx)
	return nil
}

// SubmitFAQRating records a helpfulness rating for an FAQ entry, maintaining
// the FAQ aggregate (mean plus count) the same way.
func (s *RatingService) SubmitFAQRating(ctx context.Context, faqID, userID int64, value float64) (*models.FAQRatingAggregate, error) {
	if err := validateRatingValue(value); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.faqs.GetForUpdate(ctx, tx, faqID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "faq not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faq")
		}

		exists, err := s.faqs.ExistsRating(ctx, tx, faqID, userID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing rating")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "faq already rated by this user")
		}

		rating := &models.FAQRating{FAQID: faqID, UserID: userID, Value: value}
		if err := s.faqs.CreateRating(ctx, tx, rating); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) {
				return appErr
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record rating")
		}
		if err := s.faqs.RecomputeAggregate(ctx, tx, faqID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute faq aggregate")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	agg, err := s.faqs.GetAggregate(ctx, faqID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faq aggregate")
	}
	return agg, nil
}

// ListFAQs returns FAQ entries with their helpfulness aggregates.
func (s *RatingService) ListFAQs(ctx context.Context) ([]models.FAQDetail, error) {
	faqs, err := s.faqs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faqs")
	}
	return faqs, nil
}

// DeleteFAQRating removes an FAQ rating and recomputes its aggregate.
func (s *RatingService) DeleteFAQRating(ctx context.Context, faqID, userID int64) error {
	return s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.faqs.GetForUpdate(ctx, tx, faqID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "faq not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faq")
		}

		affected, err := s.faqs.DeleteRating(ctx, tx, faqID, userID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rating")
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "rating not found")
		}
		if err := s.faqs.RecomputeAggregate(ctx, tx, faqID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute faq aggregate")
		}
		return nil
	})
}

func validateRatingValue(value float64) error {
	if value < 0 || value > 5 {
		return appErrors.Clone(appErrors.ErrValidation, "rating must be between 0 and 5")
	}
	return nil
}

// lockRateableDocument locks the document row and requires approved status;
// only live documents accumulate ratings.
func (s *RatingService) lockRateableDocument(ctx context.Context, tx *sqlx.Tx, documentID int64) error {
	doc, err := s.docs.GetForUpdate(ctx, tx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found or not approved")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.Status != models.DocumentStatusApproved {
		return appErrors.Clone(appErrors.ErrNotFound, "document not found or not approved")
	}
	return nil
}

// lockDocument locks the document row without a status requirement; existing
// ratings may still be amended or withdrawn after a status change.
func (s *RatingService) lockDocument(ctx context.Context, tx *sqlx.Tx, documentID int64) error {
	if _, err := s.docs.GetForUpdate(ctx, tx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return nil
}

func (s *RatingService) recompute(ctx context.Context, tx *sqlx.Tx, documentID int64) error {
	if err := s.ratings.RecomputeAggregate(ctx, tx, documentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute rating aggregate")
	}
	return nil
}

func (s *RatingService) currentAggregate(ctx context.Context, documentID int64) (*models.RatingAggregate, error) {
	agg, err := s.ratings.GetAggregate(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rating aggregate")
	}
	return agg, nil
}

func (s *RatingService) invalidateProjections(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "documents:*"); err != nil {
		s.logger.Warn("failed to invalidate document cache", zap.Error(err))
	}
}
