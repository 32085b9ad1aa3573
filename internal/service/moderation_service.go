package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type documentGuardStore interface {
	GetForUpdate(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Document, error)
	UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status models.DocumentStatus) error
}

type moderationRecordStore interface {
	ExistsApproval(ctx context.Context, q sqlx.ExtContext, documentID int64) (bool, error)
	CreateApproval(ctx context.Context, q sqlx.ExtContext, record *models.ApprovalRecord) error
	CreateDenial(ctx context.Context, q sqlx.ExtContext, record *models.DenialRecord) error
	DeleteQueueEntry(ctx context.Context, q sqlx.ExtContext, documentID int64) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ModerateRequest describes a moderation decision payload.
type ModerateRequest struct {
	Action   models.ModerationAction `json:"action"`
	Comments string                  `json:"comments"`
}

// ModerationService drives the document status state machine. Every decision
// runs inside one transaction: the guard read locks the document row, so two
// concurrent decisions on the same document serialize and the loser hits a
// terminal-state guard.
type ModerationService struct {
	tx      txRunner
	docs    documentGuardStore
	records moderationRecordStore
	cache   cacheInvalidator
	logger  *zap.Logger
}

// NewModerationService constructs ModerationService.
func NewModerationService(tx txRunner, docs documentGuardStore, records moderationRecordStore, cache cacheInvalidator, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{tx: tx, docs: docs, records: records, cache: cache, logger: logger}
}

// ModerateDocument applies an approve/disapprove decision to a document that
// is still pending or reported. Returns a human-readable result message.
func (s *ModerationService) ModerateDocument(ctx context.Context, documentID, actorID int64, req ModerateRequest) (string, error) {
	if !req.Action.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "action must be approve or disapprove")
	}
	if req.Action == models.ModerationActionDisapprove && strings.TrimSpace(req.Comments) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "disapproval requires comments")
	}

	var message string
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		doc, err := s.docs.GetForUpdate(ctx, tx, documentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "document not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
		}

		if !doc.Status.Actionable() {
			return terminalStateConflict(doc.Status)
		}

		if req.Action == models.ModerationActionApprove {
			exists, err := s.records.ExistsApproval(ctx, tx, documentID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check approval record")
			}
			if !exists {
				if err := s.docs.UpdateStatus(ctx, tx, documentID, models.DocumentStatusApproved); err != nil {
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve document")
				}
				record := &models.ApprovalRecord{DocumentID: documentID, ApprovedBy: actorID}
				if err := s.records.CreateApproval(ctx, tx, record); err != nil {
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record approval")
				}
				if err := s.records.DeleteQueueEntry(ctx, tx, documentID); err != nil {
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear moderation queue")
				}
			}
			message = "document approved"
			return nil
		}

		if err := s.docs.UpdateStatus(ctx, tx, documentID, models.DocumentStatusDenied); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deny document")
		}
		record := &models.DenialRecord{DocumentID: documentID, DeniedBy: actorID, Comments: req.Comments}
		if err := s.records.CreateDenial(ctx, tx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record denial")
		}
		if err := s.records.DeleteQueueEntry(ctx, tx, documentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear moderation queue")
		}
		message = "document denied"
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invalidateProjections(ctx)
	s.logger.Info("document moderated",
		zap.Int64("document_id", documentID),
		zap.Int64("actor_id", actorID),
		zap.String("action", string(req.Action)),
	)
	return message, nil
}

func terminalStateConflict(status models.DocumentStatus) error {
	switch status {
	case models.DocumentStatusApproved:
		return appErrors.Clone(appErrors.ErrConflict, "document already approved, cannot re-moderate")
	case models.DocumentStatusDenied:
		return appErrors.Clone(appErrors.ErrConflict, "document already denied")
	default:
		return appErrors.Clone(appErrors.ErrConflict, "document is banned")
	}
}

func (s *ModerationService) invalidateProjections(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "documents:*"); err != nil {
		s.logger.Warn("failed to invalidate document cache", zap.Error(err))
	}
}
