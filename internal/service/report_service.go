package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type reportStore interface {
	ExistsForUser(ctx context.Context, q sqlx.ExtContext, documentID, reporterID int64) (bool, error)
	Create(ctx context.Context, q sqlx.ExtContext, report *models.Report) error
}

// ReportRequest describes a report submission payload.
type ReportRequest struct {
	Details  string                `json:"details" validate:"required"`
	Severity models.ReportSeverity `json:"severity" validate:"required"`
}

// ReportService validates and records reports, then routes the
// severity-specific side effect. The report row, the existence checks and the
// status change all commit or roll back together.
type ReportService struct {
	tx        txRunner
	docs      documentGuardStore
	reports   reportStore
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(tx txRunner, docs documentGuardStore, reports reportStore, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{tx: tx, docs: docs, reports: reports, cache: cache, validator: validate, logger: logger}
}

// ReportDocument records a report against an approved document and applies
// the severity effect: minor leaves the document available, moderate pulls it
// into the reported state for moderator review, severe bans it outright. The
// report row is persisted for every tier, severe included, so the audit trail
// survives the ban.
func (s *ReportService) ReportDocument(ctx context.Context, documentID, reporterID int64, req ReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	if !req.Severity.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "severity must be minor, moderate or severe")
	}

	report := &models.Report{
		DocumentID: documentID,
		ReporterID: reporterID,
		Details:    req.Details,
		Severity:   req.Severity,
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
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

		exists, err := s.reports.ExistsForUser(ctx, tx, documentID, reporterID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing reports")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "document already reported by this user")
		}

		if err := s.reports.Create(ctx, tx, report); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) {
				return appErr
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record report")
		}

		switch req.Severity {
		case models.ReportSeverityModerate:
			if err := s.docs.UpdateStatus(ctx, tx, documentID, models.DocumentStatusReported); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag document")
			}
		case models.ReportSeveritySevere:
			if err := s.docs.UpdateStatus(ctx, tx, documentID, models.DocumentStatusBanned); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ban document")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "documents:*"); err != nil {
			s.logger.Warn("failed to invalidate document cache", zap.Error(err))
		}
	}
	s.logger.Info("document reported",
		zap.Int64("document_id", documentID),
		zap.Int64("reporter_id", reporterID),
		zap.String("severity", string(req.Severity)),
	)
	return report, nil
}
