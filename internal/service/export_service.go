package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
	"github.com/unidocs/unidocs-api/pkg/export"
)

type activityReader interface {
	ListActivity(ctx context.Context, limit int) ([]models.ModerationActivity, error)
}

// ExportResult is a rendered moderation-activity export.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the approval/denial history for admins as CSV or PDF.
type ExportService struct {
	activity activityReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	maxRows  int
	logger   *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(activity activityReader, maxRows int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		activity: activity,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		maxRows:  maxRows,
		logger:   logger,
	}
}

// ModerationActivity renders the flattened approval/denial history in the
// requested format.
func (s *ExportService) ModerationActivity(ctx context.Context, format string) (*ExportResult, error) {
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.activity.ListActivity(ctx, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load moderation activity")
	}

	dataset := export.Dataset{
		Headers: []string{"Document ID", "Title", "Action", "Moderator ID", "Comments", "Occurred At"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		comments := ""
		if row.Comments != nil {
			comments = *row.Comments
		}
		dataset.Rows = append(dataset.Rows, []string{
			fmt.Sprintf("%d", row.DocumentID),
			row.DocumentTitle,
			row.Action,
			fmt.Sprintf("%d", row.ActorID),
			comments,
			row.OccurredAt.UTC().Format(time.RFC3339),
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	if format == "pdf" {
		data, err := s.pdf.Render(dataset, "Moderation Activity")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("moderation-activity-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("moderation-activity-%s.csv", stamp),
		ContentType: "text/csv",
		Data:        data,
	}, nil
}
