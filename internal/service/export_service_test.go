package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type mockActivityReader struct {
	rows      []models.ModerationActivity
	lastLimit int
}

func (m *mockActivityReader) ListActivity(ctx context.Context, limit int) ([]models.ModerationActivity, error) {
	m.lastLimit = limit
	return m.rows, nil
}

func sampleActivity() []models.ModerationActivity {
	comments := "blurry scan"
	return []models.ModerationActivity{
		{DocumentID: 7, DocumentTitle: "calculus notes", Action: "approve", ActorID: 42, OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{DocumentID: 9, DocumentTitle: "old exam", Action: "deny", ActorID: 42, Comments: &comments, OccurredAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
	}
}

func TestExportModerationActivityCSV(t *testing.T) {
	reader := &mockActivityReader{rows: sampleActivity()}
	svc := NewExportService(reader, 5000, zap.NewNop())

	result, err := svc.ModerationActivity(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	assert.Equal(t, 5000, reader.lastLimit)

	content := string(result.Data)
	assert.Contains(t, content, "Document ID")
	assert.Contains(t, content, "calculus notes")
	assert.Contains(t, content, "blurry scan")
	assert.Contains(t, content, "2026-03-02T09:30:00Z")
}

func TestExportModerationActivityPDF(t *testing.T) {
	svc := NewExportService(&mockActivityReader{rows: sampleActivity()}, 100, zap.NewNop())

	result, err := svc.ModerationActivity(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportModerationActivityRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockActivityReader{}, 100, zap.NewNop())

	_, err := svc.ModerationActivity(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportModerationActivityEmptyHistory(t *testing.T) {
	svc := NewExportService(&mockActivityReader{}, 100, zap.NewNop())

	result, err := svc.ModerationActivity(context.Background(), "csv")
	require.NoError(t, err)
	content := string(result.Data)
	assert.Contains(t, content, "Document ID")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(content), "\n")+1)
}
