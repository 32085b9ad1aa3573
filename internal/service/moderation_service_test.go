package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type stubTxRunner struct {
	beginErr error
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(nil)
}

type mockDocumentStore struct {
	doc           *models.Document
	getErr        error
	statusUpdates []models.DocumentStatus
	updateErr     error
}

func (m *mockDocumentStore) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.doc, nil
}

func (m *mockDocumentStore) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status models.DocumentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

type mockRecordStore struct {
	approvalExists bool
	approvals      []*models.ApprovalRecord
	denials        []*models.DenialRecord
	queueDeletes   int
}

func (m *mockRecordStore) ExistsApproval(ctx context.Context, q sqlx.ExtContext, documentID int64) (bool, error) {
	return m.approvalExists, nil
}

func (m *mockRecordStore) CreateApproval(ctx context.Context, q sqlx.ExtContext, record *models.ApprovalRecord) error {
	m.approvals = append(m.approvals, record)
	return nil
}

func (m *mockRecordStore) CreateDenial(ctx context.Context, q sqlx.ExtContext, record *models.DenialRecord) error {
	m.denials = append(m.denials, record)
	return nil
}

func (m *mockRecordStore) DeleteQueueEntry(ctx context.Context, q sqlx.ExtContext, documentID int64) error {
	m.queueDeletes++
	return nil
}

type spyCache struct {
	patterns []string
}

func (s *spyCache) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func pendingDocument() *models.Document {
	return &models.Document{ID: 7, UploaderID: 3, Status: models.DocumentStatusPending, Title: "calculus notes"}
}

func TestModerateDocumentApprovesPending(t *testing.T) {
	docs := &mockDocumentStore{doc: pendingDocument()}
	records := &mockRecordStore{}
	cache := &spyCache{}
	svc := NewModerationService(&stubTxRunner{}, docs, records, cache, zap.NewNop())

	msg, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{Action: models.ModerationActionApprove})
	require.NoError(t, err)
	assert.Equal(t, "document approved", msg)
	require.Len(t, docs.statusUpdates, 1)
	assert.Equal(t, models.DocumentStatusApproved, docs.statusUpdates[0])
	require.Len(t, records.approvals, 1)
	assert.Equal(t, int64(42), records.approvals[0].ApprovedBy)
	assert.Equal(t, 1, records.queueDeletes)
	assert.Equal(t, []string{"documents:*"}, cache.patterns)
}

func TestModerateDocumentApproveIsIdempotentOnExistingRecord(t *testing.T) {
	docs := &mockDocumentStore{doc: pendingDocument()}
	records := &mockRecordStore{approvalExists: true}
	svc := NewModerationService(&stubTxRunner{}, docs, records, &spyCache{}, zap.NewNop())

	msg, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{Action: models.ModerationActionApprove})
	require.NoError(t, err)
	assert.Equal(t, "document approved", msg)
	assert.Empty(t, docs.statusUpdates)
	assert.Empty(t, records.approvals)
}

func TestModerateDocumentDeniesWithComments(t *testing.T) {
	docs := &mockDocumentStore{doc: pendingDocument()}
	records := &mockRecordStore{}
	svc := NewModerationService(&stubTxRunner{}, docs, records, &spyCache{}, zap.NewNop())

	msg, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{
		Action:   models.ModerationActionDisapprove,
		Comments: "wrong module",
	})
	require.NoError(t, err)
	assert.Equal(t, "document denied", msg)
	require.Len(t, docs.statusUpdates, 1)
	assert.Equal(t, models.DocumentStatusDenied, docs.statusUpdates[0])
	require.Len(t, records.denials, 1)
	assert.Equal(t, "wrong module", records.denials[0].Comments)
	assert.Equal(t, 1, records.queueDeletes)
}

func TestModerateDocumentDisapprovalRequiresComments(t *testing.T) {
	svc := NewModerationService(&stubTxRunner{}, &mockDocumentStore{}, &mockRecordStore{}, nil, zap.NewNop())

	_, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{
		Action:   models.ModerationActionDisapprove,
		Comments: "   ",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestModerateDocumentRejectsUnknownAction(t *testing.T) {
	svc := NewModerationService(&stubTxRunner{}, &mockDocumentStore{}, &mockRecordStore{}, nil, zap.NewNop())

	_, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{Action: "archive"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestModerateDocumentNotFound(t *testing.T) {
	docs := &mockDocumentStore{getErr: sql.ErrNoRows}
	svc := NewModerationService(&stubTxRunner{}, docs, &mockRecordStore{}, nil, zap.NewNop())

	_, err := svc.ModerateDocument(context.Background(), 99, 42, ModerateRequest{Action: models.ModerationActionApprove})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestModerateDocumentTerminalStateGuards(t *testing.T) {
	for _, status := range []models.DocumentStatus{
		models.DocumentStatusApproved,
		models.DocumentStatusDenied,
		models.DocumentStatusBanned,
	} {
		t.Run(string(status), func(t *testing.T) {
			doc := pendingDocument()
			doc.Status = status
			docs := &mockDocumentStore{doc: doc}
			records := &mockRecordStore{}
			svc := NewModerationService(&stubTxRunner{}, docs, records, nil, zap.NewNop())

			_, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{Action: models.ModerationActionApprove})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
			assert.Empty(t, docs.statusUpdates)
			assert.Empty(t, records.approvals)
			assert.Empty(t, records.denials)
		})
	}
}

func TestModerateDocumentReportedCanStillBeModerated(t *testing.T) {
	doc := pendingDocument()
	doc.Status = models.DocumentStatusReported
	docs := &mockDocumentStore{doc: doc}
	svc := NewModerationService(&stubTxRunner{}, docs, &mockRecordStore{}, &spyCache{}, zap.NewNop())

	msg, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{
		Action:   models.ModerationActionDisapprove,
		Comments: "confirmed copyright violation",
	})
	require.NoError(t, err)
	assert.Equal(t, "document denied", msg)
}

func TestModerateDocumentSurfacesTransactionFailure(t *testing.T) {
	boom := appErrors.Clone(appErrors.ErrStoreUnavailable, "failed to open transaction")
	svc := NewModerationService(&stubTxRunner{beginErr: boom}, &mockDocumentStore{}, &mockRecordStore{}, nil, zap.NewNop())

	_, err := svc.ModerateDocument(context.Background(), 7, 42, ModerateRequest{Action: models.ModerationActionApprove})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}
