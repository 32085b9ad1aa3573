package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unidocs/unidocs-api/internal/models"
	"github.com/unidocs/unidocs-api/internal/service"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type documentServiceMock struct {
	docs       []models.DocumentDetail
	pagination *models.Pagination
	view       *service.DocumentView
	err        error
	lastFilter models.DocumentFilter
	lastTerm   string
	lastClaims *models.JWTClaims
}

func (m *documentServiceMock) List(ctx context.Context, claims *models.JWTClaims, filter models.DocumentFilter) ([]models.DocumentDetail, *models.Pagination, error) {
	m.lastClaims = claims
	m.lastFilter = filter
	return m.docs, m.pagination, m.err
}

func (m *documentServiceMock) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*service.DocumentView, error) {
	m.lastClaims = claims
	return m.view, m.err
}

func (m *documentServiceMock) Search(ctx context.Context, claims *models.JWTClaims, term string, page, pageSize int) ([]models.DocumentDetail, *models.Pagination, error) {
	m.lastClaims = claims
	m.lastTerm = term
	return m.docs, m.pagination, m.err
}

func TestDocumentHandlerList(t *testing.T) {
	mockSvc := &documentServiceMock{
		docs:       []models.DocumentDetail{{Document: models.Document{ID: 7, Title: "calculus notes", Status: models.DocumentStatusApproved}}},
		pagination: &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1},
	}
	h := NewDocumentHandler(mockSvc)

	c, w := newTestContext(t, http.MethodGet, "/documents?search=calculus&page=1&page_size=20", nil, nil)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "calculus", mockSvc.lastFilter.Search)
	assert.Nil(t, mockSvc.lastClaims)
	assert.Contains(t, w.Body.String(), "calculus notes")
}

func TestDocumentHandlerListRejectsUnknownStatus(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{})

	c, w := newTestContext(t, http.MethodGet, "/documents?status=archived", nil, nil)

	h.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerListByStatus(t *testing.T) {
	mockSvc := &documentServiceMock{pagination: &models.Pagination{Page: 1, PageSize: 20}}
	h := NewDocumentHandler(mockSvc)

	c, w := newTestContext(t, http.MethodGet, "/moderation/documents/status/pending", nil, &models.JWTClaims{UserID: 42, Role: models.RoleModerator})
	c.Params = gin.Params{{Key: "status", Value: "pending"}}

	h.ListByStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastFilter.Status)
	assert.Equal(t, models.DocumentStatusPending, *mockSvc.lastFilter.Status)
}

func TestDocumentHandlerGet(t *testing.T) {
	mockSvc := &documentServiceMock{view: &service.DocumentView{
		DocumentDetail: models.DocumentDetail{Document: models.Document{ID: 7, Title: "calculus notes"}},
	}}
	h := NewDocumentHandler(mockSvc)

	c, w := newTestContext(t, http.MethodGet, "/documents/7", nil, nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "calculus notes")
}

func TestDocumentHandlerGetNotFound(t *testing.T) {
	mockSvc := &documentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "document not found")}
	h := NewDocumentHandler(mockSvc)

	c, w := newTestContext(t, http.MethodGet, "/documents/99", nil, nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentHandlerSearch(t *testing.T) {
	mockSvc := &documentServiceMock{}
	h := NewDocumentHandler(mockSvc)

	c, w := newTestContext(t, http.MethodGet, "/documents/search?q=biology", nil, nil)

	h.Search(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "biology", mockSvc.lastTerm)
}

func TestDocumentHandlerSearchMissingTerm(t *testing.T) {
	mockSvc := &documentServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "search term is required")}
	h := NewDocumentHandler(mockSvc)

	c, w := newTestContext(t, http.MethodGet, "/documents/search", nil, nil)

	h.Search(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
