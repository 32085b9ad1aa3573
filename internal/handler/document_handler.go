package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unidocs/unidocs-api/internal/models"
	"github.com/unidocs/unidocs-api/internal/service"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
	"github.com/unidocs/unidocs-api/pkg/response"
)

type documentService interface {
	List(ctx context.Context, claims *models.JWTClaims, filter models.DocumentFilter) ([]models.DocumentDetail, *models.Pagination, error)
	Get(ctx context.Context, claims *models.JWTClaims, id int64) (*service.DocumentView, error)
	Search(ctx context.Context, claims *models.JWTClaims, term string, page, pageSize int) ([]models.DocumentDetail, *models.Pagination, error)
}

// DocumentHandler exposes the document projection endpoints.
type DocumentHandler struct {
	documents documentService
}

// NewDocumentHandler constructs handler.
func NewDocumentHandler(documents documentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List godoc
// @Summary List documents visible to the caller
// @Tags Documents
// @Produce json
// @Param status query string false "Status filter (privileged callers only)"
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c, c.Query("status"))
	if !ok {
		return
	}
	docs, pagination, err := h.documents.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// ListByStatus godoc
// @Summary List documents in a given status
// @Tags Documents
// @Produce json
// @Param status path string true "Document status" Enums(pending, approved, denied, reported, banned)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /moderation/documents/status/{status} [get]
func (h *DocumentHandler) ListByStatus(c *gin.Context) {
	filter, ok := h.bindFilter(c, c.Param("status"))
	if !ok {
		return
	}
	if filter.Status == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document status"))
		return
	}
	docs, pagination, err := h.documents.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Get godoc
// @Summary Fetch a single document
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document id"))
		return
	}
	view, err := h.documents.Get(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Search godoc
// @Summary Search documents
// @Tags Documents
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents/search [get]
func (h *DocumentHandler) Search(c *gin.Context) {
	docs, pagination, err := h.documents.Search(c.Request.Context(), claimsFromContext(c), c.Query("q"), intQuery(c, "page"), intQuery(c, "page_size"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

func (h *DocumentHandler) bindFilter(c *gin.Context, statusValue string) (models.DocumentFilter, bool) {
	filter := models.DocumentFilter{
		Search:   c.Query("search"),
		Page:     intQuery(c, "page"),
		PageSize: intQuery(c, "page_size"),
	}
	if statusValue != "" {
		status := models.DocumentStatus(statusValue)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document status"))
			return filter, false
		}
		filter.Status = &status
	}
	return filter, true
}
