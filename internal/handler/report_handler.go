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

type reportService interface {
	ReportDocument(ctx context.Context, documentID, reporterID int64, req service.ReportRequest) (*models.Report, error)
}

// ReportHandler exposes the report submission endpoint.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Report godoc
// @Summary Report a document
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body service.ReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /documents/{id}/reports [post]
func (h *ReportHandler) Report(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document id"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	report, err := h.reports.ReportDocument(c.Request.Context(), id, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}
