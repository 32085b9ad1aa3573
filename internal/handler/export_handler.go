package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unidocs/unidocs-api/internal/service"
	"github.com/unidocs/unidocs-api/pkg/response"
)

type exportService interface {
	ModerationActivity(ctx context.Context, format string) (*service.ExportResult, error)
}

// ExportHandler exposes the moderation activity export endpoint.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ModerationActivity godoc
// @Summary Export moderation activity
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Router /moderation/export [get]
func (h *ExportHandler) ModerationActivity(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	result, err := h.exports.ModerationActivity(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
