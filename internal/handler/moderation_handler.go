package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unidocs/unidocs-api/internal/service"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
	"github.com/unidocs/unidocs-api/pkg/response"
)

type moderationService interface {
	ModerateDocument(ctx context.Context, documentID, actorID int64, req service.ModerateRequest) (string, error)
}

// ModerationHandler exposes the moderation decision endpoint.
type ModerationHandler struct {
	moderation moderationService
}

// NewModerationHandler constructs handler.
func NewModerationHandler(moderation moderationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// Moderate godoc
// @Summary Approve or disapprove a document
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body service.ModerateRequest true "Moderation decision"
// @Success 200 {object} response.Envelope
// @Router /moderation/documents/{id} [post]
func (h *ModerationHandler) Moderate(c *gin.Context) {
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

	var req service.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	message, err := h.moderation.ModerateDocument(c.Request.Context(), id, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, message)
}
