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

type ratingService interface {
	SubmitRating(ctx context.Context, documentID, userID int64, value float64) (*models.RatingAggregate, error)
	UpdateRating(ctx context.Context, documentID, userID int64, value float64) (*models.RatingAggregate, error)
	DeleteRating(ctx context.Context, documentID, userID int64) error
	SubmitFAQRating(ctx context.Context, faqID, userID int64, value float64) (*models.FAQRatingAggregate, error)
	DeleteFAQRating(ctx context.Context, faqID, userID int64) error
	ListFAQs(ctx context.Context) ([]models.FAQDetail, error)
}

// RatingHandler exposes document and FAQ rating endpoints.
type RatingHandler struct {
	ratings ratingService
}

// NewRatingHandler constructs handler.
func NewRatingHandler(ratings ratingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Submit godoc
// @Summary Rate a document
// @Tags Ratings
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body service.RatingRequest true "Rating payload"
// @Success 201 {object} response.Envelope
// @Router /documents/{id}/ratings [post]
func (h *RatingHandler) Submit(c *gin.Context) {
	id, userID, req, ok := h.bindRating(c)
	if !ok {
		return
	}
	agg, err := h.ratings.SubmitRating(c.Request.Context(), id, userID, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, agg)
}

// Update godoc
// @Summary Re-rate a document
// @Tags Ratings
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body service.RatingRequest true "Rating payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/ratings [put]
func (h *RatingHandler) Update(c *gin.Context) {
	id, userID, req, ok := h.bindRating(c)
	if !ok {
		return
	}
	agg, err := h.ratings.UpdateRating(c.Request.Context(), id, userID, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, agg, nil)
}

// Delete godoc
// @Summary Withdraw a document rating
// @Tags Ratings
// @Produce json
// @Param id path int true "Document ID"
// @Success 204
// @Router /documents/{id}/ratings [delete]
func (h *RatingHandler) Delete(c *gin.Context) {
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
	if err := h.ratings.DeleteRating(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFAQs godoc
// @Summary List FAQ entries with their helpfulness aggregates
// @Tags FAQs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faqs [get]
func (h *RatingHandler) ListFAQs(c *gin.Context) {
	faqs, err := h.ratings.ListFAQs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faqs, nil)
}

// SubmitFAQ godoc
// @Summary Rate an FAQ entry
// @Tags FAQs
// @Accept json
// @Produce json
// @Param id path int true "FAQ ID"
// @Param payload body service.RatingRequest true "Rating payload"
// @Success 201 {object} response.Envelope
// @Router /faqs/{id}/ratings [post]
func (h *RatingHandler) SubmitFAQ(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid faq id"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	agg, err := h.ratings.SubmitFAQRating(c.Request.Context(), id, claims.UserID, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, agg)
}

// DeleteFAQ godoc
// @Summary Withdraw an FAQ rating
// @Tags FAQs
// @Produce json
// @Param id path int true "FAQ ID"
// @Success 204
// @Router /faqs/{id}/ratings [delete]
func (h *RatingHandler) DeleteFAQ(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid faq id"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.ratings.DeleteFAQRating(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *RatingHandler) bindRating(c *gin.Context) (int64, int64, service.RatingRequest, bool) {
	var req service.RatingRequest
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document id"))
		return 0, 0, req, false
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return 0, 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return 0, 0, req, false
	}
	return id, claims.UserID, req, true
}
