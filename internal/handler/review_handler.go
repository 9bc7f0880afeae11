package handler

import (
	"errors"
	"net/http"

	"github.com/bandready/ielts-backend/internal/middleware"
	"github.com/bandready/ielts-backend/internal/response"
	"github.com/bandready/ielts-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReviewHandler serves the reconciled per-question review of an attempt.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GetAttemptReview godoc
// GET /api/v1/attempts/:id/review
// Returns the full answer review for one attempt. Users may only review
// their own attempts.
func (h *ReviewHandler) GetAttemptReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.reviewService.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if result.Attempt.UserID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrNotYourOwn)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"attempt": result.Attempt,
		"rows":    result.Rows,
		"stats":   result.Stats,
	})
}
