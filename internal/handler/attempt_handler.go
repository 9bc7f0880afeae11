package handler

import (
	"errors"
	"net/http"

	"github.com/bandready/ielts-backend/internal/middleware"
	"github.com/bandready/ielts-backend/internal/model"
	"github.com/bandready/ielts-backend/internal/response"
	"github.com/bandready/ielts-backend/internal/service"
	"github.com/bandready/ielts-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AttemptHandler handles attempt submission and history endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	reviewService  *service.ReviewService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, reviewService *service.ReviewService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		reviewService:  reviewService,
	}
}

// SubmitAttempt godoc
// POST /api/v1/attempts
// Grades and persists a finished attempt, returning the score summary and
// the per-question verdicts.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, result, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotPublished):
			response.Fail(c, http.StatusForbidden, response.ErrTestNotPublished)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	// A resubmission for the same attempt identity must not serve stale rows.
	h.reviewService.Invalidate(c.Request.Context(), attempt.ID)

	response.Success(c, http.StatusCreated, gin.H{
		"attempt": attempt,
		"rows":    result.Rows,
		"stats":   result.Stats,
	})
}

// ListAttempts godoc
// GET /api/v1/attempts
// Returns the authenticated user's attempt history, newest first.
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.attemptService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
