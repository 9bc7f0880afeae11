package handler

import (
	"net/http"

	"github.com/bandready/ielts-backend/internal/response"
	"github.com/bandready/ielts-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TestHandler handles test listing and delivery endpoints.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// ListTests godoc
// GET /api/v1/tests
// Returns summaries of all published tests.
func (h *TestHandler) ListTests(c *gin.Context) {
	tests, err := h.testService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// GetTest godoc
// GET /api/v1/tests/:id
// Returns the student-facing test payload with correct answers stripped.
func (h *TestHandler) GetTest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.testService.GetStudentPayload(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": payload})
}
