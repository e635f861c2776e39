package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/services"
	"github.com/prepverse/testprep-service/internal/utils"
	"github.com/prepverse/testprep-service/internal/validator"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	validator      *validator.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		validator:      validator,
	}
}

// SubmitAttempt finalizes a started assignment with the student's answers.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	testID := h.parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting attempt", "test_id", testID, "answers_count", len(req.Answers))

	resp, err := h.attemptService.Submit(c.Request.Context(), userID, testID, &req, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetMyAttempts returns the student's attempt history, optionally narrowed to
// one test.
func (h *AttemptHandler) GetMyAttempts(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var testID *uint
	if raw := c.Query("test_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_parameter",
				Message: "invalid test_id parameter",
			})
			return
		}
		id := uint(v)
		testID = &id
	}

	resp, err := h.attemptService.History(c.Request.Context(), userID, testID, parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAttemptsByTest is the staff view of all attempts on a test.
func (h *AttemptHandler) GetAttemptsByTest(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Listing attempts for test", "test_id", testID)

	resp, err := h.attemptService.GetByTest(c.Request.Context(), testID, parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseAttemptFilters(c *gin.Context) repositories.AttemptFilters {
	filters := repositories.AttemptFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = v
	}
	return filters
}
