package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/services"
	"github.com/prepverse/testprep-service/internal/utils"
	"github.com/prepverse/testprep-service/internal/validator"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
	validator   *validator.Validator
}

func NewTestHandler(
	testService services.TestService,
	validator *validator.Validator,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
		validator:   validator,
	}
}

// CreateTest seeds a catalog entry with its questions.
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating test", "title", req.Title, "exam_type", req.ExamType)

	test, err := h.testService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest returns the test payload for taking. The answer key is only
// included for staff callers.
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	role, _ := GetUserRoleFromContext(c)
	if role == "" {
		role = models.RoleStudent
	}

	test, err := h.testService.GetForTaking(c.Request.Context(), id, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ListTests lists catalog entries.
func (h *TestHandler) ListTests(c *gin.Context) {
	filters := repositories.TestFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = v
	}
	if examType := c.Query("exam_type"); examType != "" {
		e := models.ExamType(examType)
		filters.ExamType = &e
	}
	if active := c.Query("is_active"); active != "" {
		b := active == "true"
		filters.IsActive = &b
	}

	tests, total, err := h.testService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: tests, Total: total})
}
