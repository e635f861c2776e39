package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/services"
	"github.com/prepverse/testprep-service/internal/utils"
	"github.com/prepverse/testprep-service/internal/validator"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	validator         *validator.Validator
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		validator:         validator,
	}
}

// CreateAssignment assigns a test to a student.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
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

	h.LogRequest(c, "Creating assignment", "student_id", req.StudentID, "test_id", req.TestID)

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// RescheduleAssignment changes the availability day of a pending assignment.
func (h *AssignmentHandler) RescheduleAssignment(c *gin.Context) {
	studentID := c.Param("student_id")
	testID := h.parseIDParam(c, "test_id")
	if studentID == "" || testID == 0 {
		return
	}

	var req services.RescheduleAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Rescheduling assignment", "student_id", studentID, "test_id", testID)

	assignment, err := h.assignmentService.Reschedule(c.Request.Context(), studentID, testID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// RemoveAssignment deletes an assignment that has no recorded attempt.
func (h *AssignmentHandler) RemoveAssignment(c *gin.Context) {
	studentID := c.Param("student_id")
	testID := h.parseIDParam(c, "test_id")
	if studentID == "" || testID == 0 {
		return
	}

	h.LogRequest(c, "Removing assignment", "student_id", studentID, "test_id", testID)

	if err := h.assignmentService.Remove(c.Request.Context(), studentID, testID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAssignmentsByStudent is the staff view of any student's assignments.
func (h *AssignmentHandler) GetAssignmentsByStudent(c *gin.Context) {
	studentID := c.Param("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "invalid student_id parameter",
		})
		return
	}

	h.LogRequest(c, "Listing assignments for student", "student_id", studentID)

	assignments, total, err := h.assignmentService.GetForStudent(
		c.Request.Context(), studentID, parseAssignmentFilters(c), time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: assignments, Total: total})
}

// GetMyAssignments is the student's own view, decorated with availability.
func (h *AssignmentHandler) GetMyAssignments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	assignments, total, err := h.assignmentService.GetForStudent(
		c.Request.Context(), userID, parseAssignmentFilters(c), time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: assignments, Total: total})
}

// StartAssignment moves an available assignment into started and returns the
// test payload. Re-entry on a started assignment resumes it.
func (h *AssignmentHandler) StartAssignment(c *gin.Context) {
	testID := h.parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting assignment", "test_id", testID)

	resp, err := h.assignmentService.Start(c.Request.Context(), userID, testID, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseAssignmentFilters(c *gin.Context) repositories.AssignmentFilters {
	filters := repositories.AssignmentFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = v
	}
	if status := c.Query("status"); status != "" {
		s := models.AssignmentStatus(status)
		filters.Status = &s
	}
	return filters
}
