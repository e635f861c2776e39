package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/services"
	"github.com/prepverse/testprep-service/internal/utils"
	"github.com/prepverse/testprep-service/internal/validator"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps list payloads that carry a total.
type SuccessResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetContextLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.GetContextLogger(c, h.logger).Error(msg, args...)
}

// parseIDParam parses a numeric path parameter; on failure it writes the 400
// itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service errors onto HTTP responses. The mapping is
// the single place where domain failures turn into status codes, so handlers
// never invent their own.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var availErr *services.AvailabilityError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &availErr):
		h.handleAvailabilityError(c, availErr)

	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: validationErrs.Error(),
			Details: validationErrs,
		})

	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrTestNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrAttemptNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrAssignmentExists),
		errors.Is(err, services.ErrAttemptExists),
		errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrRescheduleConflict),
		errors.Is(err, services.ErrRemoveConflict),
		errors.Is(err, services.ErrNotStarted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrTestInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "test_inactive",
			Message: err.Error(),
		})

	case repositories.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
		})

	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
	}
}

func (h *BaseHandler) handleAvailabilityError(c *gin.Context, availErr *services.AvailabilityError) {
	switch availErr.Decision.Reason {
	case services.ReasonNotYetAvailable:
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   string(services.ReasonNotYetAvailable),
			Message: availErr.Error(),
			Details: gin.H{"days_until_available": availErr.Decision.DaysUntil},
		})
	case services.ReasonExpired:
		c.JSON(http.StatusGone, ErrorResponse{
			Error:   string(services.ReasonExpired),
			Message: availErr.Error(),
		})
	case services.ReasonAlreadyCompleted:
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   string(services.ReasonAlreadyCompleted),
			Message: availErr.Error(),
		})
	default:
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "not_available",
			Message: availErr.Error(),
		})
	}
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func (h *BaseHandler) currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user not authenticated",
		})
		return "", false
	}
	return id, true
}
