package services

import (
	"context"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validated request types
type CreateTestRequest = validator.TestCreateRequest
type CreateAssignmentRequest = validator.AssignmentCreateRequest
type RescheduleAssignmentRequest = validator.AssignmentRescheduleRequest
type SubmitAttemptRequest = validator.SubmitAttemptRequest

type AssignmentResponse struct {
	*models.Assignment
	IsAvailable        bool `json:"is_available"`
	DaysUntilAvailable int  `json:"days_until_available"`
	CanStart           bool `json:"can_start"`
}

type StartAssignmentResponse struct {
	Status  models.AssignmentStatus `json:"status"`
	Message string                  `json:"message"`
	Resumed bool                    `json:"resumed"`
	Test    *TestResponse           `json:"test,omitempty"`
}

type AttemptResponse struct {
	*models.Attempt
	Result AttemptResult `json:"result"`
}

type AttemptListResponse struct {
	Attempts []*models.Attempt `json:"attempts"`
	Total    int64             `json:"total"`
}

// TestResponse is the catalog payload. For students the correct option
// indices are stripped before it leaves the service.
type TestResponse struct {
	ID            uint                  `json:"id"`
	Title         string                `json:"title"`
	ExamType      models.ExamType       `json:"exam_type"`
	IsActive      bool                  `json:"is_active"`
	QuestionCount int                   `json:"question_count"`
	Questions     []QuestionForStudent  `json:"questions,omitempty"`
	Answers       []QuestionWithAnswer  `json:"answer_key,omitempty"`
}

type QuestionForStudent struct {
	ID       uint            `json:"id"`
	Position int             `json:"position"`
	Text     string          `json:"text"`
	ImageURL *string         `json:"image_url,omitempty"`
	Options  []models.Option `json:"options"`
	Marks    int             `json:"marks"`
}

type QuestionWithAnswer struct {
	QuestionID         uint `json:"question_id"`
	CorrectOptionIndex int  `json:"correct_option_index"`
}

// ===== SERVICE INTERFACES =====

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*models.Test, error)
	GetForTaking(ctx context.Context, id uint, role models.UserRole) (*TestResponse, error)
	List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error)
}

type AssignmentService interface {
	// Staff operations
	Create(ctx context.Context, req *CreateAssignmentRequest, assignedBy string) (*AssignmentResponse, error)
	Reschedule(ctx context.Context, studentID string, testID uint, req *RescheduleAssignmentRequest) (*AssignmentResponse, error)
	Remove(ctx context.Context, studentID string, testID uint) error

	// Student operations
	Start(ctx context.Context, studentID string, testID uint, now time.Time) (*StartAssignmentResponse, error)
	GetForStudent(ctx context.Context, studentID string, filters repositories.AssignmentFilters, now time.Time) ([]*AssignmentResponse, int64, error)

	// Expiry sweep: persists expired for overdue assignments, returns the count.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

type AttemptService interface {
	// Submit finalizes the assignment exactly once; concurrent duplicates
	// lose on the store's constraints and receive a conflict.
	Submit(ctx context.Context, studentID string, testID uint, req *SubmitAttemptRequest, now time.Time) (*AttemptResponse, error)

	History(ctx context.Context, studentID string, testID *uint, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) (*AttemptListResponse, error)
}

type NotificationEventService interface {
	AssignmentCreated(ctx context.Context, assignment *models.Assignment)
	AssignmentRescheduled(ctx context.Context, assignment *models.Assignment)
	AssignmentRemoved(ctx context.Context, assignment *models.Assignment)
	AssignmentExpired(ctx context.Context, assignment *models.Assignment)
	AttemptCompleted(ctx context.Context, attempt *models.Attempt)
}

type ReportService interface {
	// AttemptReport builds the per-test attempt workbook for staff download.
	AttemptReport(ctx context.Context, testID uint) (*excelize.File, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Test() TestService
	Assignment() AssignmentService
	Attempt() AttemptService
	Notification() NotificationEventService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
