package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/validator"
)

// AvailabilityError carries the gate's decision out of a refused start so the
// handler can render the reason and remaining days.
type AvailabilityError struct {
	Decision AvailabilityDecision
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("assignment not startable: %s", e.Decision.Reason)
}

type assignmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gate      *AvailabilityGate
	notifier  NotificationEventService
}

func NewAssignmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, gate *AvailabilityGate, notifier NotificationEventService) AssignmentService {
	return &assignmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		gate:      gate,
		notifier:  notifier,
	}
}

// ===== STAFF OPERATIONS =====

func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, assignedBy string) (*AssignmentResponse, error) {
	s.logger.Info("Creating assignment",
		"student_id", req.StudentID,
		"test_id", req.TestID,
		"assigned_by", assignedBy)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	test, err := s.repo.Test().GetByID(ctx, nil, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if !test.IsActive {
		return nil, ErrTestInactive
	}

	if _, err := s.repo.User().GetByID(ctx, req.StudentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	assignment := &models.Assignment{
		StudentID:  req.StudentID,
		TestID:     req.TestID,
		Status:     models.AssignmentAssigned,
		AssignedAt: time.Now(),
		AssignedBy: assignedBy,
	}
	if req.AvailableFrom != nil {
		day := s.gate.StartOfDay(*req.AvailableFrom)
		assignment.AvailableFrom = &day
	}

	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		if repositories.IsConflictError(err) {
			return nil, ErrAssignmentExists
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("Assignment created",
		"assignment_id", assignment.ID,
		"student_id", assignment.StudentID,
		"test_id", assignment.TestID)

	// Notification is strictly after the durable write and never blocks it
	s.notifier.AssignmentCreated(ctx, assignment)

	return s.buildAssignmentResponse(assignment, time.Now()), nil
}

func (s *assignmentService) Reschedule(ctx context.Context, studentID string, testID uint, req *RescheduleAssignmentRequest) (*AssignmentResponse, error) {
	s.logger.Info("Rescheduling assignment",
		"student_id", studentID,
		"test_id", testID,
		"available_from", req.AvailableFrom)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	assignment, err := s.repo.Assignment().GetByStudentAndTest(ctx, nil, studentID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	// Completion wins over an in-flight reschedule: the conditional update
	// refuses terminal rows even if this request read a stale status.
	day := s.gate.StartOfDay(req.AvailableFrom)
	err = s.repo.Assignment().UpdateAvailableFromIf(ctx, nil, assignment.ID, day,
		[]models.AssignmentStatus{models.AssignmentCompleted, models.AssignmentExpired})
	if err != nil {
		if errors.Is(err, repositories.ErrStaleTransition) {
			return nil, ErrRescheduleConflict
		}
		return nil, fmt.Errorf("failed to reschedule assignment: %w", err)
	}

	assignment.AvailableFrom = &day
	s.notifier.AssignmentRescheduled(ctx, assignment)

	return s.buildAssignmentResponse(assignment, time.Now()), nil
}

func (s *assignmentService) Remove(ctx context.Context, studentID string, testID uint) error {
	s.logger.Info("Removing assignment", "student_id", studentID, "test_id", testID)

	assignment, err := s.repo.Assignment().GetByStudentAndTest(ctx, nil, studentID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	exists, err := s.repo.Attempt().ExistsForAssignment(ctx, nil, assignment.ID)
	if err != nil {
		return fmt.Errorf("failed to check attempts: %w", err)
	}
	if exists {
		return ErrRemoveConflict
	}

	if err := s.repo.Assignment().Delete(ctx, nil, assignment.ID); err != nil {
		switch {
		case repositories.IsNotFoundError(err):
			return ErrAssignmentNotFound
		case errors.Is(err, repositories.ErrRowReferenced):
			// A submit landed between the attempt check and the delete; the
			// attempts foreign key is the backstop.
			return ErrRemoveConflict
		default:
			return fmt.Errorf("failed to delete assignment: %w", err)
		}
	}

	s.notifier.AssignmentRemoved(ctx, assignment)
	return nil
}

// ===== STUDENT OPERATIONS =====

func (s *assignmentService) Start(ctx context.Context, studentID string, testID uint, now time.Time) (*StartAssignmentResponse, error) {
	s.logger.Info("Starting assignment", "student_id", studentID, "test_id", testID)

	assignment, err := s.repo.Assignment().GetByStudentAndTest(ctx, nil, studentID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Uniform answer whether the test or the assignment is missing:
			// students must not be able to probe another's enrollment.
			return nil, ErrNotAssigned
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	decision := s.gate.CanStart(now, assignment)
	if !decision.Allowed {
		if decision.Reason == ReasonExpired && !assignment.Status.Terminal() {
			s.persistExpiry(ctx, assignment)
		}
		return nil, &AvailabilityError{Decision: decision}
	}

	// Already started: treat as resume, no state change, no second gate run.
	if assignment.Status == models.AssignmentStarted {
		return s.buildStartResponse(ctx, assignment, true)
	}

	startedAt := now
	err = s.repo.Assignment().TransitionStatus(ctx, nil, assignment.ID,
		[]models.AssignmentStatus{models.AssignmentAssigned},
		models.AssignmentStarted, &startedAt)
	if err != nil {
		if !errors.Is(err, repositories.ErrStaleTransition) {
			return nil, fmt.Errorf("failed to start assignment: %w", err)
		}

		// Lost the race: another request moved the status first. Re-read and
		// resolve by what actually won.
		current, rerr := s.repo.Assignment().GetByID(ctx, nil, assignment.ID)
		if rerr != nil {
			return nil, fmt.Errorf("failed to re-read assignment: %w", rerr)
		}
		switch current.Status {
		case models.AssignmentStarted:
			return s.buildStartResponse(ctx, current, true)
		case models.AssignmentCompleted:
			return nil, ErrAlreadyCompleted
		default:
			return nil, &AvailabilityError{Decision: AvailabilityDecision{Reason: ReasonExpired}}
		}
	}

	assignment.Status = models.AssignmentStarted
	assignment.StartedAt = &startedAt

	s.logger.Info("Assignment started",
		"assignment_id", assignment.ID,
		"student_id", studentID)

	return s.buildStartResponse(ctx, assignment, false)
}

func (s *assignmentService) GetForStudent(ctx context.Context, studentID string, filters repositories.AssignmentFilters, now time.Time) ([]*AssignmentResponse, int64, error) {
	assignments, total, err := s.repo.Assignment().GetByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]*AssignmentResponse, len(assignments))
	for i, assignment := range assignments {
		responses[i] = s.buildAssignmentResponse(assignment, now)
	}

	return responses, total, nil
}

// ===== EXPIRY =====

// ExpireOverdue persists expiry for assignments whose availability day ended
// before now. Lazy expiry at read/start time remains authoritative; the sweep
// just catches assignments nobody looked at.
func (s *assignmentService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	cutoff := s.gate.StartOfDay(now)

	overdue, err := s.repo.Assignment().ListOverdue(ctx, nil, cutoff, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue assignments: %w", err)
	}

	expired := 0
	for _, assignment := range overdue {
		if s.persistExpiry(ctx, assignment) {
			expired++
		}
	}

	if expired > 0 {
		s.logger.Info("Expired overdue assignments", "count", expired)
	}
	return expired, nil
}

// persistExpiry moves an assignment to expired if it is still non-terminal.
// Losing the conditional update here means someone else already resolved the
// row, which is fine.
func (s *assignmentService) persistExpiry(ctx context.Context, assignment *models.Assignment) bool {
	err := s.repo.Assignment().TransitionStatus(ctx, nil, assignment.ID,
		[]models.AssignmentStatus{models.AssignmentAssigned, models.AssignmentStarted},
		models.AssignmentExpired, nil)
	if err != nil {
		if !errors.Is(err, repositories.ErrStaleTransition) {
			s.logger.Error("Failed to persist expiry",
				"assignment_id", assignment.ID, "error", err)
		}
		return false
	}

	assignment.Status = models.AssignmentExpired
	s.notifier.AssignmentExpired(ctx, assignment)
	return true
}

// ===== HELPERS =====

func (s *assignmentService) buildAssignmentResponse(assignment *models.Assignment, now time.Time) *AssignmentResponse {
	decision := s.gate.CanStart(now, assignment)
	return &AssignmentResponse{
		Assignment:         assignment,
		IsAvailable:        decision.Allowed,
		DaysUntilAvailable: decision.DaysUntil,
		CanStart:           decision.Allowed && !assignment.Status.Terminal(),
	}
}

func (s *assignmentService) buildStartResponse(ctx context.Context, assignment *models.Assignment, resumed bool) (*StartAssignmentResponse, error) {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, nil, assignment.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test payload: %w", err)
	}

	payload, err := buildTestForStudent(test)
	if err != nil {
		return nil, fmt.Errorf("failed to build test payload: %w", err)
	}

	message := "Test started. All the best!"
	if resumed {
		message = "Resuming your test."
	}

	return &StartAssignmentResponse{
		Status:  assignment.Status,
		Message: message,
		Resumed: resumed,
		Test:    payload,
	}, nil
}
