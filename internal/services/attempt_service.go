package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/validator"
)

// ErrNotStarted rejects a submit on an assignment that never passed the gate.
var ErrNotStarted = errors.New("assignment has not been started")

type attemptService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	notifier  NotificationEventService

	// runInTx executes fn inside one storage transaction.
	runInTx func(fn func(tx *gorm.DB) error) error
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, notifier NotificationEventService) AttemptService {
	s := &attemptService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
	s.runInTx = func(fn func(tx *gorm.DB) error) error {
		return s.db.Transaction(fn)
	}
	return s
}

// Submit scores and finalizes an assignment exactly once.
//
// Two independent guards make double-scoring impossible: the conditional
// status update (started -> completed) and the unique attempt constraint per
// assignment. Both run inside one transaction; the first writer wins, every
// other writer gets a conflict regardless of interleaving.
func (s *attemptService) Submit(ctx context.Context, studentID string, testID uint, req *SubmitAttemptRequest, now time.Time) (*AttemptResponse, error) {
	s.logger.Info("Submitting assignment",
		"student_id", studentID,
		"test_id", testID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	assignment, err := s.repo.Assignment().GetByStudentAndTest(ctx, nil, studentID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotAssigned
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	switch assignment.Status {
	case models.AssignmentCompleted:
		return nil, ErrAlreadyCompleted
	case models.AssignmentExpired:
		return nil, &AvailabilityError{Decision: AvailabilityDecision{Reason: ReasonExpired}}
	case models.AssignmentAssigned:
		return nil, ErrNotStarted
	}

	test, err := s.repo.Test().GetByIDWithQuestions(ctx, nil, assignment.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	submitted, err := s.normalizeAnswers(test, req.Answers)
	if err != nil {
		return nil, err
	}

	result := ScoreTest(test, submitted)

	answersJSON, err := json.Marshal(result.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer records: %w", err)
	}

	startedAt := now
	if assignment.StartedAt != nil {
		startedAt = *assignment.StartedAt
	}

	attempt := &models.Attempt{
		AssignmentID:     assignment.ID,
		StudentID:        studentID,
		TestID:           assignment.TestID,
		Answers:          answersJSON,
		CorrectCount:     result.CorrectCount,
		WrongCount:       result.WrongCount,
		UnattemptedCount: result.UnattemptedCount,
		TotalMarks:       result.TotalMarks,
		MaxPossibleMarks: result.MaxPossibleMarks,
		PercentageScore:  result.PercentageScore,
		Accuracy:         result.Accuracy,
		StartedAt:        startedAt,
		CompletedAt:      now,
		TimeTakenSeconds: req.TimeTakenSeconds,
	}

	err = s.runInTx(func(tx *gorm.DB) error {
		if err := s.repo.Attempt().Create(ctx, tx, attempt); err != nil {
			return err
		}
		return s.repo.Assignment().TransitionStatus(ctx, tx, assignment.ID,
			[]models.AssignmentStatus{models.AssignmentStarted},
			models.AssignmentCompleted, nil)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateAttempt) || errors.Is(err, repositories.ErrStaleTransition) {
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	s.logger.Info("Attempt finalized",
		"attempt_id", attempt.ID,
		"assignment_id", assignment.ID,
		"total_marks", attempt.TotalMarks)

	// Strictly after the transaction is durable; failure here never unwinds
	// the finalize.
	s.notifier.AttemptCompleted(ctx, attempt)

	return &AttemptResponse{Attempt: attempt, Result: result}, nil
}

func (s *attemptService) History(ctx context.Context, studentID string, testID *uint, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	filters.TestID = testID
	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}

func (s *attemptService) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().GetByTest(ctx, nil, testID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for test: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}

// normalizeAnswers converts the request payload for the scoring engine.
// Answers for questions outside the test are passed through untouched (the
// engine ignores them); answers for known questions must select an index
// inside that question's option list.
func (s *attemptService) normalizeAnswers(test *models.Test, answers []validator.SubmitAnswerPayload) ([]SubmittedAnswer, error) {
	optionCounts := make(map[uint]int, len(test.Questions))
	for _, q := range test.Questions {
		opts, err := q.OptionList()
		if err != nil {
			return nil, fmt.Errorf("corrupt options for question %d: %w", q.ID, err)
		}
		optionCounts[q.ID] = len(opts)
	}

	submitted := make([]SubmittedAnswer, 0, len(answers))
	for _, ans := range answers {
		selected := *ans.SelectedOptionIndex
		if count, known := optionCounts[ans.QuestionID]; known && selected >= count {
			return nil, fmt.Errorf("%w: selected_option_index %d out of range for question %d",
				ErrValidationFailed, selected, ans.QuestionID)
		}
		submitted = append(submitted, SubmittedAnswer{
			QuestionID:          ans.QuestionID,
			SelectedOptionIndex: selected,
		})
	}
	return submitted, nil
}
