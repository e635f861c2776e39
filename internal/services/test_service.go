package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*models.Test, error) {
	s.logger.Info("Creating test", "title", req.Title, "exam_type", req.ExamType, "created_by", creatorID)

	if err := s.validator.ValidateTestCreate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	test := &models.Test{
		Title:     req.Title,
		ExamType:  req.ExamType,
		IsActive:  isActive,
		CreatedBy: creatorID,
		Questions: make([]models.Question, 0, len(req.Questions)),
	}

	for i, q := range req.Questions {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options for question %d: %w", i+1, err)
		}
		marks := q.Marks
		if marks == 0 {
			marks = MarksCorrect
		}
		question := models.Question{
			Position:           i + 1,
			Text:               q.Text,
			ImageURL:           q.ImageURL,
			Options:            optionsJSON,
			CorrectOptionIndex: q.CorrectOptionIndex,
			Marks:              marks,
		}
		test.Questions = append(test.Questions, question)
	}

	if err := s.repo.Test().Create(ctx, nil, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	test.QuestionCount = len(test.Questions)

	s.logger.Info("Test created", "test_id", test.ID, "question_count", test.QuestionCount)
	return test, nil
}

// GetForTaking returns the test with its questions. Students never see the
// answer key; staff get it appended.
func (s *testService) GetForTaking(ctx context.Context, id uint, role models.UserRole) (*TestResponse, error) {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	resp, err := buildTestForStudent(test)
	if err != nil {
		return nil, err
	}

	if role == models.RoleAdmin {
		resp.Answers = make([]QuestionWithAnswer, 0, len(test.Questions))
		for _, q := range test.Questions {
			resp.Answers = append(resp.Answers, QuestionWithAnswer{
				QuestionID:         q.ID,
				CorrectOptionIndex: q.CorrectOptionIndex,
			})
		}
	}
	return resp, nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	tests, total, err := s.repo.Test().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, total, nil
}

// buildTestForStudent strips the answer key from the delivery payload.
func buildTestForStudent(test *models.Test) (*TestResponse, error) {
	resp := &TestResponse{
		ID:            test.ID,
		Title:         test.Title,
		ExamType:      test.ExamType,
		IsActive:      test.IsActive,
		QuestionCount: len(test.Questions),
		Questions:     make([]QuestionForStudent, 0, len(test.Questions)),
	}

	for _, q := range test.Questions {
		options, err := q.OptionList()
		if err != nil {
			return nil, fmt.Errorf("corrupt options for question %d: %w", q.ID, err)
		}
		resp.Questions = append(resp.Questions, QuestionForStudent{
			ID:       q.ID,
			Position: q.Position,
			Text:     q.Text,
			ImageURL: q.ImageURL,
			Options:  options,
			Marks:    q.Marks,
		})
	}
	return resp, nil
}
