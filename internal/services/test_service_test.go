package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
	"github.com/prepverse/testprep-service/internal/validator"
)

func newTestServiceForTest(repo repositories.Repository) TestService {
	return NewTestService(repo, nil, testLogger(), validator.New())
}

func TestTestService_Create(t *testing.T) {
	ctx := context.Background()

	validRequest := func() *CreateTestRequest {
		return &CreateTestRequest{
			Title:    "JEE Mains Mock 4",
			ExamType: models.ExamJEE,
			Questions: []validator.QuestionPayload{
				{
					Text: "What is 2+2?",
					Options: []validator.OptionPayload{
						{Text: "3"}, {Text: "4"}, {Text: "5"},
					},
					CorrectOptionIndex: 1,
				},
			},
		}
	}

	t.Run("creates with positions and encoded options", func(t *testing.T) {
		repo := newMockRepository()
		var created *models.Test
		repo.test.CreateFunc = func(ctx context.Context, tx *gorm.DB, test *models.Test) error {
			test.ID = 12
			created = test
			return nil
		}
		svc := newTestServiceForTest(repo)

		test, err := svc.Create(ctx, validRequest(), "admin1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if test.ID != 12 || !test.IsActive || test.CreatedBy != "admin1" {
			t.Errorf("unexpected test: %+v", test)
		}
		if len(created.Questions) != 1 || created.Questions[0].Position != 1 {
			t.Fatalf("unexpected questions: %+v", created.Questions)
		}
		opts, err := created.Questions[0].OptionList()
		if err != nil {
			t.Fatalf("options did not round-trip: %v", err)
		}
		if len(opts) != 3 || opts[1].Text != "4" {
			t.Errorf("unexpected options: %+v", opts)
		}
	})

	t.Run("correct index beyond option count is rejected", func(t *testing.T) {
		repo := newMockRepository()
		svc := newTestServiceForTest(repo)

		req := validRequest()
		req.Questions[0].CorrectOptionIndex = 3 // only 3 options
		_, err := svc.Create(ctx, req, "admin1")
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("missing questions are rejected", func(t *testing.T) {
		repo := newMockRepository()
		svc := newTestServiceForTest(repo)

		req := validRequest()
		req.Questions = nil
		_, err := svc.Create(ctx, req, "admin1")
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestTestService_GetForTaking(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.test.GetByIDWithQuestionsFn = func(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
		return &models.Test{
			ID:        id,
			Title:     "NEET Mock",
			ExamType:  models.ExamNEET,
			IsActive:  true,
			Questions: questionsWithOptions(t),
		}, nil
	}
	svc := newTestServiceForTest(repo)

	t.Run("students never see the answer key", func(t *testing.T) {
		resp, err := svc.GetForTaking(ctx, 5, models.RoleStudent)
		if err != nil {
			t.Fatalf("GetForTaking failed: %v", err)
		}
		if len(resp.Questions) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(resp.Questions))
		}
		if resp.Answers != nil {
			t.Error("answer key leaked to student payload")
		}
	})

	t.Run("staff get the answer key", func(t *testing.T) {
		resp, err := svc.GetForTaking(ctx, 5, models.RoleAdmin)
		if err != nil {
			t.Fatalf("GetForTaking failed: %v", err)
		}
		if len(resp.Answers) != 2 {
			t.Fatalf("expected answer key, got %+v", resp.Answers)
		}
		if resp.Answers[0].CorrectOptionIndex != 1 {
			t.Errorf("unexpected answer key entry: %+v", resp.Answers[0])
		}
	})

	t.Run("unknown test", func(t *testing.T) {
		missing := newMockRepository()
		missing.test.GetByIDWithQuestionsFn = func(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
			return nil, repositories.ErrNotFound
		}
		_, err := newTestServiceForTest(missing).GetForTaking(ctx, 9, models.RoleStudent)
		if !errors.Is(err, ErrTestNotFound) {
			t.Fatalf("expected ErrTestNotFound, got %v", err)
		}
	})
}
