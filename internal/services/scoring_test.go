package services

import (
	"testing"

	"github.com/prepverse/testprep-service/internal/models"
)

func fourQuestionTest() *models.Test {
	// Correct option indices: 1, 0, 2, 3
	return &models.Test{
		ID:       1,
		Title:    "Physics Mock 1",
		ExamType: models.ExamNEET,
		IsActive: true,
		Questions: []models.Question{
			{ID: 101, TestID: 1, Position: 1, CorrectOptionIndex: 1},
			{ID: 102, TestID: 1, Position: 2, CorrectOptionIndex: 0},
			{ID: 103, TestID: 1, Position: 3, CorrectOptionIndex: 2},
			{ID: 104, TestID: 1, Position: 4, CorrectOptionIndex: 3},
		},
	}
}

func TestScoreTest(t *testing.T) {
	tests := []struct {
		name      string
		submitted []SubmittedAnswer
		want      AttemptResult
	}{
		{
			name: "three correct one wrong",
			submitted: []SubmittedAnswer{
				{QuestionID: 101, SelectedOptionIndex: 1},
				{QuestionID: 102, SelectedOptionIndex: 0},
				{QuestionID: 103, SelectedOptionIndex: 2},
				{QuestionID: 104, SelectedOptionIndex: 0},
			},
			want: AttemptResult{
				CorrectCount:     3,
				WrongCount:       1,
				UnattemptedCount: 0,
				TotalQuestions:   4,
				TotalMarks:       11,
				MaxPossibleMarks: 16,
				PercentageScore:  69,
				Accuracy:         75,
			},
		},
		{
			name:      "empty submission scores everything unattempted",
			submitted: nil,
			want: AttemptResult{
				CorrectCount:     0,
				WrongCount:       0,
				UnattemptedCount: 4,
				TotalQuestions:   4,
				TotalMarks:       0,
				MaxPossibleMarks: 16,
				PercentageScore:  0,
				Accuracy:         0,
			},
		},
		{
			name: "all wrong goes negative",
			submitted: []SubmittedAnswer{
				{QuestionID: 101, SelectedOptionIndex: 0},
				{QuestionID: 102, SelectedOptionIndex: 1},
				{QuestionID: 103, SelectedOptionIndex: 0},
				{QuestionID: 104, SelectedOptionIndex: 0},
			},
			want: AttemptResult{
				CorrectCount:     0,
				WrongCount:       4,
				UnattemptedCount: 0,
				TotalQuestions:   4,
				TotalMarks:       -4,
				MaxPossibleMarks: 16,
				PercentageScore:  -25,
				Accuracy:         0,
			},
		},
		{
			name: "unknown question ids are ignored",
			submitted: []SubmittedAnswer{
				{QuestionID: 101, SelectedOptionIndex: 1},
				{QuestionID: 999, SelectedOptionIndex: 2},
			},
			want: AttemptResult{
				CorrectCount:     1,
				WrongCount:       0,
				UnattemptedCount: 3,
				TotalQuestions:   4,
				TotalMarks:       4,
				MaxPossibleMarks: 16,
				PercentageScore:  25,
				Accuracy:         25,
			},
		},
		{
			name: "duplicate answers keep the first seen",
			submitted: []SubmittedAnswer{
				{QuestionID: 101, SelectedOptionIndex: 1},
				{QuestionID: 101, SelectedOptionIndex: 3},
			},
			want: AttemptResult{
				CorrectCount:     1,
				WrongCount:       0,
				UnattemptedCount: 3,
				TotalQuestions:   4,
				TotalMarks:       4,
				MaxPossibleMarks: 16,
				PercentageScore:  25,
				Accuracy:         25,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreTest(fourQuestionTest(), tt.submitted)

			if got.CorrectCount != tt.want.CorrectCount {
				t.Errorf("CorrectCount = %d, want %d", got.CorrectCount, tt.want.CorrectCount)
			}
			if got.WrongCount != tt.want.WrongCount {
				t.Errorf("WrongCount = %d, want %d", got.WrongCount, tt.want.WrongCount)
			}
			if got.UnattemptedCount != tt.want.UnattemptedCount {
				t.Errorf("UnattemptedCount = %d, want %d", got.UnattemptedCount, tt.want.UnattemptedCount)
			}
			if got.TotalQuestions != tt.want.TotalQuestions {
				t.Errorf("TotalQuestions = %d, want %d", got.TotalQuestions, tt.want.TotalQuestions)
			}
			if got.TotalMarks != tt.want.TotalMarks {
				t.Errorf("TotalMarks = %d, want %d", got.TotalMarks, tt.want.TotalMarks)
			}
			if got.MaxPossibleMarks != tt.want.MaxPossibleMarks {
				t.Errorf("MaxPossibleMarks = %d, want %d", got.MaxPossibleMarks, tt.want.MaxPossibleMarks)
			}
			if got.PercentageScore != tt.want.PercentageScore {
				t.Errorf("PercentageScore = %d, want %d", got.PercentageScore, tt.want.PercentageScore)
			}
			if got.Accuracy != tt.want.Accuracy {
				t.Errorf("Accuracy = %d, want %d", got.Accuracy, tt.want.Accuracy)
			}

			// Identity invariant: counts always cover the whole paper.
			if got.CorrectCount+got.WrongCount+got.UnattemptedCount != got.TotalQuestions {
				t.Errorf("counts do not sum to total questions: %d+%d+%d != %d",
					got.CorrectCount, got.WrongCount, got.UnattemptedCount, got.TotalQuestions)
			}
		})
	}
}

func TestScoreTest_AnswerRecordsOnlyForAttempted(t *testing.T) {
	got := ScoreTest(fourQuestionTest(), []SubmittedAnswer{
		{QuestionID: 102, SelectedOptionIndex: 3},
	})

	if len(got.Answers) != 1 {
		t.Fatalf("expected 1 answer record, got %d", len(got.Answers))
	}
	rec := got.Answers[0]
	if rec.QuestionID != 102 || rec.SelectedOptionIndex != 3 || rec.IsCorrect {
		t.Errorf("unexpected answer record: %+v", rec)
	}
}

func TestScoreTest_EmptyTest(t *testing.T) {
	got := ScoreTest(&models.Test{}, nil)
	if got.TotalQuestions != 0 || got.PercentageScore != 0 || got.Accuracy != 0 {
		t.Errorf("empty test should score all zeros, got %+v", got)
	}
}
