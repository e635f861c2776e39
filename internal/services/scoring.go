package services

import (
	"math"

	"github.com/prepverse/testprep-service/internal/models"
)

// Marking scheme for NEET/JEE style papers. Fixed for every test: the
// per-question marks stored on the catalog entry are informational and do not
// feed the engine.
const (
	MarksCorrect     = 4
	MarksWrong       = -1
	MarksUnattempted = 0
)

// SubmittedAnswer is one (question, chosen option) pair from a submission.
type SubmittedAnswer struct {
	QuestionID          uint `json:"question_id"`
	SelectedOptionIndex int  `json:"selected_option_index"`
}

// AttemptResult is the deterministic output of scoring one submission against
// one test snapshot.
type AttemptResult struct {
	Answers          []models.AnswerRecord `json:"answers"`
	CorrectCount     int                   `json:"correct_count"`
	WrongCount       int                   `json:"wrong_count"`
	UnattemptedCount int                   `json:"unattempted_count"`
	TotalQuestions   int                   `json:"total_questions"`
	TotalMarks       int                   `json:"total_marks"`
	MaxPossibleMarks int                   `json:"max_possible_marks"`
	PercentageScore  int                   `json:"percentage_score"`
	Accuracy         int                   `json:"accuracy"`
}

// ScoreTest grades a submission under the fixed marking scheme.
//
// The engine iterates the test's question list, never the submission, so the
// question count is always authoritative: correct + wrong + unattempted
// equals the number of questions in the test. Submitted answers for unknown
// question ids are ignored; duplicate answers for one question keep the
// first-seen entry; an empty submission scores every question unattempted.
//
// PercentageScore is not clamped and goes negative when wrong answers
// dominate, matching the published marking scheme.
func ScoreTest(test *models.Test, submitted []SubmittedAnswer) AttemptResult {
	answered := make(map[uint]int, len(submitted))
	for _, ans := range submitted {
		if _, dup := answered[ans.QuestionID]; dup {
			continue // first-seen wins
		}
		answered[ans.QuestionID] = ans.SelectedOptionIndex
	}

	result := AttemptResult{
		TotalQuestions: len(test.Questions),
	}

	for _, question := range test.Questions {
		selected, ok := answered[question.ID]
		if !ok {
			result.UnattemptedCount++
			continue
		}

		isCorrect := selected == question.CorrectOptionIndex
		if isCorrect {
			result.CorrectCount++
		} else {
			result.WrongCount++
		}

		result.Answers = append(result.Answers, models.AnswerRecord{
			QuestionID:          question.ID,
			SelectedOptionIndex: selected,
			IsCorrect:           isCorrect,
		})
	}

	result.TotalMarks = result.CorrectCount*MarksCorrect + result.WrongCount*MarksWrong
	result.MaxPossibleMarks = result.TotalQuestions * MarksCorrect

	if result.MaxPossibleMarks != 0 {
		result.PercentageScore = roundPercent(float64(result.TotalMarks), float64(result.MaxPossibleMarks))
	}
	if result.TotalQuestions != 0 {
		result.Accuracy = roundPercent(float64(result.CorrectCount), float64(result.TotalQuestions))
	}

	return result
}

func roundPercent(part, whole float64) int {
	return int(math.Round(part / whole * 100))
}
