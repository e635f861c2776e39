package validator

import (
	"time"

	"github.com/prepverse/testprep-service/internal/models"
)

// OptionPayload is one answer choice in a test create request.
type OptionPayload struct {
	Text     string  `json:"text" validate:"required,max=500"`
	ImageURL *string `json:"image_url" validate:"omitempty,url,max=500"`
}

// QuestionPayload carries one question in a test create request. Options are
// restricted to 2-4 entries; the correct index is validated against the
// option count by the business validator.
type QuestionPayload struct {
	Text               string          `json:"text" validate:"required,max=2000"`
	ImageURL           *string         `json:"image_url" validate:"omitempty,url,max=500"`
	Options            []OptionPayload `json:"options" validate:"required,min=2,max=4,dive"`
	CorrectOptionIndex int             `json:"correct_option_index" validate:"min=0,max=3"`
	Marks              int             `json:"marks" validate:"omitempty,min=1"`
}

// TestCreateRequest seeds a catalog entry with its ordered questions.
type TestCreateRequest struct {
	Title     string            `json:"title" validate:"required,min=1,max=200"`
	ExamType  models.ExamType   `json:"exam_type" validate:"required,oneof=neet jee"`
	IsActive  *bool             `json:"is_active"`
	Questions []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// AssignmentCreateRequest links a student to a test on a given day.
type AssignmentCreateRequest struct {
	StudentID     string     `json:"student_id" validate:"required,max=255"`
	TestID        uint       `json:"test_id" validate:"required"`
	AvailableFrom *time.Time `json:"available_from"`
}

type AssignmentRescheduleRequest struct {
	AvailableFrom time.Time `json:"available_from" validate:"required"`
}

// SubmitAnswerPayload is one answer in a submission. SelectedOptionIndex is a
// pointer so a missing value fails validation instead of defaulting to 0.
type SubmitAnswerPayload struct {
	QuestionID          uint `json:"question_id" validate:"required"`
	SelectedOptionIndex *int `json:"selected_option_index" validate:"required,min=0,max=3"`
}

type SubmitAttemptRequest struct {
	Answers          []SubmitAnswerPayload `json:"answers" validate:"dive"`
	TimeTakenSeconds int                   `json:"time_taken_seconds" validate:"min=0"`
}
