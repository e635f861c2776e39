package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// AnswerRecord is the per-question outcome stored on a finalized attempt.
type AnswerRecord struct {
	QuestionID          uint `json:"question_id"`
	SelectedOptionIndex int  `json:"selected_option_index"`
	IsCorrect           bool `json:"is_correct"`
}

// Attempt is the immutable, exactly-once record of a completed assignment.
// The unique index on assignment_id is the store-level at-most-once guard:
// a second concurrent finalize violates it and loses.
type Attempt struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AssignmentID uint   `json:"assignment_id" gorm:"not null;uniqueIndex"`
	StudentID    string `json:"student_id" gorm:"not null;index;size:255"`
	TestID       uint   `json:"test_id" gorm:"not null;index"`

	// Per-question breakdown, JSONB
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	// Aggregates under the fixed marking scheme
	CorrectCount     int `json:"correct_count" gorm:"not null"`
	WrongCount       int `json:"wrong_count" gorm:"not null"`
	UnattemptedCount int `json:"unattempted_count" gorm:"not null"`
	TotalMarks       int `json:"total_marks" gorm:"not null"` // signed: wrong answers subtract
	MaxPossibleMarks int `json:"max_possible_marks" gorm:"not null"`
	PercentageScore  int `json:"percentage_score" gorm:"not null"` // not clamped, may be negative
	Accuracy         int `json:"accuracy" gorm:"not null"`

	// Timing
	StartedAt        time.Time `json:"started_at" gorm:"not null"`
	CompletedAt      time.Time `json:"completed_at" gorm:"not null"`
	TimeTakenSeconds int       `json:"time_taken_seconds" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations. StudentID references a Casdoor identity, not a local row.
	Assignment Assignment `json:"-" gorm:"foreignKey:AssignmentID"`
	Test       Test       `json:"test" gorm:"foreignKey:TestID"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// AnswerRecords decodes the JSONB answers column.
func (a *Attempt) AnswerRecords() ([]AnswerRecord, error) {
	var records []AnswerRecord
	if len(a.Answers) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(a.Answers, &records); err != nil {
		return nil, err
	}
	return records, nil
}
