package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamType string

const (
	ExamNEET ExamType = "neet"
	ExamJEE  ExamType = "jee"
)

// Test is the catalog entry students are assigned. Once an attempt references
// a test its questions are treated as immutable.
type Test struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Title    string   `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ExamType ExamType `json:"exam_type" gorm:"not null;index;size:10" validate:"required,oneof=neet jee"`
	IsActive bool     `json:"is_active" gorm:"default:true;index"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:TestID"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
}

// Option is one answer choice. Stored inside Question.Options as JSONB.
type Option struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

type Question struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	TestID   uint `json:"test_id" gorm:"not null;index"`
	Position int  `json:"position" gorm:"not null;default:0"`

	Text     string  `json:"text" gorm:"type:text;not null" validate:"required"`
	ImageURL *string `json:"image_url" gorm:"size:500"`

	// Options stored as JSONB, 2-4 entries
	Options datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`

	CorrectOptionIndex int `json:"correct_option_index" gorm:"not null"`

	// Informational only: the exam marking scheme overrides per-question marks.
	Marks int `json:"marks" gorm:"not null;default:1" validate:"min=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Test Test `json:"-" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the JSONB options column.
func (q *Question) OptionList() ([]Option, error) {
	var opts []Option
	if len(q.Options) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
