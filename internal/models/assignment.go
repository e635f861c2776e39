package models

import (
	"time"
)

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentStarted   AssignmentStatus = "started"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentExpired   AssignmentStatus = "expired"
)

// Terminal reports whether no further status transition is allowed.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentExpired
}

// Assignment links one student to one test. Status advances monotonically
// assigned -> started -> completed; expired is reachable only from
// assigned/started. All transitions go through conditional updates on the
// status column, never load-mutate-save.
type Assignment struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	StudentID string           `json:"student_id" gorm:"not null;size:255;index;uniqueIndex:idx_assignment_student_test"`
	TestID    uint             `json:"test_id" gorm:"not null;index;uniqueIndex:idx_assignment_student_test"`
	Status    AssignmentStatus `json:"status" gorm:"not null;default:assigned;index"`

	// AssignedAt is set once at creation and never changes.
	AssignedAt time.Time `json:"assigned_at" gorm:"not null"`

	// AvailableFrom is the calendar day the student may start. Nil means
	// available immediately. Staff may edit it until the assignment completes.
	AvailableFrom *time.Time `json:"available_from"`

	AssignedBy string     `json:"assigned_by" gorm:"not null;size:255"`
	StartedAt  *time.Time `json:"started_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations. StudentID references a Casdoor identity, not a local row.
	Test Test `json:"test" gorm:"foreignKey:TestID"`
}

func (Assignment) TableName() string {
	return "assignments"
}
