package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AssignmentFilters struct {
	Status    *models.AssignmentStatus `json:"status"`
	StudentID *string                  `json:"student_id"`
	TestID    *uint                    `json:"test_id"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "available_from"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	StudentID *string    `json:"student_id"`
	TestID    *uint      `json:"test_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

type TestFilters struct {
	ExamType  *models.ExamType `json:"exam_type"`
	IsActive  *bool            `json:"is_active"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`
	SortOrder string           `json:"sort_order"`
}

// ===== REPOSITORY INTERFACES =====

type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.Test, int64, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID string, testID uint) (*models.Assignment, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AssignmentFilters) ([]*models.Assignment, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// TransitionStatus performs a conditional update: the row changes only if
	// its current status is one of the from statuses. Returns
	// ErrStaleTransition when no row matched.
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, from []models.AssignmentStatus, to models.AssignmentStatus, startedAt *time.Time) error

	// UpdateAvailableFromIf edits the availability date only while the
	// assignment has not reached a terminal status.
	UpdateAvailableFromIf(ctx context.Context, tx *gorm.DB, id uint, availableFrom time.Time, unless []models.AssignmentStatus) error

	// ListOverdue returns assignments still assigned or started whose
	// availability day ended before the cutoff. Used by the expiry sweep.
	ListOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*models.Assignment, error)
}

type AttemptRepository interface {
	// Create inserts the finalized attempt. A duplicate assignment_id yields
	// ErrDuplicateAttempt via the store's unique constraint.
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.Attempt, error)
	ExistsForAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) (bool, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint, filters AttemptFilters) ([]*models.Attempt, int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Repository interface {
	Test() TestRepository
	Assignment() AssignmentRepository
	Attempt() AttemptRepository
	User() UserRepository

	Ping(ctx context.Context) error
	Close() error
}

// ===== ERROR HELPERS =====

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateAttempt = errors.New("attempt already exists for assignment")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrStaleTransition  = errors.New("status transition did not match current status")
	ErrRowReferenced    = errors.New("row is referenced by dependent records")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateAttempt) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrStaleTransition) ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
