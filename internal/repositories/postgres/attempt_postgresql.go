package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create relies on the unique index on assignment_id as the authoritative
// at-most-once guard. The loser of a concurrent finalize gets
// ErrDuplicateAttempt from the constraint, never from a check-then-act read.
func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicateAttempt
		}
		return translateError(err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.Attempt, error) {
	db := a.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&attempt).Error; err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ExistsForAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) (bool, error) {
	db := a.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *AttemptPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	filters.StudentID = &studentID
	return a.list(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	filters.TestID = &testID
	return a.list(ctx, tx, filters)
}

func (a *AttemptPostgreSQL) list(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.Attempt
	var total int64

	query := db.WithContext(ctx).Model(&models.Attempt{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filters.SortBy, filters.SortOrder,
		map[string]bool{"completed_at": true, "total_marks": true, "created_at": true}, "completed_at")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Preload("Test").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}
