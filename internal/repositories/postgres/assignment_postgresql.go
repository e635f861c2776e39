package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(assignment).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	db := a.getDB(tx)
	var assignment models.Assignment
	if err := db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID string, testID uint) (*models.Assignment, error) {
	db := a.getDB(tx)
	var assignment models.Assignment
	if err := db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		First(&assignment).Error; err != nil {
		return nil, translateError(err)
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	db := a.getDB(tx)
	var assignments []*models.Assignment
	var total int64

	query := db.WithContext(ctx).Model(&models.Assignment{}).Where("student_id = ?", studentID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filters.SortBy, filters.SortOrder,
		map[string]bool{"created_at": true, "available_from": true, "assigned_at": true}, "assigned_at")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Preload("Test").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.getDB(tx)
	res := db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// TransitionStatus is the compare-and-swap at the heart of the ledger: the
// UPDATE matches only while the row still holds one of the expected statuses,
// so concurrent writers race on the database, not in application code.
func (a *AssignmentPostgreSQL) TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, from []models.AssignmentStatus, to models.AssignmentStatus, startedAt *time.Time) error {
	db := a.getDB(tx)

	updates := map[string]interface{}{"status": to}
	if startedAt != nil {
		updates["started_at"] = *startedAt
	}

	res := db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrStaleTransition
	}
	return nil
}

// UpdateAvailableFromIf reschedules unless the assignment already reached one
// of the excluded (terminal) statuses. Completion always wins over an
// in-flight reschedule.
func (a *AssignmentPostgreSQL) UpdateAvailableFromIf(ctx context.Context, tx *gorm.DB, id uint, availableFrom time.Time, unless []models.AssignmentStatus) error {
	db := a.getDB(tx)

	res := db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status NOT IN ?", id, unless).
		Update("available_from", availableFrom)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrStaleTransition
	}
	return nil
}

func (a *AssignmentPostgreSQL) ListOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*models.Assignment, error) {
	db := a.getDB(tx)
	if limit <= 0 {
		limit = 500
	}

	var assignments []*models.Assignment
	if err := db.WithContext(ctx).
		Where("status IN ?", []models.AssignmentStatus{models.AssignmentAssigned, models.AssignmentStarted}).
		Where("available_from IS NOT NULL AND available_from < ?", cutoff).
		Limit(limit).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
