package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
)

// ===== MOCK REPOSITORIES =====

type mockTestRepo struct {
	CreateFunc             func(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByIDFunc            func(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	GetByIDWithQuestionsFn func(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	ListFunc               func(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error)
}

func (m *mockTestRepo) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	return m.CreateFunc(ctx, tx, test)
}

func (m *mockTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	return m.GetByIDFunc(ctx, tx, id)
}

func (m *mockTestRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	return m.GetByIDWithQuestionsFn(ctx, tx, id)
}

func (m *mockTestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	return m.ListFunc(ctx, tx, filters)
}

type mockAssignmentRepo struct {
	CreateFunc              func(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByIDFunc             func(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	GetByStudentAndTestFunc func(ctx context.Context, tx *gorm.DB, studentID string, testID uint) (*models.Assignment, error)
	GetByStudentFunc        func(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error)
	DeleteFunc              func(ctx context.Context, tx *gorm.DB, id uint) error
	TransitionStatusFunc    func(ctx context.Context, tx *gorm.DB, id uint, from []models.AssignmentStatus, to models.AssignmentStatus, startedAt *time.Time) error
	UpdateAvailableFromFunc func(ctx context.Context, tx *gorm.DB, id uint, availableFrom time.Time, unless []models.AssignmentStatus) error
	ListOverdueFunc         func(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*models.Assignment, error)
}

func (m *mockAssignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	return m.CreateFunc(ctx, tx, assignment)
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	return m.GetByIDFunc(ctx, tx, id)
}

func (m *mockAssignmentRepo) GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID string, testID uint) (*models.Assignment, error) {
	return m.GetByStudentAndTestFunc(ctx, tx, studentID, testID)
}

func (m *mockAssignmentRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	return m.GetByStudentFunc(ctx, tx, studentID, filters)
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.DeleteFunc(ctx, tx, id)
}

func (m *mockAssignmentRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, from []models.AssignmentStatus, to models.AssignmentStatus, startedAt *time.Time) error {
	return m.TransitionStatusFunc(ctx, tx, id, from, to, startedAt)
}

func (m *mockAssignmentRepo) UpdateAvailableFromIf(ctx context.Context, tx *gorm.DB, id uint, availableFrom time.Time, unless []models.AssignmentStatus) error {
	return m.UpdateAvailableFromFunc(ctx, tx, id, availableFrom, unless)
}

func (m *mockAssignmentRepo) ListOverdue(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*models.Assignment, error) {
	return m.ListOverdueFunc(ctx, tx, cutoff, limit)
}

type mockAttemptRepo struct {
	CreateFunc            func(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetByAssignmentFunc   func(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.Attempt, error)
	ExistsForAssignmentFn func(ctx context.Context, tx *gorm.DB, assignmentID uint) (bool, error)
	GetByStudentFunc      func(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error)
	GetByTestFunc         func(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error)
}

func (m *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	return m.CreateFunc(ctx, tx, attempt)
}

func (m *mockAttemptRepo) GetByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.Attempt, error) {
	return m.GetByAssignmentFunc(ctx, tx, assignmentID)
}

func (m *mockAttemptRepo) ExistsForAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) (bool, error) {
	return m.ExistsForAssignmentFn(ctx, tx, assignmentID)
}

func (m *mockAttemptRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	return m.GetByStudentFunc(ctx, tx, studentID, filters)
}

func (m *mockAttemptRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	return m.GetByTestFunc(ctx, tx, testID, filters)
}

type mockUserRepo struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

type mockRepository struct {
	test       *mockTestRepo
	assignment *mockAssignmentRepo
	attempt    *mockAttemptRepo
	user       *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		test:       &mockTestRepo{},
		assignment: &mockAssignmentRepo{},
		attempt:    &mockAttemptRepo{},
		user:       &mockUserRepo{},
	}
}

func (m *mockRepository) Test() repositories.TestRepository             { return m.test }
func (m *mockRepository) Assignment() repositories.AssignmentRepository { return m.assignment }
func (m *mockRepository) Attempt() repositories.AttemptRepository       { return m.attempt }
func (m *mockRepository) User() repositories.UserRepository             { return m.user }
func (m *mockRepository) Ping(ctx context.Context) error                { return nil }
func (m *mockRepository) Close() error                                  { return nil }

// ===== MOCK NOTIFIER =====

// mockNotifier records dispatched notifications synchronously so tests can
// assert ordering without sleeping.
type mockNotifier struct {
	mu     sync.Mutex
	called []string
}

func (m *mockNotifier) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called = append(m.called, name)
}

func (m *mockNotifier) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.called))
	copy(out, m.called)
	return out
}

func (m *mockNotifier) AssignmentCreated(ctx context.Context, assignment *models.Assignment) {
	m.record("assignment.created")
}

func (m *mockNotifier) AssignmentRescheduled(ctx context.Context, assignment *models.Assignment) {
	m.record("assignment.rescheduled")
}

func (m *mockNotifier) AssignmentRemoved(ctx context.Context, assignment *models.Assignment) {
	m.record("assignment.removed")
}

func (m *mockNotifier) AssignmentExpired(ctx context.Context, assignment *models.Assignment) {
	m.record("assignment.expired")
}

func (m *mockNotifier) AttemptCompleted(ctx context.Context, attempt *models.Attempt) {
	m.record("attempt.completed")
}
