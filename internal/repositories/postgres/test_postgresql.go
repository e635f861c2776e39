package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/cache"
	"github.com/prepverse/testprep-service/internal/models"
	"github.com/prepverse/testprep-service/internal/repositories"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Create(test).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, test.ID)
	return nil
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var test models.Test

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.Test
		if err := db.WithContext(ctx).First(&dbTest, id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbTest, nil
	})
	if err != nil {
		return nil, err
	}

	return &test, nil
}

// GetByIDWithQuestions loads the full test payload in question order. This is
// the snapshot the scoring engine runs against, so it is cached aggressively:
// published tests do not change under attempts.
func (t *TestPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	db := t.getDB(tx)
	cacheKey := fmt.Sprintf("questions:%d", id)
	var test models.Test

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.Test
		if err := db.WithContext(ctx).
			Preload("Questions", func(q *gorm.DB) *gorm.DB {
				return q.Order("questions.position ASC")
			}).
			First(&dbTest, id).Error; err != nil {
			return nil, translateError(err)
		}
		dbTest.QuestionCount = len(dbTest.Questions)
		return &dbTest, nil
	})
	if err != nil {
		return nil, err
	}

	return &test, nil
}

func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	db := t.getDB(tx)
	var tests []*models.Test
	var total int64

	query := db.WithContext(ctx).Model(&models.Test{})
	if filters.ExamType != nil {
		query = query.Where("exam_type = ?", *filters.ExamType)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filters.SortBy, filters.SortOrder,
		map[string]bool{"created_at": true, "title": true}, "created_at")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}
