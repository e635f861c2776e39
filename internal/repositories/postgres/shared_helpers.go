package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/prepverse/testprep-service/internal/repositories"
)

// translateError maps gorm errors onto the repository error taxonomy so the
// service layer never depends on gorm sentinels directly.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return repositories.ErrRowReferenced
	default:
		return err
	}
}

// applyPagination applies limit/offset with sane defaults. A limit of -1
// disables pagination entirely (internal callers such as report export).
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit == -1 {
		return query
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// applySort applies ordering from a whitelist of columns.
func applySort(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool, fallback string) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = fallback
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return query.Order(sortBy + " " + sortOrder)
}
