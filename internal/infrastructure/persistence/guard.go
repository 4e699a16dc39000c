package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// dependents names a table whose rows reference the entity being deleted.
type dependents struct {
	table  string
	column string
	noun   string
}

// deleteGuarded removes the row of model with id unless a dependent row still
// references it. Guard and delete share one database transaction.
func deleteGuarded(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, resource string, guards ...dependents) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range guards {
			var n int64
			if err := tx.Table(g.table).Where(g.column+" = ?", id).Count(&n).Error; err != nil {
				return shared.WrapStorageError("count "+g.noun, err)
			}
			if n > 0 {
				return hasDependents(resource, n, g.noun)
			}
		}
		return deleteByID(tx, model, id, resource)
	})
}

func deleteByID(tx *gorm.DB, model any, id uuid.UUID, resource string) error {
	res := tx.Delete(model, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return shared.NewConflictError(shared.ErrHasDependents.Code, resource+" is still referenced")
		}
		return shared.WrapStorageError("delete "+resource, res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError(resource)
	}
	return nil
}

func hasDependents(resource string, n int64, noun string) error {
	return shared.NewConflictError(shared.ErrHasDependents.Code,
		fmt.Sprintf("Cannot delete %s: %d %s reference it", resource, n, noun))
}

// findByID loads the row with id into dest.
func findByID(ctx context.Context, db *gorm.DB, dest any, id uuid.UUID, resource string) error {
	if err := db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(resource)
		}
		return shared.WrapStorageError("get "+resource, err)
	}
	return nil
}

// create inserts model, mapping foreign key violations to a not-found error
// on the referenced resource.
func create(ctx context.Context, db *gorm.DB, model any, resource string) error {
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return shared.NewValidationError("Invalid request parameters",
				shared.FieldError{Field: "id", Message: "references a missing record"})
		}
		return shared.WrapStorageError("create "+resource, err)
	}
	return nil
}

// save writes every column of model except created_at.
func save(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, resource string) error {
	res := db.WithContext(ctx).Model(model).Where("id = ?", id).Select("*").Omit("id", "created_at").Updates(model)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return shared.NewValidationError("Invalid request parameters",
				shared.FieldError{Field: "id", Message: "references a missing record"})
		}
		return shared.WrapStorageError("update "+resource, res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError(resource)
	}
	return nil
}
