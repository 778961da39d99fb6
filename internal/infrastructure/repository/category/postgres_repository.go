// Package category provides the PostgreSQL-backed category repository.
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/database/entities"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// Repository persists categories.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a category repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the category record. Duplicate names per user map to a
// conflict error.
func (r *Repository) Create(ctx context.Context, category *domain.Category) error {
	entity := entities.NewSchemaCategory(category)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				fmt.Sprintf("category already exists: %s", category.Name),
				err,
				"category-duplicate",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create category",
			err,
			"category-create",
		)
	}

	category.ID = entity.ID
	category.CreatedAt = entity.CreatedAt
	category.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a category scoped to its owner.
func (r *Repository) FindByPublicID(ctx context.Context, userID, publicID string) (*domain.Category, error) {
	var entity entities.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("category not found: %s", publicID),
				nil,
				"category-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch category",
			err,
			"category-find",
		)
	}
	return entity.EtoD(), nil
}

// ListByUserID returns the user's categories ordered by name.
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	var rows []entities.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list categories",
			err,
			"category-list",
		)
	}

	out := make([]*domain.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

// Update persists changes to an existing category.
func (r *Repository) Update(ctx context.Context, category *domain.Category) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Category{}).
		Where("user_id = ? AND public_id = ?", category.UserID, category.PublicID).
		Updates(map[string]any{
			"name":        category.Name,
			"description": category.Description,
			"color":       category.Color,
			"icon":        category.Icon,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				fmt.Sprintf("category already exists: %s", category.Name),
				result.Error,
				"category-update-duplicate",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update category",
			result.Error,
			"category-update",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("category not found: %s", category.PublicID),
			nil,
			"category-update-not-found",
		)
	}
	return nil
}

// Delete removes a category. Notes and tasks keep their rows with the
// category reference cleared.
func (r *Repository) Delete(ctx context.Context, userID, publicID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.Category
		if err := tx.Where("user_id = ? AND public_id = ?", userID, publicID).
			First(&entity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return platformerrors.NewError(
					ctx,
					platformerrors.LayerRepository,
					platformerrors.ErrorTypeNotFound,
					fmt.Sprintf("category not found: %s", publicID),
					nil,
					"category-delete-not-found",
				)
			}
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to fetch category",
				err,
				"category-delete-find",
			)
		}

		if err := tx.Model(&entities.Note{}).
			Where("category_id = ?", entity.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Task{}).
			Where("category_id = ?", entity.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&entity).Error
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
