// Package idempotency provides the PostgreSQL-backed idempotency record
// repository.
package idempotency

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/database/entities"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// Repository reads and prunes idempotency key records. Record creation
// happens inside the pipeline's persistence transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an idempotency repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the live record for the scoped key, or (nil, nil) when none
// exists. Expired records are treated as absent.
func (r *Repository) Find(ctx context.Context, userID, endpoint, key string) (*domain.Record, error) {
	var entity entities.IdempotencyKey
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ? AND key = ?", userID, endpoint, key).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch idempotency record",
			err,
			"idempotency-find",
		)
	}

	record := entity.EtoD()
	if record.Expired(time.Now().UTC()) {
		return nil, nil
	}
	return record, nil
}

// DeleteExpired removes records past their TTL and reports how many rows
// were pruned.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&entities.IdempotencyKey{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to prune idempotency records",
			result.Error,
			"idempotency-prune",
		)
	}
	return result.RowsAffected, nil
}
