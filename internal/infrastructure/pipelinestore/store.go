// Package pipelinestore commits one pipeline run's writes in a single
// database transaction.
package pipelinestore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/database/entities"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// Store persists the message pair, artifacts, and idempotency record
// atomically. Any failure rolls the whole write back.
type Store struct {
	db *gorm.DB
}

// NewStore builds the transactional pipeline store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Persist implements pipeline.Store.
func (s *Store) Persist(ctx context.Context, req *pipeline.PersistRequest) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userMsg := entities.NewSchemaMessage(req.UserMessage)
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		req.UserMessage.ID = userMsg.ID

		assistantMsg := entities.NewSchemaMessage(req.AssistantMessage)
		if err := tx.Create(assistantMsg).Error; err != nil {
			return err
		}
		req.AssistantMessage.ID = assistantMsg.ID

		for _, note := range req.Notes {
			entity := entities.NewSchemaNote(note)
			if err := tx.Create(entity).Error; err != nil {
				return err
			}
			note.ID = entity.ID
		}

		for _, task := range req.Tasks {
			entity := entities.NewSchemaTask(task)
			if err := tx.Create(entity).Error; err != nil {
				return err
			}
			task.ID = entity.ID
		}

		// Touch the conversation so listing by recency reflects the new
		// messages.
		if err := tx.Model(&entities.Conversation{}).
			Where("id = ?", req.UserMessage.ConversationID).
			Update("updated_at", tx.NowFunc()).Error; err != nil {
			return err
		}

		if req.Idempotency != nil {
			// A stale row may still hold the (key, user_id, endpoint) slot
			// between TTL expiry and the janitor's next sweep; take it over
			// instead of colliding with it.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}, {Name: "user_id"}, {Name: "endpoint"}},
				DoUpdates: clause.AssignmentColumns([]string{"fingerprint", "response", "expires_at", "created_at"}),
			}).Create(entities.NewSchemaIdempotencyKey(req.Idempotency)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to persist pipeline result",
			err,
			"pipeline-store-persist",
		)
	}
	return nil
}
