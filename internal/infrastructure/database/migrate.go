package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vcalderon2009/note-taker/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the note-taking domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Conversation{},
		&entities.Message{},
		&entities.Category{},
		&entities.Note{},
		&entities.Task{},
		&entities.IdempotencyKey{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
