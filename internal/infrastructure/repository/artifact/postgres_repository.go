// Package artifact provides the PostgreSQL-backed note and task repositories.
package artifact

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/database/entities"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// NoteRepository persists notes.
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository builds a note repository.
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// FindByPublicID fetches a note scoped to its owner.
func (r *NoteRepository) FindByPublicID(ctx context.Context, userID, publicID string) (*domain.Note, error) {
	var entity entities.Note
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("note not found: %s", publicID),
				nil,
				"note-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch note",
			err,
			"note-find",
		)
	}
	return entity.EtoD(), nil
}

// ListByUserID returns the user's notes, newest first.
func (r *NoteRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Note, error) {
	var rows []entities.Note
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list notes",
			err,
			"note-list",
		)
	}

	out := make([]*domain.Note, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

// Update persists changes to an existing note.
func (r *NoteRepository) Update(ctx context.Context, note *domain.Note) error {
	entity := entities.NewSchemaNote(note)
	result := r.db.WithContext(ctx).
		Model(&entities.Note{}).
		Where("user_id = ? AND public_id = ?", note.UserID, note.PublicID).
		Updates(map[string]any{
			"title":       entity.Title,
			"body":        entity.Body,
			"tags":        entity.Tags,
			"category_id": entity.CategoryID,
		})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update note",
			result.Error,
			"note-update",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("note not found: %s", note.PublicID),
			nil,
			"note-update-not-found",
		)
	}
	return nil
}

// Delete removes a note scoped to its owner.
func (r *NoteRepository) Delete(ctx context.Context, userID, publicID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Delete(&entities.Note{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete note",
			result.Error,
			"note-delete",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("note not found: %s", publicID),
			nil,
			"note-delete-not-found",
		)
	}
	return nil
}

// TaskRepository persists tasks.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a task repository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByPublicID fetches a task scoped to its owner.
func (r *TaskRepository) FindByPublicID(ctx context.Context, userID, publicID string) (*domain.Task, error) {
	var entity entities.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("task not found: %s", publicID),
				nil,
				"task-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch task",
			err,
			"task-find",
		)
	}
	return entity.EtoD(), nil
}

// ListByUserID returns the user's tasks, newest first.
func (r *TaskRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Task, error) {
	var rows []entities.Task
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list tasks",
			err,
			"task-list",
		)
	}

	out := make([]*domain.Task, len(rows))
	for i := range rows {
		out[i] = rows[i].EtoD()
	}
	return out, nil
}

// Update persists changes to an existing task.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	entity := entities.NewSchemaTask(task)
	result := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("user_id = ? AND public_id = ?", task.UserID, task.PublicID).
		Updates(map[string]any{
			"title":       entity.Title,
			"description": entity.Description,
			"status":      entity.Status,
			"priority":    entity.Priority,
			"due_at":      entity.DueAt,
			"category_id": entity.CategoryID,
		})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update task",
			result.Error,
			"task-update",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("task not found: %s", task.PublicID),
			nil,
			"task-update-not-found",
		)
	}
	return nil
}

// Delete removes a task scoped to its owner.
func (r *TaskRepository) Delete(ctx context.Context, userID, publicID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Delete(&entities.Task{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete task",
			result.Error,
			"task-delete",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("task not found: %s", publicID),
			nil,
			"task-delete-not-found",
		)
	}
	return nil
}
