package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/dto"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// TaskHandler exposes task read, update, and delete endpoints. Tasks are
// created only by the pipeline.
type TaskHandler struct {
	tasks      artifact.TaskRepository
	categories artifact.CategoryRepository
	log        zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(tasks artifact.TaskRepository, categories artifact.CategoryRepository, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:      tasks,
		categories: categories,
		log:        log.With().Str("handler", "task").Logger(),
	}
}

// List handles GET /v1/tasks.
func (h *TaskHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	tasks, err := h.tasks.ListByUserID(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(tasks))
}

// Get handles GET /v1/tasks/:task_id.
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.FindByPublicID(c.Request.Context(), middleware.UserID(c), c.Param("task_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Task: task})
}

// Update handles PATCH /v1/tasks/:task_id.
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "task-update-bind")
		return
	}

	userID := middleware.UserID(c)
	task, err := h.tasks.FindByPublicID(c.Request.Context(), userID, c.Param("task_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch task")
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		status := artifact.TaskStatus(*req.Status)
		if status != artifact.TaskStatusTodo && status != artifact.TaskStatusDoing && status != artifact.TaskStatusDone {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
				"status must be todo, doing, or done", "task-update-status")
			return
		}
		task.Status = status
	}
	if req.Priority != nil {
		if *req.Priority == "" {
			task.Priority = nil
		} else {
			priority := artifact.Priority(*req.Priority)
			if !priority.Valid() {
				responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
					"priority must be low, medium, or high", "task-update-priority")
				return
			}
			task.Priority = &priority
		}
	}
	if req.DueAt != nil {
		if *req.DueAt == "" {
			task.DueAt = nil
		} else {
			dueAt, err := time.Parse(time.RFC3339, *req.DueAt)
			if err != nil {
				responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
					"due_at must be an RFC 3339 timestamp", "task-update-due")
				return
			}
			task.DueAt = &dueAt
		}
	}
	if req.CategoryID != nil {
		categoryID, ok := h.resolveCategory(c, userID, *req.CategoryID)
		if !ok {
			return
		}
		task.CategoryID = categoryID
	}
	if task.Title == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"title must not be empty", "task-update-empty")
		return
	}

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		responses.HandleError(c, err, "failed to update task")
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Task: task})
}

// Delete handles DELETE /v1/tasks/:task_id.
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), middleware.UserID(c), c.Param("task_id")); err != nil {
		responses.HandleError(c, err, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) resolveCategory(c *gin.Context, userID, publicID string) (*uint, bool) {
	if publicID == "" {
		return nil, true
	}
	category, err := h.categories.FindByPublicID(c.Request.Context(), userID, publicID)
	if err != nil {
		responses.HandleError(c, err, "failed to fetch category")
		return nil, false
	}
	return &category.ID, true
}
