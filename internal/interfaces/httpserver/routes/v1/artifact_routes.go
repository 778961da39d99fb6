package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
)

func registerArtifactRoutes(router *gin.RouterGroup, h *handlers.Provider) {
	router.GET("/notes", h.Note.List)
	router.GET("/notes/:note_id", h.Note.Get)
	router.PATCH("/notes/:note_id", h.Note.Update)
	router.DELETE("/notes/:note_id", h.Note.Delete)

	router.GET("/tasks", h.Task.List)
	router.GET("/tasks/:task_id", h.Task.Get)
	router.PATCH("/tasks/:task_id", h.Task.Update)
	router.DELETE("/tasks/:task_id", h.Task.Delete)

	router.POST("/categories", h.Category.Create)
	router.GET("/categories", h.Category.List)
	router.PATCH("/categories/:category_id", h.Category.Update)
	router.DELETE("/categories/:category_id", h.Category.Delete)
}
