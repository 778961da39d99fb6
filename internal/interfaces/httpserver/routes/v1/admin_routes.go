package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
)

func registerAdminRoutes(router *gin.RouterGroup, handler *handlers.AdminHandler) {
	router.POST("/admin/prompts/reload", handler.ReloadPrompts)
}
