package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
)

func registerClassifyRoutes(router *gin.RouterGroup, handler *handlers.ClassifyHandler) {
	router.POST("/classify", handler.Preview)
}
