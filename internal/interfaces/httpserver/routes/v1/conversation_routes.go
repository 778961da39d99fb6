package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
)

func registerConversationRoutes(router *gin.RouterGroup, h *handlers.Provider, limiter *middleware.RateLimiter) {
	router.POST("/conversations", h.Conversation.Create)
	router.GET("/conversations", h.Conversation.List)
	router.GET("/conversations/:conversation_id", h.Conversation.Get)
	router.GET("/conversations/:conversation_id/messages", h.Conversation.ListMessages)

	// Message submission is the only rate-limited route: it is the one that
	// spends reasoner tokens.
	router.POST("/conversations/:conversation_id/messages", limiter.Middleware(), h.Message.Create)
}
