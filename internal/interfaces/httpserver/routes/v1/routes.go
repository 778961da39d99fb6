package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	limiter  *middleware.RateLimiter
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider, limiter *middleware.RateLimiter) *Routes {
	return &Routes{
		handlers: handlerProvider,
		limiter:  limiter,
	}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerConversationRoutes(group, r.handlers, r.limiter)
	registerArtifactRoutes(group, r.handlers)
	registerClassifyRoutes(group, r.handlers.Classify)
	registerAdminRoutes(group, r.handlers.Admin)
}
