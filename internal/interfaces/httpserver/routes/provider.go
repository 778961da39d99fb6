// Package routes registers the versioned HTTP API.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/handlers"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
	v1 "github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates all route registrations.
type Provider struct {
	V1 *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider, limiter *middleware.RateLimiter) *Provider {
	return &Provider{
		V1: v1.NewRoutes(handlerProvider, limiter),
	}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine)
}
