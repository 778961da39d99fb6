package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
)

// PromptReloader re-reads prompt configuration from disk.
type PromptReloader interface {
	Reload() error
}

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	prompts PromptReloader
	log     zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(prompts PromptReloader, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		prompts: prompts,
		log:     log.With().Str("handler", "admin").Logger(),
	}
}

// ReloadPrompts handles POST /v1/admin/prompts/reload.
func (h *AdminHandler) ReloadPrompts(c *gin.Context) {
	if err := h.prompts.Reload(); err != nil {
		h.log.Error().Err(err).Msg("prompt reload failed")
		responses.HandleError(c, err, "failed to reload prompts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
