package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/dto"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// NoteHandler exposes note read, update, and delete endpoints. Notes are
// created only by the pipeline.
type NoteHandler struct {
	notes      artifact.NoteRepository
	categories artifact.CategoryRepository
	log        zerolog.Logger
}

// NewNoteHandler constructs the handler.
func NewNoteHandler(notes artifact.NoteRepository, categories artifact.CategoryRepository, log zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		notes:      notes,
		categories: categories,
		log:        log.With().Str("handler", "note").Logger(),
	}
}

// List handles GET /v1/notes.
func (h *NoteHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	notes, err := h.notes.ListByUserID(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list notes")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(notes))
}

// Get handles GET /v1/notes/:note_id.
func (h *NoteHandler) Get(c *gin.Context) {
	note, err := h.notes.FindByPublicID(c.Request.Context(), middleware.UserID(c), c.Param("note_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch note")
		return
	}
	c.JSON(http.StatusOK, dto.NoteResponse{Note: note})
}

// Update handles PATCH /v1/notes/:note_id.
func (h *NoteHandler) Update(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "note-update-bind")
		return
	}

	userID := middleware.UserID(c)
	note, err := h.notes.FindByPublicID(c.Request.Context(), userID, c.Param("note_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch note")
		return
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Body != nil {
		note.Body = *req.Body
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	if req.CategoryID != nil {
		categoryID, ok := h.resolveCategory(c, userID, *req.CategoryID)
		if !ok {
			return
		}
		note.CategoryID = categoryID
	}
	if note.Title == "" || note.Body == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"title and body must not be empty", "note-update-empty")
		return
	}

	if err := h.notes.Update(c.Request.Context(), note); err != nil {
		responses.HandleError(c, err, "failed to update note")
		return
	}
	c.JSON(http.StatusOK, dto.NoteResponse{Note: note})
}

// Delete handles DELETE /v1/notes/:note_id.
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), middleware.UserID(c), c.Param("note_id")); err != nil {
		responses.HandleError(c, err, "failed to delete note")
		return
	}
	c.Status(http.StatusNoContent)
}

// resolveCategory maps a public category ID to its internal ID. An empty
// string clears the assignment.
func (h *NoteHandler) resolveCategory(c *gin.Context, userID, publicID string) (*uint, bool) {
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
