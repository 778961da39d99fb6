package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/dto"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// ConversationHandler exposes conversation CRUD endpoints.
type ConversationHandler struct {
	conversations conversation.Repository
	messages      conversation.MessageRepository
	log           zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	log zerolog.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		log:           log.With().Str("handler", "conversation").Logger(),
	}
}

// Create handles POST /v1/conversations.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "conversation-bind")
		return
	}

	conv := conversation.NewConversation(middleware.UserID(c), req.Title)
	if err := h.conversations.Create(c.Request.Context(), conv); err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}

	c.JSON(http.StatusCreated, conv)
}

// List handles GET /v1/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	convs, err := h.conversations.ListByUserID(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(convs))
}

// Get handles GET /v1/conversations/:conversation_id, returning the
// conversation with a page of its messages.
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	messages, err := h.messages.ListByConversationID(c.Request.Context(), conv.ID, limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []conversation.Message{}
	}

	c.JSON(http.StatusOK, dto.ConversationWithMessages{
		Conversation: conv,
		Messages:     messages,
	})
}

// ListMessages handles GET /v1/conversations/:conversation_id/messages.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conv, ok := h.ownedConversation(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	messages, err := h.messages.ListByConversationID(c.Request.Context(), conv.ID, limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(messages))
}

// ownedConversation loads the addressed conversation and enforces ownership,
// rendering the error itself when the lookup fails.
func (h *ConversationHandler) ownedConversation(c *gin.Context) (*conversation.Conversation, bool) {
	publicID := c.Param("conversation_id")
	conv, err := h.conversations.FindByPublicID(c.Request.Context(), publicID)
	if err != nil {
		responses.HandleError(c, err, "failed to fetch conversation")
		return nil, false
	}
	if conv.UserID != middleware.UserID(c) {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound,
			"conversation not found: "+publicID, "conversation-owner")
		return nil, false
	}
	return conv, true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
