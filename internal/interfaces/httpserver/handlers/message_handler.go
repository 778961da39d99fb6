package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/metrics"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/observability"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/dto"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// HeaderIdempotencyKey carries the client's idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay marks responses served from a stored record.
const HeaderIdempotentReplay = "Idempotent-Replay"

// MessagePipeline is the pipeline entrypoint the handler depends on.
type MessagePipeline interface {
	HandleMessage(ctx context.Context, in pipeline.Input) (json.RawMessage, bool, error)
}

// MessageHandler exposes the message submission endpoint.
type MessageHandler struct {
	pipeline MessagePipeline
	log      zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(p MessagePipeline, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		pipeline: p,
		log:      log.With().Str("handler", "message").Logger(),
	}
}

// Create handles POST /v1/conversations/:conversation_id/messages.
func (h *MessageHandler) Create(c *gin.Context) {
	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"text is required", "message-bind")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"text must not be blank", "message-blank")
		return
	}

	conversationID := c.Param("conversation_id")
	userID := middleware.UserID(c)

	spanCtx, span := observability.StartMessageSpan(c.Request.Context(), conversationID, userID)
	defer span.End()

	// The pipeline runs to completion even if the client disconnects, so
	// persisted work always matches the stored idempotency record.
	ctx := context.WithoutCancel(spanCtx)

	payload, replayed, err := h.pipeline.HandleMessage(ctx, pipeline.Input{
		ConversationPublicID: conversationID,
		UserID:               userID,
		Text:                 req.Text,
		IdempotencyKey:       strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		observability.RecordError(span, err)
		if errors.Is(err, idempotency.ErrConflict) {
			responses.HandleNewError(c, platformerrors.ErrorTypeConflict,
				"idempotency key already used with a different request body", "message-idempotency-conflict")
			return
		}
		responses.HandleError(c, err, "failed to process message")
		return
	}

	if replayed {
		metrics.IdempotentReplaysTotal.Inc()
		c.Header(HeaderIdempotentReplay, "true")
	} else {
		h.observe(span, payload)
	}

	// Stored replays must be byte-identical, so the raw payload goes out
	// without re-encoding.
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// observe decodes the payload enough to annotate the span and record
// pipeline metrics.
func (h *MessageHandler) observe(span trace.Span, payload json.RawMessage) {
	var resp pipeline.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return
	}

	source := "model"
	for _, step := range resp.Trace {
		if step.Stage == pipeline.StageClassified && step.Status == pipeline.StepFallback {
			source = "fallback"
		}
	}

	notes := len(resp.Artifacts.Notes)
	tasks := len(resp.Artifacts.Tasks)
	observability.AnnotateArtifacts(span, notes, tasks, resp.Degraded)
	metrics.RecordPipelineMessage(string(resp.Category), source, resp.Degraded, notes, tasks)
}
