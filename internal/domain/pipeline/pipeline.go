// Package pipeline orchestrates one inbound user message end to end:
// idempotency check, context load, classification, extraction, atomic
// persistence, and response composition with an auditable step trace.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
	"github.com/vcalderon2009/note-taker/internal/domain/extract"
	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// EndpointPostMessage scopes idempotency keys for the message endpoint.
const EndpointPostMessage = "POST /v1/conversations/:conversation_id/messages"

// Classifier resolves a message to a classification, possibly via fallback.
type Classifier interface {
	Classify(ctx context.Context, message string, history []llm.ChatMessage) classify.Result
}

// Extractor produces validated draft artifacts for a classified message.
type Extractor interface {
	Extract(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome)
}

// ContextLoader assembles bounded recent conversation history.
type ContextLoader interface {
	Load(ctx context.Context, conversationID uint) ([]llm.ChatMessage, error)
}

// Input is one inbound user message.
type Input struct {
	ConversationPublicID string
	UserID               string
	Text                 string
	IdempotencyKey       string
}

// Artifacts groups the records created for a message.
type Artifacts struct {
	Notes []*artifact.Note `json:"notes"`
	Tasks []*artifact.Task `json:"tasks"`
}

// Response is the payload returned to the client and stored verbatim for
// idempotent replays.
type Response struct {
	Message     *conversation.Message `json:"message"`
	UserMessage *conversation.Message `json:"user_message"`
	Artifacts   Artifacts             `json:"artifacts"`
	Category    classify.Category     `json:"category"`
	Degraded    bool                  `json:"degraded"`
	Trace       []Step                `json:"trace"`
}

// Service runs the message pipeline.
type Service struct {
	conversations conversation.Repository
	window        ContextLoader
	classifier    Classifier
	extractor     Extractor
	store         Store
	guard         *idempotency.Guard
	log           zerolog.Logger
}

// NewService wires the pipeline components.
func NewService(
	conversations conversation.Repository,
	window ContextLoader,
	classifier Classifier,
	extractor Extractor,
	store Store,
	guard *idempotency.Guard,
	log zerolog.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		window:        window,
		classifier:    classifier,
		extractor:     extractor,
		store:         store,
		guard:         guard,
		log:           log.With().Str("component", "pipeline").Logger(),
	}
}

// HandleMessage processes one inbound message at most once per idempotency
// key. The returned payload is the serialized Response; replayed reports
// whether it came from a stored idempotency record.
func (s *Service) HandleMessage(ctx context.Context, in Input) (json.RawMessage, bool, error) {
	conv, err := s.conversations.FindByPublicID(ctx, in.ConversationPublicID)
	if err != nil {
		return nil, false, err
	}
	if conv.UserID != in.UserID {
		return nil, false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", in.ConversationPublicID), nil, "pipeline-conversation-owner")
	}

	scope := idempotency.Scope{
		UserID:   in.UserID,
		Endpoint: EndpointPostMessage,
		Key:      in.IdempotencyKey,
	}
	fingerprint := idempotency.Fingerprint(in.ConversationPublicID, in.Text)

	return s.guard.ExecuteOnce(ctx, scope, fingerprint, func(workCtx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		return s.run(workCtx, conv, in, record)
	})
}

// run executes the pipeline stages for a message that passed the guard.
func (s *Service) run(ctx context.Context, conv *conversation.Conversation, in Input, record *idempotency.Record) (json.RawMessage, error) {
	trace := &Trace{}
	trace.Append(StageReceived, StepOK, "")

	if record != nil {
		trace.Append(StageIdempotencyChecked, StepOK, "first execution for key")
	} else {
		trace.Append(StageIdempotencyChecked, StepSkipped, "no idempotency key supplied")
	}

	history, err := s.window.Load(ctx, conv.ID)
	if err != nil {
		// Best effort: classification still works without history.
		s.log.Warn().Err(err).Str("conversation", conv.PublicID).Msg("context window load failed")
		trace.Append(StageContextLoaded, StepDegraded, "history unavailable, proceeding without context")
		history = nil
	} else {
		trace.Append(StageContextLoaded, StepOK, fmt.Sprintf("%d context messages", len(history)))
	}

	result := s.classifier.Classify(ctx, in.Text, history)
	degraded := result.Source == classify.SourceFallback
	classifyStatus := StepOK
	if degraded {
		classifyStatus = StepFallback
	}
	trace.Append(StageClassified, classifyStatus, fmt.Sprintf("category=%s source=%s", result.Category, result.Source))

	category := result.Category
	var drafts artifact.Drafts

	if category == classify.CategoryChat {
		trace.Append(StageExtracted, StepSkipped, "chat message, no artifacts")
		trace.Append(StageValidated, StepSkipped, "")
	} else {
		var outcome extract.Outcome
		drafts, outcome = s.extractor.Extract(ctx, category, in.Text, history)

		if outcome.Degraded {
			degraded = true
			trace.Append(StageExtracted, StepDegraded, outcome.Detail)
		} else {
			trace.Append(StageExtracted, StepOK, fmt.Sprintf("%d drafts", drafts.Count()))
		}

		if category == classify.CategoryBrainDump && drafts.Empty() {
			// Brain-dump invariant: nothing extracted means this was not a
			// brain dump after all.
			category = classify.CategoryChat
			trace.Append(StageValidated, StepDegraded, "brain dump yielded no artifacts, reclassified as chat")
		} else {
			validated := StepOK
			detail := fmt.Sprintf("%d artifacts validated", drafts.Count())
			if outcome.SchemaRetries > 0 {
				detail = fmt.Sprintf("%s after %d schema retries", detail, outcome.SchemaRetries)
			}
			if outcome.Degraded {
				validated = StepDegraded
			}
			trace.Append(StageValidated, validated, detail)
		}
	}

	userMessage := conversation.NewMessage(conv.ID, conversation.RoleUser, in.Text)

	notes := make([]*artifact.Note, 0, len(drafts.Notes))
	for _, d := range drafts.Notes {
		notes = append(notes, artifact.NoteFromDraft(d, in.UserID, &conv.ID))
	}
	tasks := make([]*artifact.Task, 0, len(drafts.Tasks))
	for _, d := range drafts.Tasks {
		tasks = append(tasks, artifact.TaskFromDraft(d, in.UserID, &conv.ID))
	}

	reply := ComposeReply(category, notes, tasks)
	assistantMessage := conversation.NewMessage(conv.ID, conversation.RoleAssistant, reply)

	// The persisted/responded steps are appended before the commit so the
	// stored replay payload carries the full trace; the payload is discarded
	// unless the transaction actually succeeds.
	trace.Append(StagePersisted, StepOK, fmt.Sprintf("%d notes, %d tasks", len(notes), len(tasks)))
	trace.Append(StageResponded, StepOK, "")

	payload, err := json.Marshal(Response{
		Message:     assistantMessage,
		UserMessage: userMessage,
		Artifacts:   Artifacts{Notes: notes, Tasks: tasks},
		Category:    category,
		Degraded:    degraded,
		Trace:       trace.Steps(),
	})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"encode pipeline response", err, "pipeline-encode-response")
	}

	if record != nil {
		record.Response = payload
	}

	if err := s.store.Persist(ctx, &PersistRequest{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Notes:            notes,
		Tasks:            tasks,
		Idempotency:      record,
	}); err != nil {
		s.log.Error().Err(err).Str("conversation", conv.PublicID).Msg("pipeline persistence failed")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable,
			"persistence failure, transaction rolled back; retry with the same idempotency key", err, "pipeline-persist")
	}

	s.log.Info().
		Str("conversation", conv.PublicID).
		Str("category", string(category)).
		Bool("degraded", degraded).
		Int("notes", len(notes)).
		Int("tasks", len(tasks)).
		Msg("message processed")

	return payload, nil
}
