package pipeline

import (
	"context"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
)

// PersistRequest is everything the persistence coordinator commits for one
// pipeline run: the message pair, the derived artifacts, and the idempotency
// record. None of these are ever partially persisted.
type PersistRequest struct {
	UserMessage      *conversation.Message
	AssistantMessage *conversation.Message
	Notes            []*artifact.Note
	Tasks            []*artifact.Task
	// Idempotency is nil when the client sent no key.
	Idempotency *idempotency.Record
}

// Store is the persistence coordinator contract. Persist commits the request
// in a single transaction; any failure rolls the whole write back so a retry
// with the same idempotency key safely re-executes the pipeline.
type Store interface {
	Persist(ctx context.Context, req *PersistRequest) error
}
