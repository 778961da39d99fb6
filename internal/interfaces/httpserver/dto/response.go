package dto

import (
	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
)

// ListResponse wraps collection payloads for consistent responses.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// NewListResponse builds a list envelope, normalizing nil slices.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items}
}

// ConversationWithMessages pairs a conversation with a page of its messages.
type ConversationWithMessages struct {
	Conversation *conversation.Conversation `json:"conversation"`
	Messages     []conversation.Message     `json:"messages"`
}

// ClassifyResponse is the classification preview payload.
type ClassifyResponse struct {
	Category   classify.Category `json:"category"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Source     classify.Source   `json:"source"`
}

// NoteResponse wraps a single note.
type NoteResponse struct {
	Note *artifact.Note `json:"note"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task *artifact.Task `json:"task"`
}

// CategoryResponse wraps a single category.
type CategoryResponse struct {
	Category *artifact.Category `json:"category"`
}
