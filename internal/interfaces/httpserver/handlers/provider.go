package handlers

import (
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Message      *MessageHandler
	Conversation *ConversationHandler
	Note         *NoteHandler
	Task         *TaskHandler
	Category     *CategoryHandler
	Classify     *ClassifyHandler
	Admin        *AdminHandler
}

// NewProvider constructs the handler provider.
func NewProvider(
	messagePipeline MessagePipeline,
	classifier pipeline.Classifier,
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	notes artifact.NoteRepository,
	tasks artifact.TaskRepository,
	categories artifact.CategoryRepository,
	prompts PromptReloader,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Message:      NewMessageHandler(messagePipeline, log),
		Conversation: NewConversationHandler(conversations, messages, log),
		Note:         NewNoteHandler(notes, categories, log),
		Task:         NewTaskHandler(tasks, categories, log),
		Category:     NewCategoryHandler(categories, log),
		Classify:     NewClassifyHandler(classifier, log),
		Admin:        NewAdminHandler(prompts, log),
	}
}
