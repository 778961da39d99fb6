package conversation

import "context"

// Repository exposes persistence operations for conversation metadata.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Conversation, error)
}

// MessageRepository reads persisted messages. Writes happen only through the
// pipeline's transactional store.
type MessageRepository interface {
	// ListRecent returns up to limit messages for the conversation, ordered
	// oldest to newest by creation time with insertion order breaking ties.
	ListRecent(ctx context.Context, conversationID uint, limit int) ([]Message, error)
	ListByConversationID(ctx context.Context, conversationID uint, limit, offset int) ([]Message, error)
}
