package conversation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role indicates who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// Conversation represents a chat thread owning an ordered sequence of messages.
type Conversation struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     *string   `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single immutable entry in a conversation. Ordering is by
// creation time with the insertion sequence breaking ties.
type Message struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID uint      `json:"-"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	LatencyMS      *int      `json:"latency_ms,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewConversation creates a conversation with a fresh public ID.
func NewConversation(userID string, title *string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		PublicID:  NewConversationID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates an unpersisted message for the given conversation.
func NewMessage(conversationID uint, role Role, content string) *Message {
	return &Message{
		PublicID:       NewMessageID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewConversationID returns a public conversation ID like "conv_<uuid>".
func NewConversationID() string {
	return fmt.Sprintf("conv_%s", uuid.NewString())
}

// NewMessageID returns a public message ID like "msg_<uuid>".
func NewMessageID() string {
	return fmt.Sprintf("msg_%s", uuid.NewString())
}
