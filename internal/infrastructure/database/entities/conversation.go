package entities

import (
	"time"

	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID   string  `gorm:"type:varchar(64);index:idx_conversation_user;not null"`
	Title    *string `gorm:"type:varchar(256)"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// Message represents the database schema for conversation messages. The
// composite index backs the context-window read: newest rows per
// conversation, insertion order breaking creation-time ties.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_message_conversation_order,priority:2"`

	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint   `gorm:"index:idx_message_conversation_order,priority:1;not null"`
	Role           string `gorm:"type:varchar(16);not null"`
	Content        string `gorm:"type:text;not null"`
	LatencyMS      *int
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts database entity to domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:        c.ID,
		PublicID:  c.PublicID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:        c.ID,
		PublicID:  c.PublicID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// EtoD converts database entity to domain model.
func (m *Message) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           conversation.Role(m.Role),
		Content:        m.Content,
		LatencyMS:      m.LatencyMS,
		CreatedAt:      m.CreatedAt,
	}
}

// NewSchemaMessage creates a database entity from domain model.
func NewSchemaMessage(m *conversation.Message) *Message {
	return &Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		LatencyMS:      m.LatencyMS,
		CreatedAt:      m.CreatedAt,
	}
}
