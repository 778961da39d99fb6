// Package dto defines the HTTP request and response shapes.
package dto

// CreateConversationRequest starts a new conversation.
type CreateConversationRequest struct {
	Title *string `json:"title"`
}

// CreateMessageRequest submits one user message to the pipeline.
type CreateMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ClassifyRequest previews classification without persisting anything.
type ClassifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateNoteRequest edits a stored note. Omitted fields keep their value.
type UpdateNoteRequest struct {
	Title      *string   `json:"title"`
	Body       *string   `json:"body"`
	Tags       *[]string `json:"tags"`
	CategoryID *string   `json:"category_id"`
}

// UpdateTaskRequest edits a stored task. Omitted fields keep their value.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueAt       *string `json:"due_at"`
	CategoryID  *string `json:"category_id"`
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}
