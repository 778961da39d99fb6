// Package artifact defines the structured records the pipeline derives from
// user messages: notes, tasks, and the drafts they are created from.
package artifact

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks task progress. New tasks start as "todo".
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

// Priority is the task priority enumeration from the task.v1 schema.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// NoteDraft is an unpersisted, schema-validated note candidate.
type NoteDraft struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// TaskDraft is an unpersisted, schema-validated task candidate.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
}

// Drafts bundles the artifacts extracted from one message. A brain dump may
// produce several of each; simple messages produce exactly one.
type Drafts struct {
	Notes []NoteDraft
	Tasks []TaskDraft
}

// Empty reports whether no artifact of either kind was produced.
func (d Drafts) Empty() bool {
	return len(d.Notes) == 0 && len(d.Tasks) == 0
}

// Count returns the total number of drafted artifacts.
func (d Drafts) Count() int {
	return len(d.Notes) + len(d.Tasks)
}

// Note is a persisted note owned by a user.
type Note struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConversationID *uint     `json:"-"`
	CategoryID     *uint     `json:"-"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Task is a persisted task owned by a user.
type Task struct {
	ID             uint       `json:"-"`
	PublicID       string     `json:"id"`
	UserID         string     `json:"user_id"`
	ConversationID *uint      `json:"-"`
	CategoryID     *uint      `json:"-"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       *Priority  `json:"priority,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Category groups notes and tasks; names are unique per user.
type Category struct {
	ID          uint      `json:"-"`
	PublicID    string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory creates an unpersisted category with a fresh public ID.
func NewCategory(userID, name string, description, color, icon *string) *Category {
	now := time.Now().UTC()
	return &Category{
		PublicID:    fmt.Sprintf("cat_%s", uuid.NewString()),
		UserID:      userID,
		Name:        name,
		Description: description,
		Color:       color,
		Icon:        icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NoteFromDraft materializes a draft into an unpersisted Note attributed to
// the user and conversation.
func NoteFromDraft(d NoteDraft, userID string, conversationID *uint) *Note {
	now := time.Now().UTC()
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Note{
		PublicID:       fmt.Sprintf("note_%s", uuid.NewString()),
		UserID:         userID,
		ConversationID: conversationID,
		Title:          d.Title,
		Body:           d.Body,
		Tags:           tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TaskFromDraft materializes a draft into an unpersisted Task attributed to
// the user and conversation.
func TaskFromDraft(d TaskDraft, userID string, conversationID *uint) *Task {
	now := time.Now().UTC()
	return &Task{
		PublicID:       fmt.Sprintf("task_%s", uuid.NewString()),
		UserID:         userID,
		ConversationID: conversationID,
		Title:          d.Title,
		Description:    d.Description,
		Status:         TaskStatusTodo,
		Priority:       d.Priority,
		DueAt:          d.DueAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ToDraft serializes the note back into its draft schema shape.
func (n *Note) ToDraft() NoteDraft {
	return NoteDraft{Title: n.Title, Body: n.Body, Tags: n.Tags}
}

// ToDraft serializes the task back into its draft schema shape.
func (t *Task) ToDraft() TaskDraft {
	return TaskDraft{Title: t.Title, Description: t.Description, DueAt: t.DueAt, Priority: t.Priority}
}

// ExcerptTitle derives a title from raw text: the first line, truncated.
func ExcerptTitle(text string, max int) string {
	line := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	runes := []rune(line)
	if len(runes) > max {
		line = strings.TrimSpace(string(runes[:max]))
	}
	if line == "" {
		return "Note"
	}
	return line
}
