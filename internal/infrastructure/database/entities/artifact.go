package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
)

// Note represents the persisted note record.
type Note struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID         string `gorm:"type:varchar(64);index:idx_note_user;not null"`
	ConversationID *uint  `gorm:"index"`
	CategoryID     *uint  `gorm:"index"`
	Title          string `gorm:"type:varchar(512);not null"`
	Body           string `gorm:"type:text;not null"`
	Tags           datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for Note.
func (Note) TableName() string {
	return "notes"
}

// Task represents the persisted task record.
type Task struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID         string  `gorm:"type:varchar(64);index:idx_task_user_status;not null"`
	ConversationID *uint   `gorm:"index"`
	CategoryID     *uint   `gorm:"index"`
	Title          string  `gorm:"type:varchar(512);not null"`
	Description    *string `gorm:"type:text"`
	Status         string  `gorm:"type:varchar(16);index:idx_task_user_status;not null;default:'todo'"`
	Priority       *string `gorm:"type:varchar(16)"`
	DueAt          *time.Time
}

// TableName specifies the table name for Task.
func (Task) TableName() string {
	return "tasks"
}

// Category represents the persisted category record. Names are unique per
// user.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID    string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID      string  `gorm:"type:varchar(64);uniqueIndex:idx_category_user_name;not null"`
	Name        string  `gorm:"type:varchar(128);uniqueIndex:idx_category_user_name;not null"`
	Description *string `gorm:"type:text"`
	Color       *string `gorm:"type:varchar(16)"`
	Icon        *string `gorm:"type:varchar(64)"`
}

// TableName specifies the table name for Category.
func (Category) TableName() string {
	return "categories"
}

// EtoD converts database entity to domain model.
func (n *Note) EtoD() *artifact.Note {
	tags := []string{}
	if len(n.Tags) > 0 {
		// Corrupt tag payloads degrade to an empty list rather than failing
		// the read.
		_ = json.Unmarshal(n.Tags, &tags)
	}
	return &artifact.Note{
		ID:             n.ID,
		PublicID:       n.PublicID,
		UserID:         n.UserID,
		ConversationID: n.ConversationID,
		CategoryID:     n.CategoryID,
		Title:          n.Title,
		Body:           n.Body,
		Tags:           tags,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

// NewSchemaNote creates a database entity from domain model.
func NewSchemaNote(n *artifact.Note) *Note {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return &Note{
		ID:             n.ID,
		PublicID:       n.PublicID,
		UserID:         n.UserID,
		ConversationID: n.ConversationID,
		CategoryID:     n.CategoryID,
		Title:          n.Title,
		Body:           n.Body,
		Tags:           datatypes.JSON(raw),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

// EtoD converts database entity to domain model.
func (t *Task) EtoD() *artifact.Task {
	var priority *artifact.Priority
	if t.Priority != nil {
		p := artifact.Priority(*t.Priority)
		priority = &p
	}
	return &artifact.Task{
		ID:             t.ID,
		PublicID:       t.PublicID,
		UserID:         t.UserID,
		ConversationID: t.ConversationID,
		CategoryID:     t.CategoryID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         artifact.TaskStatus(t.Status),
		Priority:       priority,
		DueAt:          t.DueAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// NewSchemaTask creates a database entity from domain model.
func NewSchemaTask(t *artifact.Task) *Task {
	var priority *string
	if t.Priority != nil {
		p := string(*t.Priority)
		priority = &p
	}
	return &Task{
		ID:             t.ID,
		PublicID:       t.PublicID,
		UserID:         t.UserID,
		ConversationID: t.ConversationID,
		CategoryID:     t.CategoryID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       priority,
		DueAt:          t.DueAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// EtoD converts database entity to domain model.
func (c *Category) EtoD() *artifact.Category {
	return &artifact.Category{
		ID:          c.ID,
		PublicID:    c.PublicID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NewSchemaCategory creates a database entity from domain model.
func NewSchemaCategory(c *artifact.Category) *Category {
	return &Category{
		ID:          c.ID,
		PublicID:    c.PublicID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
