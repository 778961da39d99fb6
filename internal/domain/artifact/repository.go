package artifact

import "context"

// NoteRepository exposes CRUD reads and updates for persisted notes.
// Creation happens only through the pipeline's transactional store.
type NoteRepository interface {
	FindByPublicID(ctx context.Context, userID, publicID string) (*Note, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, userID, publicID string) error
}

// TaskRepository exposes CRUD reads and updates for persisted tasks.
type TaskRepository interface {
	FindByPublicID(ctx context.Context, userID, publicID string) (*Task, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, userID, publicID string) error
}

// CategoryRepository persists user categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByPublicID(ctx context.Context, userID, publicID string) (*Category, error)
	ListByUserID(ctx context.Context, userID string) ([]*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, userID, publicID string) error
}
