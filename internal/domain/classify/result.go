// Package classify decides what a user message is asking for: a note, a
// task, a multi-item brain dump, or plain chat.
package classify

// Category is the classification of a user message.
type Category string

const (
	CategoryNote      Category = "NOTE"
	CategoryTask      Category = "TASK"
	CategoryBrainDump Category = "BRAIN_DUMP"
	CategoryChat      Category = "CHAT"
)

// Valid reports whether the category is one of the four known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryNote, CategoryTask, CategoryBrainDump, CategoryChat:
		return true
	}
	return false
}

// Source records which path produced a classification.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is the transient classification outcome. It is never persisted
// standalone; its category and source are recorded in the pipeline trace.
type Result struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Source     Source   `json:"source"`
}
