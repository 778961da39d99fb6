// Package prompts defines the read-only prompt and fallback-keyword
// configuration consumed by the classifier and extractor. The backing store
// loads it once at startup and swaps snapshots on an explicit admin reload.
package prompts

// Prompt names used by the pipeline.
const (
	PromptClassify  = "classify"
	PromptNote      = "note"
	PromptTask      = "task"
	PromptBrainDump = "brain_dump"
)

// Prompt is one reasoning-provider prompt with its sampling temperature.
type Prompt struct {
	System      string
	Temperature float64
}

// Fallback holds the keyword sets driving the deterministic classification
// fallback. Operators tune these without redeploying.
type Fallback struct {
	TaskKeywords    []string
	NoteKeywords    []string
	ListSeparators  []string
	MeetingKeywords []string
}

// Source yields the current immutable configuration snapshot.
type Source interface {
	Prompt(name string) Prompt
	Fallback() Fallback
}
