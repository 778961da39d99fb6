package pipeline

import (
	"fmt"
	"strings"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
)

// ComposeReply builds the short user-facing confirmation naming what was
// created, or a generic acknowledgment for chat.
func ComposeReply(category classify.Category, notes []*artifact.Note, tasks []*artifact.Task) string {
	switch category {
	case classify.CategoryTask:
		if len(tasks) > 0 {
			return fmt.Sprintf("Created task: %s", tasks[0].Title)
		}
		// Degraded extraction preserved the input as a note.
		if len(notes) > 0 {
			return fmt.Sprintf("Created note: %s", notes[0].Title)
		}
	case classify.CategoryNote:
		if len(notes) > 0 {
			return fmt.Sprintf("Created note: %s", notes[0].Title)
		}
	case classify.CategoryBrainDump:
		return composeBrainDumpReply(notes, tasks)
	}
	return "Got it. Let me know if you want to capture a note or a task."
}

func composeBrainDumpReply(notes []*artifact.Note, tasks []*artifact.Task) string {
	var parts []string
	if n := len(notes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural("note", n)))
	}
	if n := len(tasks); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural("task", n)))
	}
	total := len(notes) + len(tasks)
	return fmt.Sprintf("Organized %d %s from your brain dump. Created: %s.",
		total, plural("item", total), strings.Join(parts, ", "))
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
