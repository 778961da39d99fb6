package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
)

func notesFor(titles ...string) []*artifact.Note {
	notes := make([]*artifact.Note, 0, len(titles))
	for _, title := range titles {
		notes = append(notes, &artifact.Note{Title: title})
	}
	return notes
}

func tasksFor(titles ...string) []*artifact.Task {
	tasks := make([]*artifact.Task, 0, len(titles))
	for _, title := range titles {
		tasks = append(tasks, &artifact.Task{Title: title})
	}
	return tasks
}

func TestComposeReply(t *testing.T) {
	tests := []struct {
		name     string
		category classify.Category
		notes    []*artifact.Note
		tasks    []*artifact.Task
		want     string
	}{
		{
			name:     "task",
			category: classify.CategoryTask,
			tasks:    tasksFor("Call the dentist"),
			want:     "Created task: Call the dentist",
		},
		{
			name:     "task degraded to note",
			category: classify.CategoryTask,
			notes:    notesFor("call the dentist asap"),
			want:     "Created note: call the dentist asap",
		},
		{
			name:     "note",
			category: classify.CategoryNote,
			notes:    notesFor("Wifi password"),
			want:     "Created note: Wifi password",
		},
		{
			name:     "brain dump mixed",
			category: classify.CategoryBrainDump,
			notes:    notesFor("Gift ideas"),
			tasks:    tasksFor("Book flights", "Renew passport"),
			want:     "Organized 3 items from your brain dump. Created: 1 note, 2 tasks.",
		},
		{
			name:     "brain dump single item",
			category: classify.CategoryBrainDump,
			tasks:    tasksFor("Book flights"),
			want:     "Organized 1 item from your brain dump. Created: 1 task.",
		},
		{
			name:     "brain dump notes only",
			category: classify.CategoryBrainDump,
			notes:    notesFor("Gift ideas", "Trip packing list"),
			want:     "Organized 2 items from your brain dump. Created: 2 notes.",
		},
		{
			name:     "chat",
			category: classify.CategoryChat,
			want:     "Got it. Let me know if you want to capture a note or a task.",
		},
		{
			name:     "note with nothing extracted",
			category: classify.CategoryNote,
			want:     "Got it. Let me know if you want to capture a note or a task.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.ComposeReply(tt.category, tt.notes, tt.tasks))
		})
	}
}
