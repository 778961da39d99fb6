// Package extract turns classified text into schema-validated draft records.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
)

// Versioned extraction schemas. The version is part of the provider contract
// and is restated verbatim in corrective retry prompts.
const (
	SchemaNoteV1      = "note.v1"
	SchemaTaskV1      = "task.v1"
	SchemaBrainDumpV1 = "brain_dump.v1"
)

type notePayload struct {
	Title *string  `json:"title"`
	Body  *string  `json:"body"`
	Tags  []string `json:"tags"`
}

type taskPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueAt       *string `json:"due_at"`
	Priority    *string `json:"priority"`
}

type brainDumpPayload struct {
	Notes []notePayload `json:"notes"`
	Tasks []taskPayload `json:"tasks"`
}

// ParseNoteV1 decodes and validates a note.v1 object.
func ParseNoteV1(raw []byte) (artifact.NoteDraft, error) {
	var payload notePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return artifact.NoteDraft{}, fmt.Errorf("%s: not a JSON object: %w", SchemaNoteV1, err)
	}
	return validateNote(payload)
}

// ParseTaskV1 decodes and validates a task.v1 object.
func ParseTaskV1(raw []byte) (artifact.TaskDraft, error) {
	var payload taskPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return artifact.TaskDraft{}, fmt.Errorf("%s: not a JSON object: %w", SchemaTaskV1, err)
	}
	return validateTask(payload)
}

// ParseBrainDumpV1 decodes and validates a brain_dump.v1 object. Both arrays
// may be empty individually, but a dump with no items at all violates the
// brain-dump invariant.
func ParseBrainDumpV1(raw []byte) (artifact.Drafts, error) {
	var payload brainDumpPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return artifact.Drafts{}, fmt.Errorf("%s: not a JSON object: %w", SchemaBrainDumpV1, err)
	}

	if len(payload.Notes) == 0 && len(payload.Tasks) == 0 {
		return artifact.Drafts{}, fmt.Errorf("%s: must contain at least one note or task", SchemaBrainDumpV1)
	}

	drafts := artifact.Drafts{}
	for i, np := range payload.Notes {
		note, err := validateNote(np)
		if err != nil {
			return artifact.Drafts{}, fmt.Errorf("notes[%d]: %w", i, err)
		}
		drafts.Notes = append(drafts.Notes, note)
	}
	for i, tp := range payload.Tasks {
		task, err := validateTask(tp)
		if err != nil {
			return artifact.Drafts{}, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		drafts.Tasks = append(drafts.Tasks, task)
	}
	return drafts, nil
}

func validateNote(payload notePayload) (artifact.NoteDraft, error) {
	if payload.Title == nil || strings.TrimSpace(*payload.Title) == "" {
		return artifact.NoteDraft{}, fmt.Errorf("%s: title is required and must be a non-empty string", SchemaNoteV1)
	}
	if payload.Body == nil || strings.TrimSpace(*payload.Body) == "" {
		return artifact.NoteDraft{}, fmt.Errorf("%s: body is required and must be a non-empty string", SchemaNoteV1)
	}
	return artifact.NoteDraft{
		Title: strings.TrimSpace(*payload.Title),
		Body:  *payload.Body,
		Tags:  payload.Tags,
	}, nil
}

func validateTask(payload taskPayload) (artifact.TaskDraft, error) {
	if payload.Title == nil || strings.TrimSpace(*payload.Title) == "" {
		return artifact.TaskDraft{}, fmt.Errorf("%s: title is required and must be a non-empty string", SchemaTaskV1)
	}

	draft := artifact.TaskDraft{
		Title:       strings.TrimSpace(*payload.Title),
		Description: payload.Description,
	}

	if payload.DueAt != nil && strings.TrimSpace(*payload.DueAt) != "" {
		due, err := parseDueAt(*payload.DueAt)
		if err != nil {
			return artifact.TaskDraft{}, fmt.Errorf("%s: due_at must be an ISO8601 timestamp: %w", SchemaTaskV1, err)
		}
		draft.DueAt = &due
	}

	if payload.Priority != nil && strings.TrimSpace(*payload.Priority) != "" {
		priority := artifact.Priority(strings.ToLower(strings.TrimSpace(*payload.Priority)))
		if !priority.Valid() {
			return artifact.TaskDraft{}, fmt.Errorf("%s: priority must be one of low, medium, high", SchemaTaskV1)
		}
		draft.Priority = &priority
	}

	return draft, nil
}

// parseDueAt accepts RFC3339 timestamps and bare dates.
func parseDueAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
