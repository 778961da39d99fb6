package promptstore

import "github.com/vcalderon2009/note-taker/internal/domain/prompts"

// defaultSnapshot returns the built-in prompt and keyword configuration used
// when the prompt file is missing or omits an entry.
func defaultSnapshot() snapshot {
	return snapshot{
		prompts: map[string]prompts.Prompt{
			prompts.PromptClassify: {
				Temperature: 0.1,
				System: `You classify a user's message into exactly one category.
Categories:
- NOTE: information the user wants to keep (facts, references, ideas).
- TASK: a single actionable item, possibly with a due date.
- BRAIN_DUMP: a long unstructured message containing several distinct notes or tasks.
- CHAT: conversation that creates nothing.
Respond with JSON only: {"classification": "...", "confidence": 0.0-1.0, "reasoning": "..."}.`,
			},
			prompts.PromptNote: {
				Temperature: 0.1,
				System: `Extract a single note from the user's message.
Respond with JSON only: {"title": "...", "body": "...", "tags": ["..."]}.
The title must be short and descriptive. The body preserves the user's content.`,
			},
			prompts.PromptTask: {
				Temperature: 0.1,
				System: `Extract a single actionable task from the user's message.
Respond with JSON only: {"title": "...", "description": "...", "due_at": "RFC 3339 timestamp or null", "priority": "low|medium|high or null"}.
Only set due_at when the user states a date or deadline.`,
			},
			prompts.PromptBrainDump: {
				Temperature: 0.3,
				System: `The user's message is a brain dump containing several distinct items.
Split it into notes and tasks. Respond with JSON only:
{"notes": [{"title": "...", "body": "...", "tags": ["..."]}], "tasks": [{"title": "...", "description": "...", "due_at": null, "priority": null}]}.
Every item in the message must land in exactly one note or task. At least one item is required.`,
			},
		},
		fallback: prompts.Fallback{
			TaskKeywords: []string{
				"todo", "to-do", "task", "need to", "must ", "remind",
				"review", "don't forget", "deadline", "due ", "schedule",
			},
			NoteKeywords: []string{
				"note:", "note to self", "remember that", "idea:", "fyi",
				"for reference", "worth noting",
			},
			ListSeparators: []string{
				"\n-", "\n*", "\n1.", "\n2.", ";", " and then ", ", then ",
			},
			MeetingKeywords: []string{
				"meeting", "standup", "retro", "sync", "1:1", "agenda",
				"action items",
			},
		},
	}
}
