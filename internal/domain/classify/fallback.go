package classify

import (
	"strings"

	"github.com/vcalderon2009/note-taker/internal/domain/prompts"
)

// Fallback confidence is fixed per rule so degraded classifications are
// reproducible. Rule order is significant: 1 beats 2 beats 3.
const (
	fallbackConfidenceBrainDump = 0.70
	fallbackConfidenceTask      = 0.65
	fallbackConfidenceNote      = 0.60
	fallbackConfidenceChat      = 0.50
)

// DefaultBrainDumpThreshold is the character length above which a message
// with list structure is treated as a brain dump.
const DefaultBrainDumpThreshold = 100

// FallbackClassify applies the deterministic ordered rule chain over the raw
// message text. It never fails and always names the rule that fired.
func FallbackClassify(text string, fb prompts.Fallback, brainDumpThreshold int) Result {
	if brainDumpThreshold <= 0 {
		brainDumpThreshold = DefaultBrainDumpThreshold
	}
	lower := strings.ToLower(text)

	// Rule 1: long message with list structure or meeting language.
	if len(text) > brainDumpThreshold &&
		(containsAny(lower, fb.ListSeparators) || containsAny(lower, fb.MeetingKeywords)) {
		return Result{
			Category:   CategoryBrainDump,
			Confidence: fallbackConfidenceBrainDump,
			Reasoning:  "fallback rule 1: length over threshold with list separators or meeting keywords",
			Source:     SourceFallback,
		}
	}

	// Rule 2: task-indicating keyword.
	if kw, ok := firstMatch(lower, fb.TaskKeywords); ok {
		return Result{
			Category:   CategoryTask,
			Confidence: fallbackConfidenceTask,
			Reasoning:  "fallback rule 2: task keyword \"" + kw + "\"",
			Source:     SourceFallback,
		}
	}

	// Rule 3: note-indicating keyword.
	if kw, ok := firstMatch(lower, fb.NoteKeywords); ok {
		return Result{
			Category:   CategoryNote,
			Confidence: fallbackConfidenceNote,
			Reasoning:  "fallback rule 3: note keyword \"" + kw + "\"",
			Source:     SourceFallback,
		}
	}

	// Rule 4: conversational message, no artifact creation.
	return Result{
		Category:   CategoryChat,
		Confidence: fallbackConfidenceChat,
		Reasoning:  "fallback rule 4: no category keywords matched",
		Source:     SourceFallback,
	}
}

func containsAny(lower string, keywords []string) bool {
	_, ok := firstMatch(lower, keywords)
	return ok
}

func firstMatch(lower string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
