package llm

import (
	"context"
	"unicode/utf8"

	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
)

const (
	// DefaultWindowSize is the number of recent messages considered.
	DefaultWindowSize = 20

	// DefaultTokenBudget bounds the estimated token size of the window.
	DefaultTokenBudget = 4000

	// TokenEstimateRatio estimates ~4 characters per token (conservative estimate).
	TokenEstimateRatio = 4

	// messageOverheadTokens accounts for role and structure per message.
	messageOverheadTokens = 10
)

// EstimateTokenCount provides a rough token estimate for a piece of text.
func EstimateTokenCount(text string) int {
	return utf8.RuneCountInString(text) / TokenEstimateRatio
}

// EstimateMessagesTokenCount estimates total tokens across all messages.
func EstimateMessagesTokenCount(messages []ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += messageOverheadTokens
		total += EstimateTokenCount(msg.Content)
	}
	return total
}

// ContextWindow assembles bounded recent conversation history for the
// classifier and extractor. Pure read, safe to call repeatedly.
type ContextWindow struct {
	messages    conversation.MessageRepository
	windowSize  int
	tokenBudget int
}

// NewContextWindow builds a context window manager over the message store.
func NewContextWindow(messages conversation.MessageRepository, windowSize, tokenBudget int) *ContextWindow {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	return &ContextWindow{
		messages:    messages,
		windowSize:  windowSize,
		tokenBudget: tokenBudget,
	}
}

// Load returns the most recent messages of the conversation as chat messages,
// ordered oldest to newest and trimmed to the token budget.
func (w *ContextWindow) Load(ctx context.Context, conversationID uint) ([]ChatMessage, error) {
	recent, err := w.messages.ListRecent(ctx, conversationID, w.windowSize)
	if err != nil {
		return nil, err
	}

	window := make([]ChatMessage, 0, len(recent))
	for _, msg := range recent {
		window = append(window, ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	return TrimToBudget(window, w.tokenBudget), nil
}

// TrimToBudget drops messages until the estimated token count fits the
// budget. Oldest messages go first; system messages (prior summaries) are
// retained preferentially over user and assistant messages.
func TrimToBudget(messages []ChatMessage, tokenBudget int) []ChatMessage {
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}

	result := make([]ChatMessage, len(messages))
	copy(result, messages)

	for EstimateMessagesTokenCount(result) > tokenBudget && len(result) > 0 {
		removedIdx := -1

		// Phase 1: oldest non-system message.
		for i := 0; i < len(result); i++ {
			if result[i].Role != string(conversation.RoleSystem) {
				removedIdx = i
				break
			}
		}

		// Phase 2: only system messages remain, drop the oldest.
		if removedIdx == -1 {
			removedIdx = 0
		}

		result = append(result[:removedIdx], result[removedIdx+1:]...)
	}

	return result
}
