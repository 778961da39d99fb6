package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/domain/prompts"
	"github.com/vcalderon2009/note-taker/internal/domain/retry"
)

// Classifier calls the reasoning provider to categorize a message, falling
// back to the deterministic keyword rules when the provider fails or returns
// an invalid payload. Classify never returns an error by design.
type Classifier struct {
	provider           llm.Provider
	model              string
	prompts            prompts.Source
	policy             retry.Policy
	brainDumpThreshold int
	log                zerolog.Logger
}

// NewClassifier builds a classifier. The retry policy bounds each provider
// attempt with a timeout and allows a single jittered retry.
func NewClassifier(provider llm.Provider, model string, promptSource prompts.Source, policy retry.Policy, brainDumpThreshold int, log zerolog.Logger) *Classifier {
	return &Classifier{
		provider:           provider,
		model:              model,
		prompts:            promptSource,
		policy:             policy,
		brainDumpThreshold: brainDumpThreshold,
		log:                log.With().Str("component", "classifier").Logger(),
	}
}

// modelPayload is the JSON object requested from the provider.
type modelPayload struct {
	Classification string   `json:"classification"`
	Confidence     *float64 `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
}

// Classify resolves the message to a Result, via the provider when possible
// and via the fallback rule chain otherwise.
func (c *Classifier) Classify(ctx context.Context, message string, history []llm.ChatMessage) Result {
	prompt := c.prompts.Prompt(prompts.PromptClassify)

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: prompt.System})
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: "user", Content: message})

	temperature := prompt.Temperature
	req := llm.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &temperature,
	}

	content, err := retry.ExecuteWithResult(ctx, c.policy, func(attemptCtx context.Context, attempt int) (string, error) {
		resp, err := c.provider.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return "", err
		}
		return resp.Content(), nil
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("provider unavailable, using fallback classification")
		return FallbackClassify(message, c.prompts.Fallback(), c.brainDumpThreshold)
	}

	result, err := parseModelResult(content)
	if err != nil {
		c.log.Warn().Err(err).Msg("malformed classification payload, using fallback")
		return FallbackClassify(message, c.prompts.Fallback(), c.brainDumpThreshold)
	}
	return result
}

// parseModelResult validates the provider payload: the category must be one
// of the four known values (case-insensitive) and confidence must be in
// [0, 1]. Any violation is a primary-path failure.
func parseModelResult(content string) (Result, error) {
	var payload modelPayload
	if err := json.Unmarshal([]byte(StripCodeFences(content)), &payload); err != nil {
		return Result{}, fmt.Errorf("decode classification payload: %w", err)
	}

	category := Category(strings.ToUpper(strings.TrimSpace(payload.Classification)))
	if !category.Valid() {
		return Result{}, fmt.Errorf("unknown classification %q", payload.Classification)
	}
	if payload.Confidence == nil || *payload.Confidence < 0 || *payload.Confidence > 1 {
		return Result{}, fmt.Errorf("confidence out of range")
	}

	return Result{
		Category:   category,
		Confidence: *payload.Confidence,
		Reasoning:  payload.Reasoning,
		Source:     SourceModel,
	}, nil
}

// StripCodeFences removes markdown code block wrappers some models add
// around JSON output.
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
