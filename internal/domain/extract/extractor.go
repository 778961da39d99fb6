package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/domain/prompts"
	"github.com/vcalderon2009/note-taker/internal/domain/retry"
)

// Outcome reports how extraction went. Degraded means the schema path failed
// and the raw message was preserved as a note (or, for brain dumps, that no
// artifacts could be recovered at all).
type Outcome struct {
	SchemaRetries int
	Degraded      bool
	Detail        string
}

// Extractor turns a classified message into validated draft artifacts. It
// never errors: the raw user input is preserved as a degraded note rather
// than dropped.
type Extractor struct {
	provider llm.Provider
	model    string
	prompts  prompts.Source
	policy   retry.Policy
	log      zerolog.Logger
}

// NewExtractor builds an extractor. The retry policy bounds each provider
// attempt and caps corrective retries after validation failures.
func NewExtractor(provider llm.Provider, model string, promptSource prompts.Source, policy retry.Policy, log zerolog.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		model:    model,
		prompts:  promptSource,
		policy:   policy,
		log:      log.With().Str("component", "extractor").Logger(),
	}
}

// Extract produces drafts for the given category. CHAT is a no-op.
func (e *Extractor) Extract(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, Outcome) {
	switch category {
	case classify.CategoryChat:
		return artifact.Drafts{}, Outcome{}
	case classify.CategoryNote, classify.CategoryTask, classify.CategoryBrainDump:
	default:
		return artifact.Drafts{}, Outcome{}
	}

	promptName, schemaID := promptFor(category)
	prompt := e.prompts.Prompt(promptName)

	var lastValidationErr error
	retries := 0

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			retries++
			delay := e.policy.CalculateDelay(attempt)
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return e.degrade(category, message, retries, ctx.Err())
				case <-timer.C:
				}
			}
		}

		system := prompt.System
		if lastValidationErr != nil {
			// Tightened prompt: restate the schema and cite the violation.
			system = fmt.Sprintf(
				"%s\n\nYour previous response did not validate against the %s schema: %v.\nRespond with ONLY a single JSON object matching the %s schema. No prose, no markdown.",
				prompt.System, schemaID, lastValidationErr, schemaID,
			)
		}

		content, err := e.callProvider(ctx, system, prompt.Temperature, message, history)
		if err != nil {
			e.log.Warn().Err(err).Str("schema", schemaID).Int("attempt", attempt).Msg("extraction provider call failed")
			lastValidationErr = nil
			continue
		}

		drafts, err := Parse(category, []byte(classify.StripCodeFences(content)))
		if err != nil {
			e.log.Warn().Err(err).Str("schema", schemaID).Int("attempt", attempt).Msg("extraction payload failed validation")
			lastValidationErr = err
			continue
		}

		return drafts, Outcome{SchemaRetries: retries}
	}

	return e.degrade(category, message, retries, lastValidationErr)
}

// Parse validates a raw payload against the schema for the category.
func Parse(category classify.Category, raw []byte) (artifact.Drafts, error) {
	switch category {
	case classify.CategoryNote:
		note, err := ParseNoteV1(raw)
		if err != nil {
			return artifact.Drafts{}, err
		}
		return artifact.Drafts{Notes: []artifact.NoteDraft{note}}, nil
	case classify.CategoryTask:
		task, err := ParseTaskV1(raw)
		if err != nil {
			return artifact.Drafts{}, err
		}
		return artifact.Drafts{Tasks: []artifact.TaskDraft{task}}, nil
	case classify.CategoryBrainDump:
		return ParseBrainDumpV1(raw)
	}
	return artifact.Drafts{}, fmt.Errorf("no extraction schema for category %s", category)
}

// degrade guarantees the user's input is not silently dropped. Simple
// categories fall back to a raw note; a brain dump that yielded nothing is
// returned empty so the pipeline can reclassify the message as chat.
func (e *Extractor) degrade(category classify.Category, message string, retries int, cause error) (artifact.Drafts, Outcome) {
	detail := "extraction degraded"
	if cause != nil {
		detail = fmt.Sprintf("extraction degraded: %v", cause)
	}

	if category == classify.CategoryBrainDump {
		return artifact.Drafts{}, Outcome{SchemaRetries: retries, Degraded: true, Detail: detail}
	}

	note := artifact.NoteDraft{
		Title: artifact.ExcerptTitle(message, 80),
		Body:  message,
	}
	return artifact.Drafts{Notes: []artifact.NoteDraft{note}}, Outcome{SchemaRetries: retries, Degraded: true, Detail: detail}
}

func (e *Extractor) callProvider(ctx context.Context, system string, temperature float64, message string, history []llm.ChatMessage) (string, error) {
	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: "user", Content: message})

	attemptCtx := ctx
	cancel := func() {}
	if e.policy.AttemptTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, e.policy.AttemptTimeout)
	}
	defer cancel()

	resp, err := e.provider.CreateChatCompletion(attemptCtx, llm.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

func promptFor(category classify.Category) (promptName, schemaID string) {
	switch category {
	case classify.CategoryTask:
		return prompts.PromptTask, SchemaTaskV1
	case classify.CategoryBrainDump:
		return prompts.PromptBrainDump, SchemaBrainDumpV1
	default:
		return prompts.PromptNote, SchemaNoteV1
	}
}
