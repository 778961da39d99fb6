// Package llmprovider implements llm.Provider against an OpenAI-compatible
// chat completions endpoint.
package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/domain/retry"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/metrics"
)

// Client implements the llm.Provider interface.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client. The timeout bounds a single HTTP
// exchange; per-attempt deadlines come from the caller's context.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}
	return &Client{httpClient: httpClient}
}

// CreateChatCompletion calls the reasoner's /v1/chat/completions.
func (c *Client) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	var completion llm.ChatCompletionResponse

	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordLLMCall("error", elapsed)
		return nil, fmt.Errorf("call reasoner: %w", err)
	}
	if resp.IsError() {
		metrics.RecordLLMCall("http_error", elapsed)
		statusErr := &llm.StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
		if !statusErr.Transient() {
			return nil, retry.Permanent(statusErr)
		}
		return nil, statusErr
	}

	metrics.RecordLLMCall("ok", elapsed)
	return &completion, nil
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)
