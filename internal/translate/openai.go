package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient implements Translator against an OpenAI-compatible
// chat-completions API.
type OpenAIClient struct {
	model      string
	client     openai.Client
	maxRetries uint
	retryDelay time.Duration

	// Stats tracks call latency and token usage within a rolling window.
	Stats *LLMStats
}

// NewOpenAIClient creates a translation client. baseURL may be empty for
// the default API endpoint.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Transient failures are retried here, not in the SDK transport,
		// so backoff and attempt counts stay in one place.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		model:      model,
		client:     openai.NewClient(opts...),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		Stats:      NewLLMStats(time.Hour),
	}
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Translate submits one chunk and returns the translated text with token
// usage. Rate limits and server errors are retried with backoff; other
// failures surface immediately.
func (c *OpenAIClient) Translate(ctx context.Context, req Request) (*Result, error) {
	var result *Result
	start := time.Now()

	err := retry.Do(
		func() error {
			resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model: openai.ChatModel(c.model),
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(req.SystemPrompt),
					openai.UserMessage(req.UserPrompt),
				},
				Temperature: openai.Float(0.1),
			})
			if err != nil {
				var apierr *openai.Error
				if errors.As(err, &apierr) &&
					(apierr.StatusCode == http.StatusTooManyRequests || apierr.StatusCode >= 500) {
					return &RetryableError{StatusCode: apierr.StatusCode, Message: apierr.Error()}
				}
				return retry.Unrecoverable(fmt.Errorf("chat completion: %w", err))
			}
			if len(resp.Choices) == 0 {
				return retry.Unrecoverable(fmt.Errorf("empty response from translation backend"))
			}
			result = &Result{
				Text:         resp.Choices[0].Message.Content,
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	if c.Stats != nil {
		c.Stats.Record(time.Since(start).Milliseconds(), result.InputTokens, result.OutputTokens)
	}
	return result, nil
}
