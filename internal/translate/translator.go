// Package translate submits placeholder-bearing chunks to a translation
// backend and reassembles the results in document order.
package translate

import (
	"context"
	"fmt"
)

// Request is one chunk translation call.
type Request struct {
	Text           string
	TargetLanguage string
	SystemPrompt   string
	UserPrompt     string
}

// Result is the backend's response for one chunk.
type Result struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Translator is the translation backend contract.
type Translator interface {
	Translate(ctx context.Context, req Request) (*Result, error)
}

// RetryableError indicates a transient backend failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
