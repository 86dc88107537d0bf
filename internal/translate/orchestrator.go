package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/doctrans/internal/chunker"
)

// Output is the reassembled translation of all chunks.
type Output struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Orchestrator fans chunk translations out to the backend with bounded
// concurrency and reassembles them in original order. Any chunk failure
// fails the whole document; a partially translated document is never
// returned.
type Orchestrator struct {
	backend       Translator
	maxConcurrent int
	log           *slog.Logger
}

func NewOrchestrator(backend Translator, maxConcurrent int, log *slog.Logger) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		backend:       backend,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// TranslateAll translates every chunk into targetLanguage and joins the
// results with a blank-line separator, in original chunk order regardless
// of completion order.
func (o *Orchestrator) TranslateAll(ctx context.Context, chunks []string, targetLanguage string) (*Output, error) {
	if len(chunks) == 0 {
		return &Output{}, nil
	}

	systemPrompt := SystemPrompt(targetLanguage)

	type chunkResult struct {
		idx int
		res *Result
		err error
	}
	results := make(chan chunkResult, len(chunks))
	sem := make(chan struct{}, o.maxConcurrent)

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, chunk := range chunks {
		go func(idx int, text string) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-workCtx.Done():
				results <- chunkResult{idx: idx, err: workCtx.Err()}
				return
			}

			res, err := o.backend.Translate(workCtx, Request{
				Text:           text,
				TargetLanguage: targetLanguage,
				SystemPrompt:   systemPrompt,
				UserPrompt:     UserPrompt(text),
			})
			results <- chunkResult{idx: idx, res: res, err: err}
		}(i, chunk)
	}

	translated := make([]string, len(chunks))
	var out Output
	var firstErr error
	firstErrIdx := -1

	for range chunks {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				firstErrIdx = r.idx
				cancel() // abort remaining chunks
			}
			continue
		}
		translated[r.idx] = strings.TrimSpace(r.res.Text)
		out.InputTokens += r.res.InputTokens
		out.OutputTokens += r.res.OutputTokens
	}

	if firstErr != nil {
		return nil, fmt.Errorf("translate chunk %d/%d: %w", firstErrIdx+1, len(chunks), firstErr)
	}

	out.Text = strings.Join(translated, chunker.Separator)
	o.log.Debug("chunks translated",
		"chunks", len(chunks),
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens,
	)
	return &out, nil
}
