package translate

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockTranslator uppercases its input and records call counts; failOn
// makes one chunk fail to exercise the abort path.
type mockTranslator struct {
	calls  atomic.Int64
	failOn string
	delay  time.Duration
}

func (m *mockTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.failOn != "" && strings.Contains(req.Text, m.failOn) {
		return nil, fmt.Errorf("backend rejected chunk")
	}
	return &Result{
		Text:         strings.ToUpper(req.Text),
		InputTokens:  int64(len(req.Text)),
		OutputTokens: int64(len(req.Text)) + 1,
	}, nil
}

func TestTranslateAll_OrderPreserved(t *testing.T) {
	chunks := []string{"alpha", "beta", "gamma", "delta"}
	o := NewOrchestrator(&mockTranslator{}, 4, nil)

	out, err := o.TranslateAll(context.Background(), chunks, "French")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "ALPHA\n\nBETA\n\nGAMMA\n\nDELTA"
	if out.Text != want {
		t.Errorf("expected %q, got %q", want, out.Text)
	}
}

func TestTranslateAll_TokenTotals(t *testing.T) {
	chunks := []string{"aa", "bbb"}
	o := NewOrchestrator(&mockTranslator{}, 2, nil)

	out, err := o.TranslateAll(context.Background(), chunks, "German")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.InputTokens != 5 {
		t.Errorf("expected 5 input tokens, got %d", out.InputTokens)
	}
	if out.OutputTokens != 7 {
		t.Errorf("expected 7 output tokens, got %d", out.OutputTokens)
	}
}

func TestTranslateAll_ChunkFailureFailsDocument(t *testing.T) {
	chunks := []string{"one", "two", "poison", "four"}
	o := NewOrchestrator(&mockTranslator{failOn: "poison"}, 2, nil)

	out, err := o.TranslateAll(context.Background(), chunks, "Spanish")
	if err == nil {
		t.Fatal("expected error when a chunk fails")
	}
	if out != nil {
		t.Errorf("expected no partial output, got %+v", out)
	}
	if !strings.Contains(err.Error(), "backend rejected chunk") {
		t.Errorf("expected backend error surfaced, got %v", err)
	}
}

func TestTranslateAll_EmptyInput(t *testing.T) {
	o := NewOrchestrator(&mockTranslator{}, 2, nil)
	out, err := o.TranslateAll(context.Background(), nil, "Italian")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "" || out.InputTokens != 0 {
		t.Errorf("expected empty output, got %+v", out)
	}
}

func TestTranslateAll_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockTranslator{delay: 50 * time.Millisecond}
	o := NewOrchestrator(m, 2, nil)

	_, err := o.TranslateAll(ctx, []string{"a", "b", "c"}, "Japanese")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestTranslateAll_ConcurrencyBounded(t *testing.T) {
	// With a bound of 1 the calls serialize; completion still assembles
	// in document order.
	chunks := []string{"c1", "c2", "c3"}
	o := NewOrchestrator(&mockTranslator{delay: time.Millisecond}, 1, nil)

	out, err := o.TranslateAll(context.Background(), chunks, "Korean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "C1\n\nC2\n\nC3" {
		t.Errorf("unexpected assembly: %q", out.Text)
	}
}

func TestSystemPrompt_MentionsPlaceholders(t *testing.T) {
	p := SystemPrompt("French")
	if !strings.Contains(p, "[[IMG_PLACEHOLDER_NNN]]") {
		t.Error("system prompt must name the placeholder token family")
	}
	if !strings.Contains(p, "French") {
		t.Error("system prompt must name the target language")
	}
}
