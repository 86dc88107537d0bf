package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplit_SmallTextSingleChunk(t *testing.T) {
	input := "# Title\n\nA short document that easily fits one chunk."
	chunks := Split(input, 1000)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != input {
		t.Errorf("expected input preserved, got %q", chunks[0])
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := Split("   \n\n  ", 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank input, got %d", len(chunks))
	}
}

func TestSplit_HeadingStaysWithSection(t *testing.T) {
	sectionA := "# Alpha\n\n" + strings.Repeat("alpha text. ", 30)
	sectionB := "## Beta\n\n" + strings.Repeat("beta text. ", 30)
	input := sectionA + "\n\n" + sectionB

	// Each section fits alone but not together.
	chunks := Split(input, 450)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "# Alpha") {
		t.Errorf("first chunk should start with its heading, got %q", chunks[0][:20])
	}
	if !strings.HasPrefix(chunks[1], "## Beta") {
		t.Errorf("second chunk should start with its heading, got %q", chunks[1][:20])
	}
}

func TestSplit_GreedyAccumulation(t *testing.T) {
	var sections []string
	for i := 1; i <= 4; i++ {
		sections = append(sections, fmt.Sprintf("# S%d\n\ncontent %d", i, i))
	}
	input := strings.Join(sections, "\n\n")

	// All four fit in one chunk at a generous limit.
	chunks := Split(input, 10000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	for i := 1; i <= 4; i++ {
		if !strings.Contains(chunks[0], fmt.Sprintf("# S%d", i)) {
			t.Errorf("section %d missing from chunk", i)
		}
	}
}

func TestSplit_OversizeSectionSplitsOnParagraphs(t *testing.T) {
	var paras []string
	for i := 0; i < 10; i++ {
		paras = append(paras, strings.Repeat(fmt.Sprintf("p%d ", i), 40))
	}
	input := "# Big\n\n" + strings.Join(paras, "\n\n")

	chunks := Split(input, 500)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for oversize section, got %d", len(chunks))
	}
	// Everything must survive, in order.
	joined := Join(chunks)
	for i := 0; i < 10; i++ {
		if !strings.Contains(joined, fmt.Sprintf("p%d p%d", i, i)) {
			t.Errorf("paragraph %d missing after split", i)
		}
	}
	prev := -1
	for i := 0; i < 10; i++ {
		idx := strings.Index(joined, fmt.Sprintf("p%d p%d", i, i))
		if idx < prev {
			t.Errorf("paragraph %d out of order", i)
		}
		prev = idx
	}
}

func TestSplit_OversizeParagraphKeptWhole(t *testing.T) {
	huge := strings.Repeat("word ", 300) // no blank lines inside
	input := "intro\n\n" + huge

	chunks := Split(input, 200)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, "word word") && len(c) > 200 {
			found = true
		}
	}
	if !found {
		t.Error("expected the indivisible paragraph to remain whole in an oversize chunk")
	}
}

func TestSplit_PlaceholdersNeverSplit(t *testing.T) {
	var parts []string
	for i := 1; i <= 8; i++ {
		parts = append(parts, fmt.Sprintf("Paragraph %d with some text.", i))
		parts = append(parts, fmt.Sprintf("[[IMG_PLACEHOLDER_%03d]]", i))
	}
	input := strings.Join(parts, "\n\n")

	for _, max := range []int{30, 50, 80, 120, 500} {
		chunks := Split(input, max)
		for i, c := range chunks {
			opens := strings.Count(c, "[[")
			closes := strings.Count(c, "]]")
			if opens != closes {
				t.Errorf("max=%d chunk %d has unbalanced placeholder brackets: %q", max, i, c)
			}
		}
		joined := Join(chunks)
		for i := 1; i <= 8; i++ {
			token := fmt.Sprintf("[[IMG_PLACEHOLDER_%03d]]", i)
			if !strings.Contains(joined, token) {
				t.Errorf("max=%d: token %s lost", max, token)
			}
		}
	}
}

func TestSplit_HashInsideCodeFenceDoesNotSplit(t *testing.T) {
	input := "# Real Heading\n\nSome text.\n\n```\n# not a heading\ncode line\n```\n\nMore text."

	chunks := Split(input, 10000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "# not a heading") {
		t.Error("code fence content lost")
	}
}

func TestSplit_ReassemblyIdempotent(t *testing.T) {
	input := "# One\n\n" + strings.Repeat("first section text. ", 20) +
		"\n\n## Two\n\n" + strings.Repeat("second section text. ", 20) +
		"\n\n[[IMG_PLACEHOLDER_001]]\n\n## Three\n\n" + strings.Repeat("third. ", 50)

	first := Split(input, 300)
	second := Split(Join(first), 300)

	if len(first) != len(second) {
		t.Fatalf("chunk count changed on re-split: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d changed on re-split:\nfirst:  %q\nsecond: %q", i, first[i], second[i])
		}
	}
}
