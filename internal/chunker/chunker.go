// Package chunker splits placeholder-bearing Markdown into size-bounded
// chunks for translation, keeping headings attached to their sections and
// never cutting through a placeholder token.
package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Separator joins translated chunks back into one document.
const Separator = "\n\n"

// DefaultMaxChars bounds a chunk when the caller passes no limit.
const DefaultMaxChars = 6000

// Split breaks text into ordered chunks of at most maxChars characters,
// splitting on heading boundaries first and blank-line paragraph boundaries
// inside oversize sections. A single paragraph larger than maxChars becomes
// its own oversize chunk rather than being cut mid-paragraph.
func Split(input string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	add := func(part string) {
		if current.Len() > 0 && current.Len()+len(Separator)+len(part) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(Separator)
		}
		current.WriteString(part)
	}

	for _, section := range splitSections(input) {
		if len(section) <= maxChars {
			add(section)
			continue
		}
		// Oversize section: fall back to paragraph boundaries.
		for _, para := range splitParagraphs(section) {
			add(para)
		}
	}
	flush()

	return mergeBrokenPlaceholders(chunks)
}

// Join reassembles chunks in order.
func Join(chunks []string) string {
	return strings.Join(chunks, Separator)
}

// splitSections cuts the text before every heading line, keeping each
// heading with the content that follows it. Headings are located through
// the Markdown AST so that # characters inside code fences do not split.
func splitSections(input string) []string {
	src := []byte(input)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var boundaries []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		start := lineStart(src, h.Lines().At(0).Start)
		if start > 0 {
			boundaries = append(boundaries, start)
		}
	}

	var sections []string
	prev := 0
	for _, b := range boundaries {
		if s := strings.TrimSpace(input[prev:b]); s != "" {
			sections = append(sections, s)
		}
		prev = b
	}
	if s := strings.TrimSpace(input[prev:]); s != "" {
		sections = append(sections, s)
	}
	return sections
}

// lineStart walks back from a byte offset to the start of its line.
// Goldmark heading segments begin after the # markers.
func lineStart(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}

func splitParagraphs(section string) []string {
	parts := strings.Split(section, "\n\n")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeBrokenPlaceholders re-joins any adjacent chunks where a boundary
// landed strictly between a placeholder's opening [[ and closing ]].
// Heading and paragraph boundaries cannot produce this (tokens contain no
// newline), so this is a guard against future splitting changes.
func mergeBrokenPlaceholders(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if len(out) > 0 && insidePlaceholder(out[len(out)-1]) {
			out[len(out)-1] = out[len(out)-1] + Separator + c
			continue
		}
		out = append(out, c)
	}
	return out
}

// insidePlaceholder reports whether the chunk ends inside an open
// placeholder token.
func insidePlaceholder(chunk string) bool {
	open := strings.LastIndex(chunk, "[[")
	if open < 0 {
		return false
	}
	return !strings.Contains(chunk[open:], "]]")
}
