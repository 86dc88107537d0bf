// Package placeholder replaces resolved figure spans with inert tokens
// before translation and maps the tokens back to image markup afterwards.
package placeholder

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/doctrans/internal/images"
	"github.com/dgallion1/doctrans/internal/layout"
)

// Token returns the inert placeholder token for a 1-based ordinal.
func Token(ordinal int) string {
	return fmt.Sprintf("[[IMG_PLACEHOLDER_%03d]]", ordinal)
}

// Mapping pairs each placeholder token with its final image markup.
// Entries with empty markup are placeholders no image could be paired with.
type Mapping map[string]string

// SubstitutionResult is the output of Substitute.
type SubstitutionResult struct {
	Text    string
	Mapping Mapping

	// Diagnostics.
	Ordinals        int // total placeholders emitted
	UnpairedSpans   int // spans with no image to map to
	AppendedImages  int // images with no span, appended at document end
}

var blankLineRuns = regexp.MustCompile(`\n{3,}`)

// Substitute excises each figure span from the document text, replacing it
// with a numbered placeholder, and builds the token-to-markup mapping by
// pairing spans with images positionally. Images beyond the span count get
// trailing ordinals appended at the document end; spans beyond the image
// count map to empty markup.
//
// Spans must be non-overlapping and sorted by offset (layout.Resolve output).
func Substitute(text string, spans []layout.FigureSpan, imgs []images.ExtractedImage, log *slog.Logger) SubstitutionResult {
	if log == nil {
		log = slog.Default()
	}

	res := SubstitutionResult{Mapping: make(Mapping, len(spans)+len(imgs))}

	// Replace in descending offset order so earlier offsets stay valid.
	// Ordinals follow the ascending span order regardless.
	for i := len(spans) - 1; i >= 0; i-- {
		sp := spans[i]
		ordinal := i + 1
		token := Token(ordinal)
		text = text[:sp.Offset] + "\n\n" + token + "\n\n" + text[sp.End():]

		if i < len(imgs) {
			res.Mapping[token] = imgs[i].Markup()
		} else {
			res.Mapping[token] = ""
			res.UnpairedSpans++
			log.Warn("no image for figure span", "ordinal", ordinal, "offset", sp.Offset, "length", sp.Length)
		}
	}

	// Images with no corresponding span (common for Word sources with no
	// usable figure metadata) continue the ordinal sequence at the end.
	var trailing strings.Builder
	for j := len(spans); j < len(imgs); j++ {
		ordinal := j + 1
		token := Token(ordinal)
		trailing.WriteString("\n\n")
		trailing.WriteString(token)
		res.Mapping[token] = imgs[j].Markup()
		res.AppendedImages++
	}
	if trailing.Len() > 0 {
		text += trailing.String() + "\n"
	}

	res.Ordinals = len(spans) + res.AppendedImages
	res.Text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return res
}

// Normalize applies the same blank-line collapsing Substitute performs,
// for callers that need to compare texts against substituted output.
func Normalize(text string) string {
	return blankLineRuns.ReplaceAllString(text, "\n\n")
}
