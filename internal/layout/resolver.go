// Package layout resolves which character ranges of the extracted document
// text belong to figures and must be excised before translation.
package layout

import (
	"log/slog"
	"sort"

	"github.com/dgallion1/doctrans/internal/analysis"
)

// FigureSpan is a contiguous run of characters in the document text that is
// OCR output of a non-text figure. After Resolve the spans are
// non-overlapping and sorted by offset.
type FigureSpan struct {
	FigureIndex int    // correlation hint, not a strict identity after merging
	PageNumber  int
	Offset      int
	Length      int
	Content     string
}

// End returns the exclusive end offset of the span.
func (s FigureSpan) End() int {
	return s.Offset + s.Length
}

// verticalExtentMargin widens a figure's vertical extent when matching
// nearby structural elements, as a fraction of the figure's height.
const verticalExtentMargin = 0.10

// extent is the vertical range of an element on its page. An extent with
// no usable polygon vertices (absent or all-zero) is not valid.
type extent struct {
	minY, maxY float64
	valid      bool
}

// Resolve computes the merged, ordered figure spans for an analysis result.
//
// Each figure contributes its directly-attached spans plus the spans of any
// paragraph or table on the same page whose vertical extent overlaps the
// figure's. The analysis service frequently attributes a figure's OCR text
// to an adjacent text block instead of the figure itself; the vertical
// sweep reclaims it. Spans with offsets outside the document text are
// dropped with a warning, never fatal.
func Resolve(res *analysis.Result, log *slog.Logger) []FigureSpan {
	if log == nil {
		log = slog.Default()
	}
	if res == nil || len(res.Figures) == 0 {
		return nil
	}
	contentLen := len(res.Content)

	type element struct {
		page  int
		ext   extent
		spans []analysis.Span
	}
	elements := make([]element, 0, len(res.Paragraphs)+len(res.Tables))
	for _, p := range res.Paragraphs {
		elements = append(elements, element{
			page:  regionPage(p.BoundingRegions),
			ext:   regionExtent(p.BoundingRegions),
			spans: p.Spans,
		})
	}
	for _, t := range res.Tables {
		elements = append(elements, element{
			page:  regionPage(t.BoundingRegions),
			ext:   regionExtent(t.BoundingRegions),
			spans: t.Spans,
		})
	}

	// One merged span per figure.
	perFigure := make([]FigureSpan, 0, len(res.Figures))
	for i, fig := range res.Figures {
		page := regionPage(fig.BoundingRegions)
		spans := validSpans(fig.Spans, contentLen, i, log)

		figExt := regionExtent(fig.BoundingRegions)
		if figExt.valid {
			margin := (figExt.maxY - figExt.minY) * verticalExtentMargin
			lo, hi := figExt.minY-margin, figExt.maxY+margin
			for _, el := range elements {
				if !el.ext.valid || el.page != page {
					continue
				}
				if el.ext.maxY < lo || el.ext.minY > hi {
					continue
				}
				spans = append(spans, validSpans(el.spans, contentLen, i, log)...)
			}
		}
		// No polygon: the figure keeps its directly-attached spans only.

		if len(spans) == 0 {
			continue
		}
		lo, hi := spans[0].Offset, spans[0].End()
		for _, s := range spans[1:] {
			if s.Offset < lo {
				lo = s.Offset
			}
			if s.End() > hi {
				hi = s.End()
			}
		}
		perFigure = append(perFigure, FigureSpan{
			FigureIndex: i,
			PageNumber:  page,
			Offset:      lo,
			Length:      hi - lo,
		})
	}

	sort.Slice(perFigure, func(i, j int) bool {
		if perFigure[i].Offset != perFigure[j].Offset {
			return perFigure[i].Offset < perFigure[j].Offset
		}
		return perFigure[i].Length > perFigure[j].Length
	})

	// Left-to-right sweep: ranges that touch or overlap collapse into one.
	// The merged span keeps the left-hand figure index as its hint.
	var merged []FigureSpan
	for _, sp := range perFigure {
		if len(merged) > 0 {
			cur := &merged[len(merged)-1]
			if sp.Offset <= cur.End() {
				if sp.End() > cur.End() {
					cur.Length = sp.End() - cur.Offset
				}
				continue
			}
		}
		merged = append(merged, sp)
	}

	for i := range merged {
		merged[i].Content = res.Content[merged[i].Offset:merged[i].End()]
	}
	return merged
}

// validSpans filters out spans whose offsets fall outside the document
// text. Bad offsets mean the analysis result is internally inconsistent;
// the rest of the document is usually still salvageable.
func validSpans(spans []analysis.Span, contentLen, figureIndex int, log *slog.Logger) []analysis.Span {
	out := make([]analysis.Span, 0, len(spans))
	for _, s := range spans {
		if s.Offset < 0 || s.Length < 0 || s.End() > contentLen {
			log.Warn("dropping span with invalid offsets",
				"figure_index", figureIndex,
				"offset", s.Offset,
				"length", s.Length,
				"content_len", contentLen,
			)
			continue
		}
		out = append(out, s)
	}
	return out
}

func regionPage(regions []analysis.BoundingRegion) int {
	if len(regions) == 0 {
		return 0
	}
	return regions[0].PageNumber
}

func regionExtent(regions []analysis.BoundingRegion) extent {
	var e extent
	for _, r := range regions {
		for i := 1; i < len(r.Polygon); i += 2 {
			y := r.Polygon[i]
			if !e.valid {
				e.minY, e.maxY = y, y
				e.valid = true
				continue
			}
			if y < e.minY {
				e.minY = y
			}
			if y > e.maxY {
				e.maxY = y
			}
		}
	}
	// An all-zero polygon means the service returned no real localization.
	if e.valid && e.minY == 0 && e.maxY == 0 {
		e.valid = false
	}
	return e
}
