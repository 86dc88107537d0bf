package analysis

import "unicode/utf8"

// spansToByteOffsets rewrites every span from the code-point offsets the
// service reports (the analyze request pins stringIndexType=unicodeCodePoint)
// into byte offsets into Content. Everything downstream slices Content by
// byte, so the conversion happens exactly once, here.
func (r *Result) spansToByteOffsets() {
	if r == nil {
		return
	}
	idx := runeByteIndex(r.Content)
	for i := range r.Figures {
		convertSpans(r.Figures[i].Spans, idx)
	}
	for i := range r.Paragraphs {
		convertSpans(r.Paragraphs[i].Spans, idx)
	}
	for i := range r.Tables {
		convertSpans(r.Tables[i].Spans, idx)
	}
}

// runeByteIndex maps each code-point index of s to its byte offset, with a
// trailing entry for the end of the string.
func runeByteIndex(s string) []int {
	idx := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		idx = append(idx, i)
	}
	return append(idx, len(s))
}

func convertSpans(spans []Span, idx []int) {
	runes := len(idx) - 1
	for i, s := range spans {
		if s.Offset < 0 || s.Length < 0 || s.Offset+s.Length > runes {
			// Out-of-range character spans stay invalid in byte terms so
			// the resolver drops them with a warning.
			spans[i] = Span{Offset: -1, Length: s.Length}
			continue
		}
		start := idx[s.Offset]
		spans[i] = Span{Offset: start, Length: idx[s.Offset+s.Length] - start}
	}
}
