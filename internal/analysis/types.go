package analysis

// Span is a character-offset range into Result.Content.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// End returns the exclusive end offset of the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// BoundingRegion anchors an element to a page. Polygon is a flat list of
// x,y vertex coordinates; it may be empty when the analysis service could
// not localize the element.
type BoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

// Figure is a non-text region (image, chart) detected by the analysis
// service. Its spans point at the OCR'd figure content inside
// Result.Content.
type Figure struct {
	Spans           []Span           `json:"spans"`
	BoundingRegions []BoundingRegion `json:"boundingRegions"`
}

// Paragraph is a structural text block with its own location and span(s).
type Paragraph struct {
	Content         string           `json:"content"`
	Role            string           `json:"role,omitempty"`
	Spans           []Span           `json:"spans"`
	BoundingRegions []BoundingRegion `json:"boundingRegions"`
}

// Table is a structural table element. Only its spans and location matter
// to the pipeline; cell contents stay inside Result.Content.
type Table struct {
	RowCount        int              `json:"rowCount"`
	ColumnCount     int              `json:"columnCount"`
	Spans           []Span           `json:"spans"`
	BoundingRegions []BoundingRegion `json:"boundingRegions"`
}

// Result is the document-analysis output consumed by the pipeline:
// one linear Markdown-like text plus the elements that reference it
// by character offset.
type Result struct {
	Content    string      `json:"content"`
	Figures    []Figure    `json:"figures"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables"`
}
