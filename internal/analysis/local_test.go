package analysis

import (
	"strings"
	"testing"
)

func TestHTMLText_HeadingsBecomeMarkdown(t *testing.T) {
	input := `<html><head><title>Doc</title></head><body>
<h1>Report</h1>
<p>Intro paragraph.</p>
<h2>Details</h2>
<p>Body text.</p>
</body></html>`

	text, err := htmlText([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(text, "# Report") {
		t.Errorf("expected h1 as markdown heading, got %q", text)
	}
	if !strings.Contains(text, "## Details") {
		t.Errorf("expected h2 as markdown heading, got %q", text)
	}
	if !strings.Contains(text, "Intro paragraph.") {
		t.Errorf("expected paragraph text, got %q", text)
	}
}

func TestHTMLText_SkipsScriptAndStyle(t *testing.T) {
	input := `<html><body><script>var x = 1;</script><style>p{}</style><p>Visible.</p></body></html>`

	text, err := htmlText([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(text, "var x") {
		t.Errorf("script content leaked into text: %q", text)
	}
	if !strings.Contains(text, "Visible.") {
		t.Errorf("expected visible text, got %q", text)
	}
}

func TestLocalText_MarkdownPassthrough(t *testing.T) {
	e := NewExtractor(nil, false, nil)
	input := "# Title\r\n\r\nBody line.\r\n"
	text, err := e.localText([]byte(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Title\n\nBody line.\n"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}

func TestLocalText_ImageHasNoText(t *testing.T) {
	e := NewExtractor(nil, false, nil)
	text, err := e.localText([]byte{0x89, 0x50, 0x4e, 0x47}, "scan.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text for image input, got %q", text)
	}
}

func TestLocalText_UnsupportedExtension(t *testing.T) {
	e := NewExtractor(nil, false, nil)
	if _, err := e.localText([]byte("x"), "archive.zip"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"report.pdf", true},
		{"report.PDF", true},
		{"notes.docx", true},
		{"page.html", true},
		{"scan.jpeg", true},
		{"archive.zip", false},
		{"noext", false},
	}
	for _, c := range cases {
		if got := IsSupportedExtension(c.filename); got != c.want {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", c.filename, got, c.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor("a.pdf"); got != "application/pdf" {
		t.Errorf("unexpected content type for pdf: %q", got)
	}
	if got := ContentTypeFor("a.docx"); !strings.Contains(got, "wordprocessingml") {
		t.Errorf("unexpected content type for docx: %q", got)
	}
	if got := ContentTypeFor("a.bin"); got != "application/octet-stream" {
		t.Errorf("unexpected default content type: %q", got)
	}
}
