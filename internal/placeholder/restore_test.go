package placeholder

import (
	"strings"
	"testing"
)

func TestRestore_ExactToken(t *testing.T) {
	mapping := Mapping{
		"[[IMG_PLACEHOLDER_001]]": "![a](https://blobs/a.png)",
	}
	text := "Before\n\n[[IMG_PLACEHOLDER_001]]\n\nAfter"

	out, stats := Restore(text, mapping, nil)

	if !strings.Contains(out, "![a](https://blobs/a.png)") {
		t.Errorf("markup not substituted: %q", out)
	}
	if strings.Contains(out, "IMG_PLACEHOLDER") {
		t.Errorf("raw placeholder leaked: %q", out)
	}
	// The exact token also satisfies the tolerant pattern.
	if stats.TolerantMatches+stats.ExactMatches != 1 {
		t.Errorf("expected one match, got %+v", stats)
	}
	if stats.Appended != 0 {
		t.Errorf("expected no appends, got %d", stats.Appended)
	}
}

func TestRestore_TolerantVariants(t *testing.T) {
	cases := []string{
		"[IMG_PLACEHOLDER_1]",       // single brackets, no leading zeros
		"[[IMG_PLACEHOLDER_1]]",     // dropped zeros only
		"[[img_placeholder_001]]",   // lowercased
		"[[ IMG_PLACEHOLDER_001 ]]", // internal whitespace
		"[[IMAGE_001]]",             // renamed token family
		"[[PLACEHOLDER 1]]",         // renamed, space separator
		"[[IMG PLACEHOLDER 001]]",   // separators swapped to spaces
		"[[[IMG_PLACEHOLDER_001]]]", // extra brackets
		"[[IMAGE_PLACEHOLDER_001]]", // IMG expanded to IMAGE
	}

	for _, variant := range cases {
		mapping := Mapping{"[[IMG_PLACEHOLDER_001]]": "![x](https://blobs/x.png)"}
		text := "Start\n\n" + variant + "\n\nEnd"

		out, stats := Restore(text, mapping, nil)

		if !strings.Contains(out, "![x](https://blobs/x.png)") {
			t.Errorf("variant %q: markup not substituted: %q", variant, out)
			continue
		}
		if strings.Contains(strings.ToUpper(out), "PLACEHOLDER") {
			t.Errorf("variant %q: placeholder residue: %q", variant, out)
		}
		if stats.TolerantMatches != 1 {
			t.Errorf("variant %q: expected tolerant match, got %+v", variant, stats)
		}
		if stats.Appended != 0 {
			t.Errorf("variant %q: unexpected append, got %+v", variant, stats)
		}
	}
}

func TestRestore_OrdinalBoundary(t *testing.T) {
	// Ordinal 1's tolerant pattern must not consume ordinal 10 or 12.
	mapping := Mapping{
		"[[IMG_PLACEHOLDER_001]]": "![one](https://blobs/1.png)",
		"[[IMG_PLACEHOLDER_010]]": "![ten](https://blobs/10.png)",
		"[[IMG_PLACEHOLDER_012]]": "![twelve](https://blobs/12.png)",
	}
	text := "[[IMG_PLACEHOLDER_001]] mid [[IMG_PLACEHOLDER_010]] mid [[IMG_PLACEHOLDER_012]]"

	out, stats := Restore(text, mapping, nil)

	for _, markup := range []string{"![one](https://blobs/1.png)", "![ten](https://blobs/10.png)", "![twelve](https://blobs/12.png)"} {
		if strings.Count(out, markup) != 1 {
			t.Errorf("expected exactly one %q, output %q", markup, out)
		}
	}
	if stats.Appended != 0 {
		t.Errorf("expected no appends, got %+v", stats)
	}
}

func TestRestore_MissingPlaceholderAppended(t *testing.T) {
	// The translator dropped the placeholder entirely; the image must
	// still appear, at the document end.
	mapping := Mapping{
		"[[IMG_PLACEHOLDER_001]]": "![lost](https://blobs/lost.png)",
	}
	text := "The translator rewrote everything."

	out, stats := Restore(text, mapping, nil)

	if !strings.HasSuffix(strings.TrimSpace(out), "![lost](https://blobs/lost.png)") {
		t.Errorf("expected image appended at end, got %q", out)
	}
	if stats.Appended != 1 {
		t.Errorf("expected 1 append, got %+v", stats)
	}
}

func TestRestore_EmptyMarkupRemovesToken(t *testing.T) {
	// A placeholder whose image upload failed resolves to nothing, but the
	// raw token must not reach the caller.
	mapping := Mapping{
		"[[IMG_PLACEHOLDER_001]]": "",
	}
	text := "Before [[IMG_PLACEHOLDER_001]] after."

	out, stats := Restore(text, mapping, nil)

	if strings.Contains(out, "PLACEHOLDER") {
		t.Errorf("raw token exposed: %q", out)
	}
	if stats.EmptyMarkup != 1 {
		t.Errorf("expected 1 empty markup, got %+v", stats)
	}
	if stats.Appended != 0 {
		t.Errorf("nothing to append for empty markup, got %+v", stats)
	}
}

func TestRestore_AllMarkupPresent(t *testing.T) {
	// Restoration completeness: every non-empty markup appears in the
	// final text whether matched in place or appended.
	mapping := Mapping{
		"[[IMG_PLACEHOLDER_001]]": "![a](https://blobs/a.png)",
		"[[IMG_PLACEHOLDER_002]]": "![b](https://blobs/b.png)",
		"[[IMG_PLACEHOLDER_003]]": "![c](https://blobs/c.png)",
	}
	// 001 survives exactly, 002 is mangled, 003 is gone.
	text := "x [[IMG_PLACEHOLDER_001]] y [IMAGE 2] z"

	out, _ := Restore(text, mapping, nil)

	for token, markup := range mapping {
		if !strings.Contains(out, markup) {
			t.Errorf("markup for %s missing from output %q", token, out)
		}
	}
}

func TestRestore_AppendedKeepOrdinalOrder(t *testing.T) {
	mapping := Mapping{
		"[[IMG_PLACEHOLDER_002]]": "![b](https://blobs/b.png)",
		"[[IMG_PLACEHOLDER_001]]": "![a](https://blobs/a.png)",
	}
	out, stats := Restore("no placeholders here", mapping, nil)

	if stats.Appended != 2 {
		t.Fatalf("expected 2 appends, got %+v", stats)
	}
	ia := strings.Index(out, "![a](https://blobs/a.png)")
	ib := strings.Index(out, "![b](https://blobs/b.png)")
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("appended images out of ordinal order: %q", out)
	}
}

func TestRestore_MarkupWithDollarSigns(t *testing.T) {
	// Signed blob URLs can contain $; regex replacement must not expand it.
	markup := "![img](https://blobs/x.png?sig=$1$abc)"
	mapping := Mapping{"[[IMG_PLACEHOLDER_001]]": markup}

	got, stats := Restore("Before [IMG_PLACEHOLDER_1] after", mapping, nil)
	if !strings.Contains(got, markup) {
		t.Errorf("expected literal markup %q in output, got %q", markup, got)
	}
	if stats.TolerantMatches != 1 {
		t.Errorf("expected 1 tolerant match, got %d", stats.TolerantMatches)
	}
}
