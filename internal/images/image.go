package images

import "fmt"

// ExtractedImage is one image pulled from the source binary and persisted
// to the blob store. Ordering (page, index in page) is the only correlation
// key available for pairing images with figure spans.
type ExtractedImage struct {
	PageNumber  int    `json:"page_number"`
	IndexInPage int    `json:"index_in_page"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Markup renders the image as a Markdown reference ready for embedding.
// Images whose upload failed have no URL and render as nothing rather
// than as a broken reference.
func (img ExtractedImage) Markup() string {
	if img.URL == "" {
		return ""
	}
	desc := img.Description
	if desc == "" {
		desc = fmt.Sprintf("Image p%d-%d", img.PageNumber, img.IndexInPage)
	}
	return fmt.Sprintf("![%s](%s)", desc, img.URL)
}
