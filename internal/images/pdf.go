package images

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfImages extracts every embedded image from a PDF, tagged with its page
// number and intra-page order.
func pdfImages(data []byte) ([]rawImage, error) {
	var raws []rawImage
	perPage := map[int]int{}

	digest := func(img model.Image, singleImgPerPage bool, maxPageDigits int) error {
		buf, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s: %w", img.Name, err)
		}
		idx := perPage[img.PageNr]
		perPage[img.PageNr] = idx + 1
		raws = append(raws, rawImage{
			pageNumber:  img.PageNr,
			indexInPage: idx,
			fileType:    img.FileType,
			data:        buf,
		})
		return nil
	}

	if err := api.ExtractImages(bytes.NewReader(data), nil, digest, nil); err != nil {
		return nil, fmt.Errorf("extract pdf images: %w", err)
	}
	return raws, nil
}
