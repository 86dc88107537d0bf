package images

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store is the blob-store surface the collector needs.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	WaitFor(ctx context.Context, key string) error
}

// rawImage is an image pulled from the source binary before upload.
type rawImage struct {
	pageNumber  int
	indexInPage int
	fileType    string
	data        []byte
}

// Collector extracts raw images from source documents and persists them,
// producing the ordered ExtractedImage list the substitution engine pairs
// with figure spans. Extraction is independent of the analysis service.
type Collector struct {
	store         Store
	maxConcurrent int
	log           *slog.Logger
}

func NewCollector(store Store, maxConcurrent int, log *slog.Logger) *Collector {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		store:         store,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Collect extracts and uploads every image in the document. A single
// failed upload is logged and yields an entry with an empty URL; the
// pipeline continues and the loss is visible in diagnostics rather than
// aborting the document.
func (c *Collector) Collect(ctx context.Context, data []byte, filename, docID string) ([]ExtractedImage, error) {
	raws, err := c.extract(data, filename)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, nil
	}

	// Page order then intra-page order is the pairing key downstream.
	sort.SliceStable(raws, func(i, j int) bool {
		if raws[i].pageNumber != raws[j].pageNumber {
			return raws[i].pageNumber < raws[j].pageNumber
		}
		return raws[i].indexInPage < raws[j].indexInPage
	})

	out := make([]ExtractedImage, len(raws))
	sem := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup

	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw rawImage) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			img := ExtractedImage{
				PageNumber:  raw.pageNumber,
				IndexInPage: raw.indexInPage,
			}
			key := fmt.Sprintf("%s/%s.%s", docID, uuid.New().String(), raw.fileType)
			url, err := c.store.Put(ctx, key, raw.data, contentTypeForImage(raw.fileType))
			if err != nil {
				c.log.Warn("image upload failed, continuing without it",
					"doc_id", docID, "page", raw.pageNumber, "index", raw.indexInPage, "error", err)
				out[i] = img
				return
			}
			if err := c.store.WaitFor(ctx, key); err != nil {
				c.log.Warn("uploaded image not yet visible", "key", key, "error", err)
			}
			img.URL = url
			out[i] = img
		}(i, raw)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collector) extract(data []byte, filename string) ([]rawImage, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return pdfImages(data)
	case ".docx":
		return docxImages(data, c.log)
	case ".png", ".jpg", ".jpeg", ".tiff":
		// The upload itself is the single image.
		return []rawImage{{pageNumber: 1, indexInPage: 0, fileType: strings.TrimPrefix(ext, "."), data: data}}, nil
	default:
		// Text-ish formats carry no embedded binaries we can recover.
		return nil, nil
	}
}

func contentTypeForImage(fileType string) string {
	switch strings.ToLower(fileType) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "tiff", "tif":
		return "image/tiff"
	case "bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
