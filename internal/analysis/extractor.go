package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists file extensions the service accepts.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".tiff":     true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ContentTypeFor maps a filename to the MIME type sent to the analysis
// service.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".html", ".htm":
		return "text/html"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// Extractor produces the linear document text plus figure/structure
// metadata. With an analysis client it delegates to the remote service;
// without one it extracts text locally and reports zero figures, which
// downstream stages treat as the no-figure path.
type Extractor struct {
	client            *Client
	fallbackPdftotext bool
	log               *slog.Logger
}

func NewExtractor(client *Client, fallbackPdftotext bool, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		client:            client,
		fallbackPdftotext: fallbackPdftotext,
		log:               log,
	}
}

// Remote reports whether the extractor uses the analysis service.
func (e *Extractor) Remote() bool {
	return e.client != nil
}

// Extract returns the analysis result for a document.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (*Result, error) {
	if e.client != nil {
		res, err := e.client.Analyze(ctx, data, ContentTypeFor(filename))
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", filename, err)
		}
		return res, nil
	}

	text, err := e.localText(data, filename)
	if err != nil {
		return nil, fmt.Errorf("local extraction %s: %w", filename, err)
	}
	e.log.Info("degraded-mode extraction", "filename", filename, "chars", len(text))
	return &Result{Content: text}, nil
}
