package images

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
)

// docxImages pulls the media members out of a DOCX archive. DOCX has no
// native page concept, so every image lands on page 0; word/media member
// names carry the insertion order (image1.png, image2.png, ...), which is
// the only ordering signal available.
func docxImages(data []byte, log *slog.Logger) ([]rawImage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	var members []*zip.File
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
		if !displayableImageType(ext) {
			log.Debug("skipping non-displayable docx media", "member", f.Name)
			continue
		}
		members = append(members, f)
	}
	// Lexical order misplaces image10 before image2; compare the numeric
	// part when both names carry one.
	sort.Slice(members, func(i, j int) bool {
		ni, oki := mediaNumber(members[i].Name)
		nj, okj := mediaNumber(members[j].Name)
		if oki && okj && ni != nj {
			return ni < nj
		}
		return members[i].Name < members[j].Name
	})

	var raws []rawImage
	for i, f := range members {
		rc, err := f.Open()
		if err != nil {
			log.Warn("failed to open docx media member", "member", f.Name, "error", err)
			continue
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Warn("failed to read docx media member", "member", f.Name, "error", err)
			continue
		}
		raws = append(raws, rawImage{
			pageNumber:  0,
			indexInPage: i,
			fileType:    strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), "."),
			data:        buf,
		})
	}
	return raws, nil
}

// mediaNumber extracts the ordinal from a media member name such as
// word/media/image12.png.
func mediaNumber(name string) (int, bool) {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	if i == len(base) {
		return 0, false
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// displayableImageType filters out vector formats (emf, wmf) that cannot
// be referenced from Markdown output.
func displayableImageType(ext string) bool {
	switch ext {
	case "png", "jpg", "jpeg", "gif", "bmp", "tiff", "tif":
		return true
	}
	return false
}
