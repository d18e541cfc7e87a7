// Package archive assembles captured mail images into a single PDF digest,
// one image per page, suitable for archival alongside the raw captures.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoImages indicates a digest was requested with no content.
var ErrNoImages = errors.New("no images to archive")

// Digest renders the images into a new PDF document, one page per image,
// in the order given.
func Digest(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	readers := make([]io.Reader, len(images))
	for i, img := range images {
		readers[i] = bytes.NewReader(img)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, nil, nil); err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}
	return buf.Bytes(), nil
}
