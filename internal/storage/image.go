package storage

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when an upload does not decode as a supported image.
var ErrNotImage = errors.New("file is not a supported image")

// ImageInfo holds the decoded header of an image.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// ContentType returns the MIME type for the decoded format.
func (i ImageInfo) ContentType() string {
	return "image/" + i.Format
}

// InspectImage decodes the image header of r and rewinds it.
func InspectImage(r io.ReadSeeker) (ImageInfo, error) {
	if r == nil {
		return ImageInfo{}, ErrEmptyFile
	}
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, ErrNotImage
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return ImageInfo{}, fmt.Errorf("rewind image: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
