package security

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrTooManyPages  = errors.New("document exceeds page limit")
	ErrImageTooLarge = errors.New("page image exceeds pixel limit")
)

// Limits defines resource boundaries for processing scanned documents.
// A zero value for any field disables that check.
type Limits struct {
	// Maximum input file size in bytes. Default: 200 MB.
	MaxFileSize int64

	// Maximum number of pages rasterized per document. Default: 500.
	MaxPages int

	// Maximum width or height of a rasterized page. Default: 32768.
	MaxPageDimension int

	// Maximum pixel count of a rasterized page. Default: 64 MP, which keeps an
	// RGBA buffer under 256 MB.
	MaxPagePixels int64

	// Maximum OCR time per page. Default: 2m.
	MaxPageTime time.Duration

	// Maximum total processing time per document. Default: 10m.
	MaxDocumentTime time.Duration
}

// DefaultLimits returns a Limits struct with safe default values.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:      200 * 1024 * 1024, // 200 MB
		MaxPages:         500,
		MaxPageDimension: 32768,
		MaxPagePixels:    64 * 1024 * 1024,
		MaxPageTime:      2 * time.Minute,
		MaxDocumentTime:  10 * time.Minute,
	}
}

// CheckFileSize reports ErrFileTooLarge when size is over the limit.
func (l Limits) CheckFileSize(size int64) error {
	if l.MaxFileSize > 0 && size > l.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, l.MaxFileSize)
	}
	return nil
}

// CheckPageCount reports ErrTooManyPages when n is over the limit.
func (l Limits) CheckPageCount(n int) error {
	if l.MaxPages > 0 && n > l.MaxPages {
		return fmt.Errorf("%w: %d pages (max %d)", ErrTooManyPages, n, l.MaxPages)
	}
	return nil
}

// CheckImageBounds rejects degenerate or oversized page images.
func (l Limits) CheckImageBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image bounds invalid (%d x %d)", width, height)
	}
	if l.MaxPageDimension > 0 && (width > l.MaxPageDimension || height > l.MaxPageDimension) {
		return fmt.Errorf("%w: dimension %d x %d (max %d)", ErrImageTooLarge, width, height, l.MaxPageDimension)
	}
	pixels := int64(width) * int64(height)
	if l.MaxPagePixels > 0 && pixels > l.MaxPagePixels {
		return fmt.Errorf("%w: %d pixels (max %d)", ErrImageTooLarge, pixels, l.MaxPagePixels)
	}
	return nil
}
