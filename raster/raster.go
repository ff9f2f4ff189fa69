// Package raster turns PDF pages into images for OCR.
package raster

import (
	"context"
	"image"
)

// DefaultDPI is the resolution scanned packing lists are rendered at.
const DefaultDPI = 300

// Page is one rendered page.
type Page struct {
	// Index is the zero-based page number.
	Index int
	DPI   float64
	Image image.Image
}

// Rasterizer opens documents for page-by-page rendering.
type Rasterizer interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document renders individual pages. Implementations need not be safe for
// concurrent use.
type Document interface {
	NumPage() int
	Render(ctx context.Context, index int, dpi float64) (Page, error)
	Close() error
}
