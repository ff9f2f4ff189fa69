package raster

import (
	"context"
	"fmt"
	"math"

	"github.com/gen2brain/go-fitz"
	"github.com/wudi/packlist/security"
)

// FitzRasterizer renders pages with MuPDF through go-fitz.
type FitzRasterizer struct {
	limits security.Limits
}

// NewFitzRasterizer returns a rasterizer that refuses pages larger than the
// given limits.
func NewFitzRasterizer(limits security.Limits) *FitzRasterizer {
	return &FitzRasterizer{limits: limits}
}

func (r *FitzRasterizer) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &fitzDocument{doc: doc, limits: r.limits}, nil
}

type fitzDocument struct {
	doc    *fitz.Document
	limits security.Limits
}

func (d *fitzDocument) NumPage() int { return d.doc.NumPage() }

func (d *fitzDocument) Render(ctx context.Context, index int, dpi float64) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if index < 0 || index >= d.doc.NumPage() {
		return Page{}, fmt.Errorf("page %d out of range", index)
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	// Bound is in points; check the pixel size before allocating it.
	bounds, err := d.doc.Bound(index)
	if err != nil {
		return Page{}, fmt.Errorf("page %d bounds: %w", index, err)
	}
	w := int(math.Ceil(float64(bounds.Dx()) * dpi / 72))
	h := int(math.Ceil(float64(bounds.Dy()) * dpi / 72))
	if err := d.limits.CheckImageBounds(w, h); err != nil {
		return Page{}, fmt.Errorf("page %d: %w", index, err)
	}
	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return Page{}, fmt.Errorf("render page %d: %w", index, err)
	}
	return Page{Index: index, DPI: dpi, Image: img}, nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }
