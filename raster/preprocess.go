package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// PreprocessOptions controls the cleanup applied to a page before OCR.
type PreprocessOptions struct {
	// Threshold binarizes the grayscale image: luminance below it becomes
	// black, the rest white. Zero leaves the image grayscale.
	Threshold uint8
	// MinWidth upscales pages narrower than this many pixels. Zero disables
	// scaling.
	MinWidth int
}

// Enabled reports whether Preprocess would change anything beyond the
// grayscale conversion.
func (o PreprocessOptions) Enabled() bool { return o.Threshold > 0 || o.MinWidth > 0 }

// Preprocess converts a page to grayscale, optionally upscales it and applies a
// global threshold. The returned page shares nothing with the input.
func Preprocess(p Page, opts PreprocessOptions) Page {
	src := p.Image
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)

	dpi := p.DPI
	if opts.MinWidth > 0 && b.Dx() > 0 && b.Dx() < opts.MinWidth {
		scale := float64(opts.MinWidth) / float64(b.Dx())
		h := int(float64(b.Dy())*scale + 0.5)
		scaled := image.NewGray(image.Rect(0, 0, opts.MinWidth, h))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), dst, dst.Bounds(), xdraw.Src, nil)
		dst = scaled
		dpi *= scale
	}

	if opts.Threshold > 0 {
		binarize(dst, opts.Threshold)
	}
	return Page{Index: p.Index, DPI: dpi, Image: dst}
}

func binarize(img *image.Gray, threshold uint8) {
	for i, y := range img.Pix {
		if y < threshold {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
}
