package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/wudi/packlist/raster"
	"golang.org/x/image/tiff"
)

// InputOption mutates an OCR input generated from a rendered page.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion sets the recognition region on the OCR input.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithFormat selects the encoding used for the page image. It must be passed
// to InputFromPage to take effect.
func WithFormat(format ImageFormat) InputOption {
	return func(in *Input) { in.Format = format }
}

// WithMetadata merges engine variables into the input, overriding keys set by
// earlier options.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			return
		}
		if in.Metadata == nil {
			in.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// ParseImageFormat maps a short name (png, jpeg, jpg, tiff, tif) onto an
// ImageFormat. The empty string means PNG.
func ParseImageFormat(name string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "png":
		return ImageFormatPNG, nil
	case "jpeg", "jpg":
		return ImageFormatJPEG, nil
	case "tiff", "tif":
		return ImageFormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

// InputFromPage encodes a rendered page into an OCR input, PNG unless
// WithFormat says otherwise. The generated ID is stable for the page index to
// simplify correlation with downstream results.
func InputFromPage(page raster.Page, opts ...InputOption) (Input, error) {
	if page.Image == nil {
		return Input{}, fmt.Errorf("page %d has no image", page.Index)
	}
	in := Input{
		ID:        fmt.Sprintf("page-%d", page.Index),
		Format:    ImageFormatPNG,
		PageIndex: page.Index,
		DPI:       int(page.DPI + 0.5),
	}
	for _, opt := range opts {
		opt(&in)
	}
	data, err := encodeImage(page.Image, in.Format)
	if err != nil {
		return Input{}, fmt.Errorf("encode page %d: %w", page.Index, err)
	}
	in.Image = data
	return in, nil
}

func encodeImage(img image.Image, format ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case ImageFormatPNG, "":
		err = png.Encode(&buf, img)
	case ImageFormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	case ImageFormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
