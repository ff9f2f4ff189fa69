package ocr

import (
	"context"
	"strings"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
)

// Region describes a rectangular area in pixel coordinates with the origin in
// the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input is one encoded page image plus recognition hints.
type Input struct {
	// ID is echoed back in Result.InputID.
	ID        string
	Image     []byte
	Format    ImageFormat
	PageIndex int
	// DPI of the rendered page; zero means unknown.
	DPI int
	// Languages are tesseract trained-data names such as "eng" or "deu".
	Languages []string
	// Region limits recognition to part of the page. Nil means the whole page.
	Region *Region
	// Metadata carries engine variables, e.g. tessedit_pageseg_mode.
	Metadata map[string]string
}

// TextWord is one recognized word with a confidence in [0, 1].
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// TextLine is one line of a packing list as the engine segmented it.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// TextBlock holds the lines of one layout block.
type TextBlock struct {
	Text       string
	Bounds     Region
	Lines      []TextLine
	Confidence float64
}

// Result is what the engine read from one Input.
type Result struct {
	PageIndex int
	InputID   string
	PlainText string
	Blocks    []TextBlock
	// Language is the first requested language, if any.
	Language string
}

// Engine recognizes one page image at a time.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Lines returns the recognized lines in reading order. Structured lines are
// preferred when the engine reports more than one; otherwise PlainText is split
// on newlines.
func (r Result) Lines() []string {
	var lines []string
	for _, b := range r.Blocks {
		for _, l := range b.Lines {
			lines = append(lines, l.Text)
		}
	}
	if len(lines) > 1 {
		return lines
	}
	if r.PlainText == "" {
		return lines
	}
	return strings.Split(strings.ReplaceAll(r.PlainText, "\r\n", "\n"), "\n")
}
