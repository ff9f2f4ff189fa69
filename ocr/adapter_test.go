package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"reflect"
	"testing"

	"github.com/wudi/packlist/raster"
	"golang.org/x/image/tiff"
)

func testPage(index int) raster.Page {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(1, 1, color.Gray{Y: 200})
	return raster.Page{Index: index, DPI: 299.6, Image: img}
}

func TestInputFromPage(t *testing.T) {
	region := Region{X: 0, Y: 0, Width: 1, Height: 1}
	meta := map[string]string{"psm": "6"}

	in, err := InputFromPage(
		testPage(2),
		WithLanguages("eng", "spa"),
		WithRegion(region),
		WithMetadata(meta),
	)
	if err != nil {
		t.Fatalf("InputFromPage() error = %v", err)
	}
	if in.Format != ImageFormatPNG {
		t.Fatalf("unexpected format: %v", in.Format)
	}
	if in.PageIndex != 2 {
		t.Fatalf("unexpected page index: %d", in.PageIndex)
	}
	if got := in.ID; got != "page-2" {
		t.Fatalf("unexpected id: %s", got)
	}
	if len(in.Image) == 0 {
		t.Fatalf("expected encoded image data")
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "spa"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}
	if in.Region == nil || *in.Region != region {
		t.Fatalf("unexpected region: %#v", in.Region)
	}
	if in.DPI != 300 {
		t.Fatalf("unexpected dpi: %d", in.DPI)
	}
	meta["psm"] = "7"
	if in.Metadata["psm"] != "6" {
		t.Fatalf("metadata was not copied: %+v", in.Metadata)
	}
}

func TestInputFromPageTIFF(t *testing.T) {
	in, err := InputFromPage(testPage(0), WithFormat(ImageFormatTIFF), WithDPI(150))
	if err != nil {
		t.Fatalf("InputFromPage() error = %v", err)
	}
	if in.DPI != 150 {
		t.Fatalf("WithDPI should override page dpi, got %d", in.DPI)
	}
	img, err := tiff.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("decode tiff: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestInputFromPageErrors(t *testing.T) {
	if _, err := InputFromPage(raster.Page{Index: 1}); err == nil {
		t.Fatalf("expected error for page without image")
	}
	if _, err := InputFromPage(testPage(1), WithFormat("image/bmp")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestWithRegionClearsEmpty(t *testing.T) {
	in := Input{Region: &Region{X: 1, Y: 1, Width: 2, Height: 2}}
	WithRegion(Region{})(&in)
	if in.Region != nil {
		t.Fatalf("expected nil region for empty input, got %#v", in.Region)
	}
}

func TestResultLines(t *testing.T) {
	structured := Result{
		PlainText: "ignored",
		Blocks: []TextBlock{
			{Lines: []TextLine{{Text: "CASE LOT"}, {Text: "A1 L1 Y1 d Red 1 2 3 4"}}},
			{Lines: []TextLine{{Text: "TOTAL"}}},
		},
	}
	if got := structured.Lines(); !reflect.DeepEqual(got, []string{"CASE LOT", "A1 L1 Y1 d Red 1 2 3 4", "TOTAL"}) {
		t.Fatalf("structured lines = %q", got)
	}

	plain := Result{
		PlainText: "HEADER\r\nA1 L1 Y1 d Red 1 2 3 4\n\nFOOTER",
		Blocks:    []TextBlock{{Lines: []TextLine{{Text: "HEADER A1 ..."}}}},
	}
	if got := plain.Lines(); !reflect.DeepEqual(got, []string{"HEADER", "A1 L1 Y1 d Red 1 2 3 4", "", "FOOTER"}) {
		t.Fatalf("plain lines = %q", got)
	}

	if got := (Result{}).Lines(); len(got) != 0 {
		t.Fatalf("expected no lines, got %q", got)
	}
}

func TestWithMetadataMerges(t *testing.T) {
	in, err := InputFromPage(testPage(0),
		WithTesseractPSM(6),
		WithMetadata(map[string]string{"tessedit_pageseg_mode": "4", "textord_min_linesize": "2.5"}),
		WithMetadata(nil),
	)
	if err != nil {
		t.Fatalf("InputFromPage() error = %v", err)
	}
	want := map[string]string{"tessedit_pageseg_mode": "4", "textord_min_linesize": "2.5"}
	if !reflect.DeepEqual(in.Metadata, want) {
		t.Fatalf("unexpected metadata: %+v", in.Metadata)
	}
}

func TestParseImageFormat(t *testing.T) {
	cases := map[string]ImageFormat{
		"":     ImageFormatPNG,
		"PNG":  ImageFormatPNG,
		"jpg":  ImageFormatJPEG,
		"jpeg": ImageFormatJPEG,
		"tif":  ImageFormatTIFF,
		"tiff": ImageFormatTIFF,
	}
	for name, want := range cases {
		got, err := ParseImageFormat(name)
		if err != nil || got != want {
			t.Fatalf("ParseImageFormat(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseImageFormat("bmp"); err == nil {
		t.Fatalf("expected error for bmp")
	}
}

func TestInputFromPageJPEG(t *testing.T) {
	in, err := InputFromPage(testPage(0), WithFormat(ImageFormatJPEG))
	if err != nil {
		t.Fatalf("InputFromPage() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}
