package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"github.com/wudi/packlist/ocr"
	"github.com/wudi/packlist/raster"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderLines(lines ...string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 420, 40+30*len(lines)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	for i, l := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(10, 30+30*i),
		}
		d.DrawString(l)
	}
	return img
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	page := raster.Page{Index: 0, DPI: 300, Image: renderLines("Hello PDF")}
	res, err := ocr.RecognizePage(context.Background(), ocr.DefaultEngine(), page, ocr.WithLanguages("eng"))
	if err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	got := strings.ToLower(res.PlainText)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "pdf") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
	if len(res.Blocks) == 0 || len(res.Blocks[0].Lines) == 0 {
		t.Fatalf("expected structured blocks")
	}
	if res.InputID != "page-0" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
}

func TestTesseractEngineReportsLines(t *testing.T) {
	ensureTesseractAvailable(t)

	page := raster.Page{Index: 4, DPI: 300, Image: renderLines("CASE LOT YARN", "A100 L55 Y3 Wool Red 12 450 5 445")}
	res, err := ocr.RecognizePage(context.Background(), NewTesseractEngine(), page, ocr.WithLanguages("eng"), ocr.WithTesseractPSM(6))
	if err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if res.PageIndex != 4 {
		t.Fatalf("unexpected page index %d", res.PageIndex)
	}
	if lines := res.Lines(); len(lines) < 2 {
		t.Fatalf("expected at least two lines, got %q", lines)
	}
}

func TestRecognizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewTesseractEngine().Recognize(ctx, ocr.Input{ID: "page-0"}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestCropImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, renderLines("x")); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data := buf.Bytes()

	same, err := cropImage(data, nil)
	if err != nil || !bytes.Equal(same, data) {
		t.Fatalf("nil region should pass data through, err=%v", err)
	}

	cropped, err := cropImage(data, &ocr.Region{X: 5, Y: 5, Width: 20, Height: 10})
	if err != nil {
		t.Fatalf("cropImage() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(cropped))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Fatalf("unexpected cropped bounds %v", img.Bounds())
	}

	if _, err := cropImage(data, &ocr.Region{X: 5000, Y: 5000, Width: 1, Height: 1}); err == nil {
		t.Fatalf("expected error for region outside the image")
	}
}

func TestMergeBounds(t *testing.T) {
	got := mergeBounds([]ocr.TextWord{
		{Bounds: ocr.Region{X: 10, Y: 5, Width: 20, Height: 10}},
		{Bounds: ocr.Region{X: 40, Y: 2, Width: 5, Height: 20}},
	})
	want := ocr.Region{X: 10, Y: 2, Width: 35, Height: 20}
	if got != want {
		t.Fatalf("mergeBounds() = %+v, want %+v", got, want)
	}
	if mergeBounds(nil) != (ocr.Region{}) {
		t.Fatalf("expected empty region for no words")
	}
}
