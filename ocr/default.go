package ocr

import (
	"context"
	"fmt"

	"github.com/wudi/packlist/raster"
)

var defaultEngine Engine = &noopEngine{}

// DefaultEngine returns the library's default OCR engine. It is a no-op until
// the tesseract package is imported.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine sets the library's default OCR engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

// RecognizePage encodes a single page and runs it through engine.
func RecognizePage(ctx context.Context, engine Engine, page raster.Page, opts ...InputOption) (Result, error) {
	if engine == nil {
		return Result{}, fmt.Errorf("no OCR engine configured")
	}
	in, err := InputFromPage(page, opts...)
	if err != nil {
		return Result{}, err
	}
	res, err := engine.Recognize(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	res.PageIndex = page.Index
	return res, nil
}

type noopEngine struct{}

func (n noopEngine) Name() string {
	return "noop"
}

func (n noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID, PageIndex: input.PageIndex}, nil
}
