// Package pipeline drives scanned packing lists from file to records:
// rasterize each page, recognize its text, and parse every line.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wudi/packlist/observability"
	"github.com/wudi/packlist/ocr"
	"github.com/wudi/packlist/raster"
	"github.com/wudi/packlist/recovery"
	"github.com/wudi/packlist/scripting"
	"github.com/wudi/packlist/security"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoInput is returned for a missing path or an unconfigured pipeline.
	ErrNoInput = errors.New("no input")
	// ErrNotPDF is returned for paths without a .pdf extension.
	ErrNotPDF = errors.New("not a PDF file")
)

type Pipeline struct {
	rasterizer raster.Rasterizer
	engine     ocr.Engine
	recovery   recovery.Factory
	filter     scripting.RecordFilter
	logger     observability.Logger
	tracer     observability.Tracer
	metrics    observability.Metrics
	limits     security.Limits
	ocrOpts    []ocr.InputOption
	preprocess *raster.PreprocessOptions
	dpi        float64
	workers    int
}

type Option func(*Pipeline)

func WithLogger(l observability.Logger) Option         { return func(p *Pipeline) { p.logger = l } }
func WithTracer(t observability.Tracer) Option         { return func(p *Pipeline) { p.tracer = t } }
func WithMetrics(m observability.Metrics) Option       { return func(p *Pipeline) { p.metrics = m } }
func WithRecovery(f recovery.Factory) Option           { return func(p *Pipeline) { p.recovery = f } }
func WithFilter(f scripting.RecordFilter) Option       { return func(p *Pipeline) { p.filter = f } }
func WithLimits(l security.Limits) Option              { return func(p *Pipeline) { p.limits = l } }
func WithOCROptions(opts ...ocr.InputOption) Option    { return func(p *Pipeline) { p.ocrOpts = opts } }
func WithDPI(dpi float64) Option                       { return func(p *Pipeline) { p.dpi = dpi } }
func WithWorkers(n int) Option                         { return func(p *Pipeline) { p.workers = n } }
func WithPreprocess(o raster.PreprocessOptions) Option { return func(p *Pipeline) { p.preprocess = &o } }

// New builds a pipeline around a rasterizer and an OCR engine. Without
// options it logs nothing, fails fast on the first bad page and runs one page
// at a time.
func New(rasterizer raster.Rasterizer, engine ocr.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		rasterizer: rasterizer,
		engine:     engine,
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
		metrics:    observability.NopMetrics{},
		limits:     security.DefaultLimits(),
		dpi:        raster.DefaultDPI,
		workers:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	if p.recovery == nil {
		p.recovery = func() recovery.Strategy { return recovery.NewStrictStrategy() }
	}
	return p
}

// ProcessDocument extracts every record from the PDF at path. It never
// panics on bad input; failures come back as a result with StatusError.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string) DocumentResult {
	if p == nil || p.rasterizer == nil || p.engine == nil {
		return errorResult(fmt.Sprintf("error processing PDF: %v: pipeline not configured", ErrNoInput), nil)
	}
	start := time.Now()
	log := p.logger.With(observability.String("document", path))
	log.Info("processing PDF")

	if p.limits.MaxDocumentTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.limits.MaxDocumentTime)
		defer cancel()
	}
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanDocument)
	defer span.Finish()
	span.SetTag("path", path)

	pages, err := p.processDocument(ctx, path, p.recovery(), log)
	if err != nil {
		span.SetError(err)
		msg := fmt.Sprintf("error processing PDF: %v", err)
		log.Error(msg, observability.Error("error", err))
		return errorResult(msg, pages)
	}
	res := successResult(pages)
	log.Info("processed PDF",
		observability.Int("pages", len(pages)),
		observability.Int("records", len(res.Data)),
		observability.Duration("elapsed", time.Since(start)))
	return res
}

func (p *Pipeline) processDocument(ctx context.Context, path string, strategy recovery.Strategy, log observability.Logger) ([]PageResult, error) {
	if err := p.checkInput(path); err != nil {
		return nil, err
	}

	rctx, rspan := p.tracer.StartSpan(ctx, observability.SpanRasterize)
	doc, err := p.rasterizer.Open(rctx, path)
	rspan.Finish()
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	n := doc.NumPage()
	if err := p.limits.CheckPageCount(n); err != nil {
		return nil, err
	}
	log.Info("document opened", observability.Int("pages", n))

	results := make([]PageResult, n)
	done := make([]bool, n)
	var mu sync.Mutex
	finish := func(pr PageResult) {
		mu.Lock()
		results[pr.Index] = pr
		done[pr.Index] = true
		mu.Unlock()
	}

	// Rendering stays on this goroutine; only recognition fans out.
	var renderErr error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		log.Info("processing page", observability.Int("page", i+1))
		page, err := doc.Render(gctx, i, p.dpi)
		if err != nil {
			if renderErr = p.pageFailed(gctx, strategy, log, i, "rasterize", err, finish); renderErr != nil {
				break
			}
			continue
		}
		if p.preprocess != nil && p.preprocess.Enabled() {
			page = raster.Preprocess(page, *p.preprocess)
		}
		g.Go(func() error {
			pr, err := p.recognizePage(gctx, page)
			if err != nil {
				return p.pageFailed(gctx, strategy, log, page.Index, "ocr", err, finish)
			}
			finish(pr)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = renderErr
	}

	var processed []PageResult
	for i, ok := range done {
		if ok {
			processed = append(processed, results[i])
		}
	}
	if err != nil {
		return processed, err
	}
	if err := ctx.Err(); err != nil {
		return processed, err
	}
	return processed, nil
}

func (p *Pipeline) checkInput(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrNoInput)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	return p.limits.CheckFileSize(info.Size())
}

// pageFailed consults the recovery strategy. A nil return means the page was
// skipped; otherwise the wrapped error aborts the document.
func (p *Pipeline) pageFailed(ctx context.Context, strategy recovery.Strategy, log observability.Logger, index int, component string, err error, finish func(PageResult)) error {
	p.metrics.ObservePage(observability.PageStatusFailed)
	loc := recovery.Location{Page: index, Component: component}
	wrapped := fmt.Errorf("page %d: %w", index+1, err)
	if strategy.OnError(ctx, err, loc) == recovery.ActionFail {
		return wrapped
	}
	log.Error("skipping page", observability.Int("page", index+1), observability.String("stage", component), observability.Error("error", err))
	finish(PageResult{Index: index, Err: wrapped})
	return nil
}

func (p *Pipeline) recognizePage(ctx context.Context, page raster.Page) (PageResult, error) {
	start := time.Now()
	if p.limits.MaxPageTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.limits.MaxPageTime)
		defer cancel()
	}
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanPage)
	defer span.Finish()
	span.SetTag("page", page.Index)

	res, err := ocr.RecognizePage(ctx, p.engine, page, p.ocrOpts...)
	p.metrics.ObservePageDuration(time.Since(start))
	if err != nil {
		span.SetError(err)
		return PageResult{}, err
	}
	p.logger.Debug("page text", observability.Int("page", page.Index+1), observability.String("text", res.PlainText))
	pr := p.ProcessPage(ctx, page.Index, res.Lines())
	p.metrics.ObservePage(observability.PageStatusOK)
	return pr, nil
}
