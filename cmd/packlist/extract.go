package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wudi/packlist/config"
	"github.com/wudi/packlist/export"
	"github.com/wudi/packlist/observability"
	"github.com/wudi/packlist/ocr"
	"github.com/wudi/packlist/pipeline"
	"github.com/wudi/packlist/raster"
	"github.com/wudi/packlist/scripting"
)

type outputs struct {
	xlsx, json, csv, html string
	paths                 []string
}

func (o *outputs) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.xlsx, "xlsx", "", "write records to an Excel workbook")
	f.StringVar(&o.json, "json", "", "write the result envelope to a JSON file")
	f.StringVar(&o.csv, "csv", "", "write records to a CSV file")
	f.StringVar(&o.html, "html", "", "write records to an HTML report")
	f.StringArrayVarP(&o.paths, "out", "o", nil, "output file, format taken from the extension (.xlsx, .json, .csv, .html); repeatable")
}

type target struct {
	format export.Format
	path   string
}

// targets resolves the per-format flags and every --out path.
func (o outputs) targets() ([]target, error) {
	var ts []target
	for _, t := range []target{
		{export.FormatJSON, o.json},
		{export.FormatXLSX, o.xlsx},
		{export.FormatCSV, o.csv},
		{export.FormatHTML, o.html},
	} {
		if t.path != "" {
			ts = append(ts, t)
		}
	}
	for _, path := range o.paths {
		format, err := export.FormatFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("--out %s: %w", path, err)
		}
		ts = append(ts, target{format, path})
	}
	return ts, nil
}

func newExtractCmd(g *globalFlags) *cobra.Command {
	var out outputs
	cmd := &cobra.Command{
		Use:   "extract <file.pdf> [output.json]",
		Short: "OCR a scanned packing list and extract its shipment rows",
		Long: `Render every page of a scanned packing list, recognize it with Tesseract
and parse each text line into a shipment record.

The result is printed as JSON unless an output file is named. A second
positional argument is the same as --json. --out picks the format from the
file extension and may be repeated.

Examples:
  packlist extract scan.pdf
  packlist extract scan.pdf result.json
  packlist extract scan.pdf --xlsx shipments.xlsx --strategy lenient
  packlist extract scan.pdf -o shipments.csv -o report.html`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 && out.json == "" {
				out.json = args[1]
			}
			return runExtract(cmd, g, args[0], out)
		},
	}
	out.bind(cmd)
	return cmd
}

func runExtract(cmd *cobra.Command, g *globalFlags, path string, out outputs) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	targets, err := out.targets()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg, len(targets) == 0)
	if err != nil {
		return err
	}
	p, metrics, err := buildPipeline(cfg, log, g.metrics)
	if err != nil {
		return err
	}

	res := p.ProcessDocument(cmd.Context(), path)
	return report(cmd, log, res, targets, metrics)
}

// report writes res to every target, or to stdout when there is none, and
// turns an error status into errFailed. Only JSON targets receive an error
// result.
func report(cmd *cobra.Command, log observability.Logger, res pipeline.DocumentResult, targets []target, metrics *observability.PrometheusMetrics) error {
	if len(targets) == 0 {
		if err := export.WriteJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	for _, t := range targets {
		if t.format != export.FormatJSON && !res.OK() {
			continue
		}
		if err := exportTo(log, t, res); err != nil {
			return err
		}
	}
	if metrics != nil {
		if err := metrics.WriteText(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	if !res.OK() {
		return errFailed
	}
	return nil
}

func buildPipeline(cfg config.Config, log observability.Logger, withMetrics bool) (*pipeline.Pipeline, *observability.PrometheusMetrics, error) {
	newStrategy, err := cfg.RecoveryFactory()
	if err != nil {
		return nil, nil, err
	}
	limits := cfg.SecurityLimits()
	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithTracer(observability.NewLogTracer(log)),
		pipeline.WithRecovery(newStrategy),
		pipeline.WithLimits(limits),
		pipeline.WithDPI(cfg.DPI),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithOCROptions(cfg.OCROptions()...),
	}
	if pre, ok := cfg.PreprocessOptions(); ok {
		opts = append(opts, pipeline.WithPreprocess(pre))
	}
	if cfg.FilterScript != "" {
		filter, err := scripting.NewScriptFilter(cfg.FilterScript)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithFilter(filter))
	}
	var metrics *observability.PrometheusMetrics
	if withMetrics {
		metrics = observability.NewPrometheusMetrics()
		opts = append(opts, pipeline.WithMetrics(metrics))
	}
	return pipeline.New(raster.NewFitzRasterizer(limits), ocr.DefaultEngine(), opts...), metrics, nil
}

func exportTo(log observability.Logger, t target, res pipeline.DocumentResult) error {
	path := t.path
	var err error
	switch t.format {
	case export.FormatJSON:
		err = writeFile(path, func(b *bytes.Buffer) error { return export.WriteJSON(b, res) })
	case export.FormatXLSX:
		var saved string
		if saved, err = export.SaveXLSX(path, res.Data); err == nil {
			path = saved
		}
	case export.FormatCSV:
		err = writeFile(path, func(b *bytes.Buffer) error { return export.WriteCSV(b, res.Data) })
	case export.FormatHTML:
		err = writeFile(path, func(b *bytes.Buffer) error { return export.WriteHTML(b, "Packing list", res.Data) })
	default:
		err = fmt.Errorf("unsupported export format %q", t.format)
	}
	switch {
	case errors.Is(err, export.ErrNoRecords):
		log.Warn("no records, file not written", observability.String("format", string(t.format)), observability.String("path", path))
		return nil
	case err != nil:
		return err
	}
	log.Info("saved "+string(t.format), observability.String("path", path))
	return nil
}

// writeFile renders into memory and writes path only when rendering succeeded.
func writeFile(path string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
