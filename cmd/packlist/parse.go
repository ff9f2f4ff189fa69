package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wudi/packlist/observability"
	"github.com/wudi/packlist/pipeline"
	"github.com/wudi/packlist/scripting"
)

func newParseCmd(g *globalFlags) *cobra.Command {
	var out outputs
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse OCR text into shipment records without running OCR",
		Long: `Parse plain text, one OCR line per line, into shipment records. Form
feeds separate pages. Reads stdin when the file is "-" or missing.

Examples:
  tesseract scan.tif - --psm 6 | packlist parse
  packlist parse dump.txt --csv shipments.csv
  packlist parse dump.txt -o shipments.xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runParse(cmd, g, path, out)
		},
	}
	out.bind(cmd)
	return cmd
}

func runParse(cmd *cobra.Command, g *globalFlags, path string, out outputs) error {
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
	text, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(log)}
	if cfg.FilterScript != "" {
		filter, err := scripting.NewScriptFilter(cfg.FilterScript)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithFilter(filter))
	}
	var metrics *observability.PrometheusMetrics
	if g.metrics {
		metrics = observability.NewPrometheusMetrics()
		opts = append(opts, pipeline.WithMetrics(metrics))
	}
	p := pipeline.New(nil, nil, opts...)
	res := p.ProcessText(cmd.Context(), text)
	return report(cmd, log, res, targets, metrics)
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
