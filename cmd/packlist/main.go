// Command packlist turns scanned yarn packing lists into shipment records.
//
//	packlist extract scan.pdf --xlsx shipments.xlsx
//	tesseract scan.tif - | packlist parse -
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wudi/packlist/config"
	"github.com/wudi/packlist/observability"

	_ "github.com/wudi/packlist/ocr/tesseract"
)

// errFailed marks a run whose result was already reported on stdout.
var errFailed = errors.New("processing failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "packlist: %v\n", err)
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	dpi        float64
	lang       string
	workers    int
	strategy   string
	filter     string
	logLevel   string
	logFormat  string
	metrics    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "packlist",
		Short:         "Extract shipment records from scanned packing lists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	pf.Float64Var(&g.dpi, "dpi", 0, "render resolution in dots per inch")
	pf.StringVar(&g.lang, "lang", "", "OCR languages, comma separated (e.g. eng,deu)")
	pf.IntVar(&g.workers, "workers", 0, "pages recognized in parallel")
	pf.StringVar(&g.strategy, "strategy", "", "page failure handling: strict or lenient")
	pf.StringVar(&g.filter, "filter", "", "JavaScript expression; records where it is false are dropped")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "", "console or json")
	pf.BoolVar(&g.metrics, "metrics", false, "print Prometheus metrics to stderr when done")

	root.AddCommand(newExtractCmd(&g), newParseCmd(&g))
	return root
}

// loadConfig layers flags that were set explicitly over file and environment.
func loadConfig(cmd *cobra.Command, g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("dpi") {
		cfg.DPI = g.dpi
	}
	if flags.Changed("lang") {
		cfg.Languages = splitLangs(g.lang)
	}
	if flags.Changed("workers") {
		cfg.Workers = g.workers
	}
	if flags.Changed("strategy") {
		cfg.Strategy = g.strategy
	}
	if flags.Changed("filter") {
		cfg.FilterScript = g.filter
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger keeps stdout free for the result when resultOnStdout is set.
func newLogger(cmd *cobra.Command, cfg config.Config, resultOnStdout bool) (observability.Logger, error) {
	low := cmd.OutOrStdout()
	if resultOnStdout {
		low = cmd.ErrOrStderr()
	}
	return cfg.Logger(low, cmd.ErrOrStderr())
}

func splitLangs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' || r == ' ' })
}
