// Package config loads packlist settings from YAML, then applies environment
// overrides. Command-line flags are applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/wudi/packlist/observability"
	"github.com/wudi/packlist/ocr"
	"github.com/wudi/packlist/raster"
	"github.com/wudi/packlist/recovery"
	"github.com/wudi/packlist/security"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvDPI       = "PACKLIST_DPI"
	EnvLanguages = "PACKLIST_LANG"
	EnvWorkers   = "PACKLIST_WORKERS"
	EnvStrategy  = "PACKLIST_STRATEGY"
	EnvLogLevel  = "PACKLIST_LOG_LEVEL"
	EnvLogFormat = "PACKLIST_LOG_FORMAT"
)

type Config struct {
	DPI          float64    `yaml:"dpi"`
	Languages    []string   `yaml:"languages"`
	PSM          int        `yaml:"psm"`
	Whitelist    string     `yaml:"whitelist"`
	Workers      int        `yaml:"workers"`
	Strategy     string     `yaml:"strategy"`
	Preprocess   Preprocess `yaml:"preprocess"`
	FilterScript string     `yaml:"filter_script"`
	Log          Log        `yaml:"log"`
	Limits       Limits     `yaml:"limits"`

	// ImageFormat is how pages are handed to tesseract: png, tiff or jpeg.
	ImageFormat string `yaml:"image_format"`
	// Region crops every rendered page before OCR, in pixels at DPI.
	Region Region `yaml:"region"`
	// TesseractVariables are passed to tesseract as-is and win over the
	// psm and whitelist settings.
	TesseractVariables map[string]string `yaml:"tesseract_variables"`
}

type Region struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Preprocess struct {
	Enabled   bool `yaml:"enabled"`
	Threshold int  `yaml:"threshold"`
	MinWidth  int  `yaml:"min_width"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Limits struct {
	MaxFileSizeMB   int64         `yaml:"max_file_size_mb"`
	MaxPages        int           `yaml:"max_pages"`
	MaxPageTime     time.Duration `yaml:"max_page_time"`
	MaxDocumentTime time.Duration `yaml:"max_document_time"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	def := security.DefaultLimits()
	return Config{
		DPI:       raster.DefaultDPI,
		Languages: []string{"eng"},
		PSM:       6,
		Workers:   min(runtime.NumCPU(), 4),
		Strategy:  recovery.NameStrict,
		Preprocess: Preprocess{
			Threshold: 160,
		},
		Log: Log{
			Level:  "info",
			Format: string(observability.LogFormatConsole),
		},
		Limits: Limits{
			MaxFileSizeMB:   def.MaxFileSize / (1024 * 1024),
			MaxPages:        def.MaxPages,
			MaxPageTime:     def.MaxPageTime,
			MaxDocumentTime: def.MaxDocumentTime,
		},
	}
}

// Load reads path on top of Default and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the PACKLIST_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDPI); ok {
		dpi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDPI, err)
		}
		c.DPI = dpi
	}
	if v, ok := lookup(EnvLanguages); ok {
		c.Languages = splitList(v)
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvStrategy); ok {
		c.Strategy = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DPI < 50 || c.DPI > 1200 {
		errs = append(errs, fmt.Errorf("dpi %v out of range [50, 1200]", c.DPI))
	}
	if len(c.Languages) == 0 {
		errs = append(errs, errors.New("at least one OCR language is required"))
	}
	if c.PSM < 0 || c.PSM > 13 {
		errs = append(errs, fmt.Errorf("psm %d out of range [0, 13]", c.PSM))
	}
	if _, err := ocr.ParseImageFormat(c.ImageFormat); err != nil {
		errs = append(errs, err)
	}
	if r := c.Region; r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 {
		errs = append(errs, errors.New("region must not be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := recovery.FromName(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.Preprocess.Threshold < 0 || c.Preprocess.Threshold > 255 {
		errs = append(errs, fmt.Errorf("preprocess threshold %d out of range [0, 255]", c.Preprocess.Threshold))
	}
	if c.Preprocess.MinWidth < 0 {
		errs = append(errs, fmt.Errorf("preprocess min_width must not be negative"))
	}
	if _, err := observability.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch observability.LogFormat(c.Log.Format) {
	case "", observability.LogFormatConsole, observability.LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Limits.MaxFileSizeMB < 0 || c.Limits.MaxPages < 0 || c.Limits.MaxPageTime < 0 || c.Limits.MaxDocumentTime < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	return errors.Join(errs...)
}

// OCROptions translates the OCR settings into engine input options. An
// invalid image format falls back to PNG; Validate reports it.
func (c Config) OCROptions() []ocr.InputOption {
	opts := []ocr.InputOption{
		ocr.WithLanguages(c.Languages...),
		ocr.WithTesseractPSM(c.PSM),
		ocr.WithTesseractPreserveSpaces(),
	}
	if c.Whitelist != "" {
		opts = append(opts, ocr.WithTesseractWhitelist(c.Whitelist))
	}
	if format, err := ocr.ParseImageFormat(c.ImageFormat); err == nil {
		opts = append(opts, ocr.WithFormat(format))
	}
	opts = append(opts,
		ocr.WithRegion(ocr.Region{X: c.Region.X, Y: c.Region.Y, Width: c.Region.Width, Height: c.Region.Height}),
		ocr.WithMetadata(c.TesseractVariables),
	)
	return opts
}

// PreprocessOptions returns the page cleanup settings, or false when
// preprocessing is off.
func (c Config) PreprocessOptions() (raster.PreprocessOptions, bool) {
	if !c.Preprocess.Enabled {
		return raster.PreprocessOptions{}, false
	}
	return raster.PreprocessOptions{
		Threshold: uint8(c.Preprocess.Threshold),
		MinWidth:  c.Preprocess.MinWidth,
	}, true
}

// SecurityLimits converts the limits section.
func (c Config) SecurityLimits() security.Limits {
	l := security.DefaultLimits()
	l.MaxFileSize = c.Limits.MaxFileSizeMB * 1024 * 1024
	l.MaxPages = c.Limits.MaxPages
	l.MaxPageTime = c.Limits.MaxPageTime
	l.MaxDocumentTime = c.Limits.MaxDocumentTime
	return l
}

// RecoveryFactory returns the factory the pipeline calls once per document.
func (c Config) RecoveryFactory() (recovery.Factory, error) {
	return recovery.FactoryFromName(c.Strategy)
}

// Logger builds the zerolog-backed logger described by the log section.
// Warnings and errors go to stderr, everything else to stdout; nil writers
// mean the process streams.
func (c Config) Logger(stdout, stderr io.Writer) (observability.Logger, error) {
	return observability.NewZerologLogger(observability.LogOptions{
		Level:  c.Log.Level,
		Format: observability.LogFormat(c.Log.Format),
		Stdout: stdout,
		Stderr: stderr,
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
