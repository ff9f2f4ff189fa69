package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogFormat selects how the zerolog backend renders entries.
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// LogOptions configures NewZerologLogger.
type LogOptions struct {
	Level  string
	Format LogFormat
	// Stdout receives entries below warn level, Stderr the rest. Nil means
	// os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger builds a Logger backed by zerolog. Debug and info entries go
// to Stdout, warnings and errors to Stderr.
func NewZerologLogger(opts LogOptions) (Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	switch opts.Format {
	case "", LogFormatConsole:
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.TimeOnly, NoColor: true}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly, NoColor: true}
	case LogFormatJSON:
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	w := splitLevelWriter{low: stdout, high: stderr}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}, nil
}

// ParseLevel maps a level name onto zerolog. The empty string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return lvl, nil
}

func (l *zerologLogger) Debug(msg string, fields ...Field) { emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...Field)  { emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...Field)  { emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...Field) { emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) With(fields ...Field) Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key(), fieldValue(f))
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			ev = ev.Str(f.Key(), v)
		case int:
			ev = ev.Int(f.Key(), v)
		case float64:
			ev = ev.Float64(f.Key(), v)
		case time.Duration:
			ev = ev.Dur(f.Key(), v)
		case error:
			ev = ev.AnErr(f.Key(), v)
		default:
			ev = ev.Interface(f.Key(), v)
		}
	}
	ev.Msg(msg)
}

func fieldValue(f Field) interface{} {
	if err, ok := f.Value().(error); ok && err != nil {
		return err.Error()
	}
	return f.Value()
}

// splitLevelWriter routes warn and above to high, everything else to low.
type splitLevelWriter struct {
	low, high io.Writer
}

func (w splitLevelWriter) Write(p []byte) (int, error) {
	return w.low.Write(p)
}

func (w splitLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.WarnLevel && level != zerolog.NoLevel {
		return w.high.Write(p)
	}
	return w.low.Write(p)
}
