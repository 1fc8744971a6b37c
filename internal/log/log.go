package log

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
)

// HandlerFn builds the slog.Handler used by New.
type HandlerFn func(w io.Writer, opts *slog.HandlerOptions) slog.Handler

type params struct {
	verbose   bool
	attrs     []slog.Attr
	writer    io.Writer
	handlerFn HandlerFn
}

type Option func(params *params)

// WithVerbose enables verbose logging (sets log level to Debug).
func WithVerbose(verbose bool) Option {
	return func(params *params) {
		params.verbose = verbose
	}
}

// WithAttrs adds custom attributes to all log entries.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(params *params) {
		params.attrs = append(params.attrs, attrs...)
	}
}

// WithWriter sets the output writer for logs.
// If w is nil, io.Discard is used
func WithWriter(w io.Writer) Option {
	return func(params *params) {
		params.writer = w
	}
}

func WithHandler(fn HandlerFn) Option {
	return func(params *params) {
		params.handlerFn = fn
	}
}

func WithTextHandler() Option {
	return WithHandler(func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(w, opts)
	})
}

func WithJSONHandler() Option {
	return WithHandler(func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewJSONHandler(w, opts)
	})
}

// WithColourTextHandler renders human friendly, coloured output when w is a terminal.
func WithColourTextHandler() Option {
	return WithHandler(func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(opts.Level.Level()),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
	})
}

// New creates a new slog.Logger.
// By default, logs are formatted as text, written to io.Discard, and use Info level.
//
// Example:
//
//	logger := log.New(
//	    log.WithWriter(os.Stderr),
//	    log.WithJSONHandler(),
//	    log.WithVerbose(true),
//	    log.WithAttrs(slog.String("service", "stmtgrab")),
//	)
func New(opts ...Option) *slog.Logger {
	var params params
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&params)
	}

	if params.writer == nil {
		return slog.New(slog.DiscardHandler)
	}

	level := slog.LevelInfo
	if params.verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: ReplaceSourceAttr,
	}

	handlerFn := params.handlerFn
	if handlerFn == nil {
		handlerFn = func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
			return slog.NewTextHandler(w, opts)
		}
	}

	handler := handlerFn(params.writer, handlerOpts)
	if len(params.attrs) > 0 {
		handler = handler.WithAttrs(params.attrs)
	}

	return slog.New(handler)
}

// ReplaceSourceAttr trims the source attribute down to "file.go:line".
func ReplaceSourceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}

	source, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}

	fileAndLine := fmt.Sprintf("%s:%d", filepath.Base(source.File), source.Line)
	return slog.Attr{
		Key:   slog.SourceKey,
		Value: slog.StringValue(fileAndLine),
	}
}
