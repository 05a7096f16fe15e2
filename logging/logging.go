// Package logging builds the leveled charmbracelet logger shared by the CLI
// and the HTTP service.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options selects level and output format. Format is "text", "json" or "logfmt".
type Options struct {
	Level  string
	Format string
	Prefix string
}

// New returns a logger writing to w, or os.Stderr when w is nil.
func New(opts Options, w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var formatter log.Formatter
	switch opts.Format {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
	}), nil
}

// Component derives a logger whose prefix names one part of the program.
func Component(logger *log.Logger, name string) *log.Logger {
	return logger.WithPrefix(name)
}
