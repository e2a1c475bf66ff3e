// Package rootlog provides rootup's structured logger: a thin wrapper
// over charmbracelet/log with a process-wide default instance and
// verbosity controlled by repeated -v flags or ROOTUP_LOG_LEVEL.
package rootlog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures the logger.
type Options struct {
	Level           string
	Output          io.Writer
	Prefix          string
	TimeFormat      string
	ReportCaller    bool
	ReportTimestamp bool
}

// DefaultOptions returns sensible defaults: info level, stderr, no caller
// reporting (the CLI's single-line progress output stays uncluttered).
func DefaultOptions() Options {
	return Options{
		Level:           "info",
		Output:          os.Stderr,
		TimeFormat:      time.RFC3339,
		ReportCaller:    false,
		ReportTimestamp: true,
	}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// LevelForVerbosity maps a repeated -v count onto a level name: 0 = info,
// 1 = debug, 2+ = debug with caller reporting (set by the caller).
func LevelForVerbosity(count int) string {
	if count <= 0 {
		return "info"
	}
	return "debug"
}

// New constructs a logger from opts.
func New(opts Options) *log.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return log.NewWithOptions(opts.Output, log.Options{
		Level:           parseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      opts.TimeFormat,
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

func newDefault() *log.Logger {
	opts := DefaultOptions()
	if level := os.Getenv("ROOTUP_LOG_LEVEL"); level != "" {
		opts.Level = level
	}
	return New(opts)
}

var defaultLogger = newDefault()

// SetDefault replaces the process-wide default logger, called once from
// cmd/rootup's root command after flags are parsed.
func SetDefault(logger *log.Logger) { defaultLogger = logger }

// Default returns the process-wide default logger.
func Default() *log.Logger { return defaultLogger }

func Debug(msg any, keyvals ...any) { defaultLogger.Debug(msg, keyvals...) }
func Info(msg any, keyvals ...any)  { defaultLogger.Info(msg, keyvals...) }
func Warn(msg any, keyvals ...any)  { defaultLogger.Warn(msg, keyvals...) }
func Error(msg any, keyvals ...any) { defaultLogger.Error(msg, keyvals...) }
func Fatal(msg any, keyvals ...any) { defaultLogger.Fatal(msg, keyvals...) }

// With returns a logger carrying additional default key-value pairs.
func With(keyvals ...any) *log.Logger { return defaultLogger.With(keyvals...) }
