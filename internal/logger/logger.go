// Package logger: process-wide zerolog setup. Level and format come from LOG_LEVEL / LOG_FORMAT
// or from the go-flags Options group embedded in each command.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Process-wide logger, shared by every package.
var defaultLogger *zerolog.Logger

// Options is the logger flag group.
type Options struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level (trace|debug|info|warn|error)" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format (json|text)"                  default:"text"`
}

// Setup installs the default logger from the option values.
func (o Options) Setup() *zerolog.Logger {
	return install(New(o.Level, o.Format, os.Stderr))
}

// Setup installs the default logger from the environment.
// Constraint: output always goes to stderr.
func Setup() *zerolog.Logger {
	return install(New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr))
}

// L returns the default logger, falling back to Setup.
func L() *zerolog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

// New builds a logger writing to w. Unknown levels mean info; any format
// other than json is rendered by the console writer.
func New(level, format string, w io.Writer) zerolog.Logger {
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps trace|debug|info|warn|error to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

func install(l zerolog.Logger) *zerolog.Logger {
	defaultLogger = &l
	log.Logger = l
	return defaultLogger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
