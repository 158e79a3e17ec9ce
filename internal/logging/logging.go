// Package logging configures drill's diagnostic logger on top of
// charmbracelet/log.
//
// Diagnostics (progress, debug traces, failure reports) always go to stderr.
// Stdout belongs to the rendered judge result so that it can be piped or
// captured without log noise.
//
//	logging.Setup(logging.Options{Verbose: true})
//	logger := logging.New("judge")
//	logger.Debug("polling check", "id", id)
//
// Child loggers copy the default logger's settings when they are created, so
// Setup has to run before any New call that should honour it.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level aliases so callers do not need to import charmbracelet/log.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// Options controls Setup.
type Options struct {
	// Verbose lowers the level to Debug.
	Verbose bool
	// Quiet raises the level to Error. Quiet wins over Verbose.
	Quiet bool
	// JSON switches to the NDJSON formatter.
	JSON bool
	// Output overrides the destination. Nil means stderr.
	Output io.Writer
}

// Setup configures the default logger. Call it once from the root command's
// pre-run hook.
func Setup(opts Options) {
	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}
	if opts.Quiet {
		level = log.ErrorLevel
	}
	log.SetLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	if opts.JSON {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
	log.SetReportTimestamp(false)
}

// New returns a logger tagged with the given component prefix. An empty
// component yields an unprefixed logger.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput redirects the default logger, mainly so tests can capture it.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Report writes err as a single line at the given level. Unlike log.Fatal it
// never exits the process; the caller decides the exit code.
func Report(logger *log.Logger, level log.Level, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = log.Default()
	}
	logger.Log(level, err.Error())
}
