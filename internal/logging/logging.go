// Package logging configures the structured logger shared by all skep
// commands. Logs always go to stderr so report output on stdout stays
// machine-readable.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	// Verbose lowers the level from info to debug.
	Verbose bool
	// JSON emits raw JSON lines instead of the console format.
	JSON bool
	// Writer overrides the output destination (default: stderr).
	Writer io.Writer
}

// New builds the root logger.
func New(opts Options) zerolog.Logger {
	var writer io.Writer = os.Stderr
	if opts.Writer != nil {
		writer = opts.Writer
	}

	if !opts.JSON {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.Kitchen,
		}
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
