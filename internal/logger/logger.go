// Package logger builds the zerolog logger used for progress and diagnostic
// output. Progress goes to stderr so stdout stays reserved for the generated
// commit message.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w (os.Stderr when nil). quiet
// discards everything; verbose lowers the level to debug.
func New(w io.Writer, quiet, verbose bool) zerolog.Logger {
	if quiet {
		return zerolog.Nop()
	}
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(level)
}
