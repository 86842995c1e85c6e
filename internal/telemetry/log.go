// Package telemetry carries the engine's ambient logging and metrics. It is
// deliberately thin: a nil logger means zero overhead, matching the
// teacher's fileLogger convention in pvm/singlestep.go.
package telemetry

import (
	"io"
	"log"
)

var logger *log.Logger

// SetOutput points the engine's logger at w, or disables logging if w is
// nil. Safe to call before Engine.New.
func SetOutput(w io.Writer) {
	if w == nil {
		logger = nil
		return
	}
	logger = log.New(w, "a32jit: ", log.LstdFlags|log.Lmicroseconds)
}

// Logf logs a formatted line if logging is enabled. No-op otherwise.
func Logf(format string, args ...interface{}) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

func init() {
	// Route internal invariant violation logging (engineerr) through us,
	// without creating an import cycle (engineerr holds a func var).
	setEngineerrLogf(Logf)
}
