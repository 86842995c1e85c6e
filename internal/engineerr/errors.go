// Package engineerr defines the error taxonomy used across the translation
// pipeline (decoder, frontend, optimizer, allocator, backend).
package engineerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies an engine error by pipeline stage and cause.
type Kind int

const (
	// KindReservedValue marks a guest instruction word whose bit pattern is
	// architecturally reserved.
	KindReservedValue Kind = iota
	// KindUnpredictableInstruction marks UNPREDICTABLE guest behavior;
	// frontend.Options.DefineUnpredictableBehaviour does not change its
	// handling.
	KindUnpredictableInstruction
	// KindDecodeMiss marks a word with no matching decode table entry.
	KindDecodeMiss
	// KindInternalInvariantViolation marks a verifier or allocator
	// consistency failure. Never surfaced to guest code.
	KindInternalInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindReservedValue:
		return "reserved-value"
	case KindUnpredictableInstruction:
		return "unpredictable-instruction"
	case KindDecodeMiss:
		return "decode-miss"
	case KindInternalInvariantViolation:
		return "internal-invariant-violation"
	default:
		return "unknown"
	}
}

// EngineError is the concrete error type threaded through the pipeline.
type EngineError struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *EngineError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *EngineError) Unwrap() error {
	return e.cause
}

// New builds an EngineError of the given kind, wrapping cause (may be nil).
func New(kind Kind, cause error, format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Is reports whether err is an EngineError of the given kind.
func Is(err error, kind Kind) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind == kind
	}
	return false
}

// Invariant panics with an InternalInvariantViolation in debug builds (see
// Debug) and otherwise logs and continues
// invariant violations are fatal in debug, an undefined-behavior-avoiding
// assert in release, and are never surfaced to the guest.
func Invariant(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	err := New(KindInternalInvariantViolation, nil, format, args...)
	if Debug {
		panic(err)
	}
	if Logf != nil {
		Logf("invariant violation (release, continuing): %v", err)
	}
}

// Debug toggles whether Invariant panics (true) or logs-and-continues
// (false). Set by the engine from Config.Debug.
var Debug = false

// Logf is set by internal/telemetry to route Invariant's release-mode log
// line through the engine's logger instead of the standard logger.
var Logf func(format string, args ...interface{})
