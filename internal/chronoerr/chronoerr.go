// Package chronoerr defines the typed error kinds shared across the
// reasoning kernel, the distributed cluster, and the public facades.
package chronoerr

import "fmt"

// Kind classifies an Error per the propagation policy of the reasoning
// engine: validation failures are synchronous, kernel failures are fatal to
// the current Reason call, and cluster failures are captured per worker.
type Kind string

const (
	// InvalidInput marks malformed atoms/patterns, non-range-restricted
	// rules, or unknown predicates/constants referenced in a pattern.
	InvalidInput Kind = "invalid_input"
	// InconsistentState marks decode of an unknown id, or decode of an
	// empty pattern.
	InconsistentState Kind = "inconsistent_state"
	// ResourceUnavailable marks a requested GPU path with no available
	// device, or a kernel/program build failure.
	ResourceUnavailable Kind = "resource_unavailable"
	// Timeout marks a worker task that exceeded worker_timeout_ms.
	Timeout Kind = "timeout"
	// Transport marks an unreachable worker or a transport-level RPC
	// error.
	Transport Kind = "transport"
	// RetriesExhausted marks max_retries consecutive Timeout/Transport
	// failures for a single task.
	RetriesExhausted Kind = "retries_exhausted"
)

// Error is the concrete error type returned across package boundaries. It
// carries a Kind so callers can branch on failure category without string
// matching, and wraps an optional underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with no underlying cause.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap constructs an Error that chains an underlying cause.
func Wrap(kind Kind, op, message string, cause error) error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given kind, looking through
// wrapped causes the way errors.Is would but without requiring callers to
// import errors for the common case.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
