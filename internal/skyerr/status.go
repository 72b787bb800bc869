// Package skyerr defines the status codes surfaced by the sky-map core.
// The core never panics for an expected failure mode; every fallible
// operation returns a Status explicitly.
package skyerr

import "fmt"

// Kind identifies the category of failure in the core. The set is
// closed.
type Kind int

const (
	// OK indicates success. It is the zero value so an unwritten Status
	// (e.g. an unused slot in a per-pixel error buffer) reads as success.
	OK Kind = iota
	// Shape indicates npix was not of the form 12*N^2, or distance
	// bounds were inverted or non-positive.
	Shape
	// Memory indicates an allocation failure for a map-wide buffer or a
	// per-worker quadrature workspace.
	Memory
	// Convergence indicates the adaptive quadrature exceeded its
	// subdivision budget or failed to reach its relative tolerance.
	Convergence
	// UnrecognizedPrior indicates a Prior value outside the documented
	// enum.
	UnrecognizedPrior
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "success"
	case Shape:
		return "shape-invalid"
	case Memory:
		return "memory"
	case Convergence:
		return "convergence"
	case UnrecognizedPrior:
		return "unrecognized-prior"
	default:
		return "unknown"
	}
}

// Status is the result of a fallible operation in the core: either
// success (the zero value) or a typed failure with a message. Status
// implements error so it can be returned where Go code expects one.
type Status struct {
	Kind Kind
	Msg  string
}

// Success is the zero-value success status. Returning Status{} has the
// same effect; Success exists for readability at call sites.
var Success = Status{}

// New constructs a failure status of the given kind.
func New(kind Kind, msg string) Status {
	return Status{Kind: kind, Msg: msg}
}

// Newf constructs a failure status with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) Status {
	return Status{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsOK reports whether the status represents success.
func (s Status) IsOK() bool { return s.Kind == OK }

// Error implements the error interface.
func (s Status) Error() string {
	if s.IsOK() {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.Msg)
}

// AsError returns nil for a success status, or the status itself
// (as an error) otherwise. Used at the outermost boundary where Go
// convention expects a plain error.
func AsError(s Status) error {
	if s.IsOK() {
		return nil
	}
	return s
}

// First returns the first non-success status in statuses, or Success if
// every one of them succeeded. This is the tie-break rule for the
// parallel amplitude phase: the first recorded failure is returned,
// including in the case where every pixel failed.
func First(statuses []Status) Status {
	for _, s := range statuses {
		if !s.IsOK() {
			return s
		}
	}
	return Success
}
