// Package rlerror implements the error kinds shared by the replay
// memory, the learners, and the experiment driver.
package rlerror

import "github.com/pkg/errors"

// Error kinds. Use errors.Is (or the Is* helpers below) to check the
// kind of an error returned from any package of this module.
var (
	// ErrInvalidConfiguration reports a non-positive capacity, batch
	// size, or any other illegal hyperparameter.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInsufficientData reports that a replay memory was sampled
	// before it held enough transitions.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEnvironmentFailure wraps an error returned by an environment.
	ErrEnvironmentFailure = errors.New("environment failure")
)

// Error records the operation that failed, the kind of failure, and
// an optional underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// New returns a new *Error of the given kind for operation op
func New(op string, kind error, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Newf returns a new *Error of the given kind whose cause is a
// formatted message
func Newf(op string, kind error, format string, args ...interface{}) *Error {
	return &Error{Op: op, Kind: kind, Err: errors.Errorf(format, args...)}
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of e
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// IsInvalidConfiguration returns whether err reports an invalid
// configuration
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsInsufficientData returns whether err reports that there were
// too few samples in a replay memory to draw a batch.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

// IsEnvironmentFailure returns whether err was caused by an
// environment.
func IsEnvironmentFailure(err error) bool {
	return errors.Is(err, ErrEnvironmentFailure)
}
