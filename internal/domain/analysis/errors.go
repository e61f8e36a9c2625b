package analysis

import (
	"errors"
	"fmt"
)

// Precondition violations. These are the only errors that fail a request;
// everything at the service boundary degrades instead.
var (
	ErrNoImages         = errors.New("no images provided")
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")
)

// TransientError marks a per-image failure worth retrying (throttling,
// timeout, temporary service trouble).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a per-image failure that retrying cannot fix
// (malformed image, rejected input).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Transient wraps an error as retryable
func Transient(format string, args ...any) error {
	return &TransientError{Err: fmt.Errorf(format, args...)}
}

// Permanent wraps an error as not retryable
func Permanent(format string, args ...any) error {
	return &PermanentError{Err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether err is retryable
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// KindOf maps an error to the failure kind recorded for statistics
func KindOf(err error) FailureKind {
	if IsTransient(err) {
		return FailureTransient
	}
	return FailurePermanent
}
