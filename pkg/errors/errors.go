// Package errors provides the broker's sentinel errors, Is/Wrap helpers and
// a StatusCode mapping from a sentinel to an HTTP status, mirroring the
// shape (not the full surface) of the teacher repo's error package.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by broker operations. Callers compare with
// errors.Is, not string matching.
var (
	// ErrNotFound marks a failed handler lookup; the dispatcher maps it to
	// 404 for an unknown path.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a request or config body is
	// malformed or missing a required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout is returned by the transport on a delivery that exceeded
	// its deadline. It is never surfaced to a publisher; PublishPipeline
	// retries on it instead.
	ErrTimeout = errors.New("operation timeout")

	// ErrUnreachable is returned by the transport when a subscriber's
	// socket cannot be resolved or connected to. It is terminal: the
	// subscriber is evicted.
	ErrUnreachable = errors.New("endpoint unreachable")

	// ErrInternal marks a handler that reported failure; the dispatcher
	// maps it to 500.
	ErrInternal = errors.New("internal error")
)

// Is reports whether err wraps target. Exported so callers that already
// import this package don't need a second import of "errors" just for Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// Wrap annotates err with a message in the teacher's "%s: %w" style,
// returning nil if err is nil.
func Wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
