package workers

import (
	"errors"

	"github.com/aescanero/tripplanner/pkg/domain"
)

// Outcome status labels
const (
	StatusSuccess = "success"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// Outcome is the result of running a task: either a value or a failure
// reason (timeout or task error).
type Outcome[T any] struct {
	value T
	err   error
}

// Success wraps a produced value.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failure wraps a failure reason.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// OK reports whether the task produced a value.
func (o Outcome[T]) OK() bool {
	return o.err == nil
}

// Value returns the produced value, or the zero value on failure.
func (o Outcome[T]) Value() T {
	return o.value
}

// Err returns the failure reason, nil on success.
func (o Outcome[T]) Err() error {
	return o.err
}

// TimedOut reports whether the task failed by exceeding its deadline.
func (o Outcome[T]) TimedOut() bool {
	return errors.Is(o.err, domain.ErrSubTaskTimeout)
}

// ValueOr returns the produced value or fallback on failure.
func (o Outcome[T]) ValueOr(fallback T) T {
	if o.err != nil {
		return fallback
	}
	return o.value
}

// Status returns the metrics label for the outcome.
func (o Outcome[T]) Status() string {
	switch {
	case o.err == nil:
		return StatusSuccess
	case o.TimedOut():
		return StatusTimeout
	default:
		return StatusError
	}
}
