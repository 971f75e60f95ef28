package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when a request is missing a required field.
// It is the only error that crosses the orchestrator boundary.
var ErrInvalidRequest = errors.New("invalid request")

// ErrSubTaskTimeout marks a sub-task that did not finish within its bound.
var ErrSubTaskTimeout = errors.New("sub-task timed out")

// SubTaskError wraps a failure raised by a sub-task or by decoding its response.
type SubTaskError struct {
	Task string
	Err  error
}

func (e *SubTaskError) Error() string {
	return fmt.Sprintf("sub-task %s failed: %v", e.Task, e.Err)
}

func (e *SubTaskError) Unwrap() error {
	return e.Err
}

// CacheIOError wraps a read or write failure of a cache store.
type CacheIOError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheIOError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *CacheIOError) Unwrap() error {
	return e.Err
}

// BudgetParseError reports a malformed budget string. The budget breakdown is
// still produced with default values when this error is returned.
type BudgetParseError struct {
	Input string
	Err   error
}

func (e *BudgetParseError) Error() string {
	return fmt.Sprintf("invalid budget %q: %v", e.Input, e.Err)
}

func (e *BudgetParseError) Unwrap() error {
	return e.Err
}
