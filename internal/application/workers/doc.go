// Package workers implements the bounded task runner used by the planner.
//
// The pool caps the number of sub-tasks running at once and executes each
// task on its own goroutine:
//   - Every task gets a deadline; the caller gets an Outcome back as soon as
//     the task finishes or the deadline passes, whichever comes first
//   - A timed-out task has its context cancelled but is not killed; it may
//     keep running until it next checks the context
//   - Errors and panics are converted into failed outcomes, never retried
//
// The health monitor tracks slot usage and logs metrics.
package workers
