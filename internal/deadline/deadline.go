// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deadline bounds external calls to a hard wall-clock budget.
//
// Two strategies are provided. Process isolates a call in a child OS
// process that is force-killed on expiry; it is the strategy of record for
// dependencies that can hang in native I/O and ignore cooperative
// cancellation. Call is the in-process fallback: it cancels through the
// context and, after a bounded grace wait, abandons the goroutine. In both
// modes the caller gets an answer within timeout plus a small fixed
// overhead, and an expired call can never deliver a late result into a
// subsequent attempt.
package deadline

import (
	"context"
	"errors"
	"time"
)

// Status classifies the outcome of a bounded call.
type Status string

const (
	// StatusOK means the call completed within its budget.
	StatusOK Status = "ok"

	// StatusTimeout means the budget expired before the call finished.
	StatusTimeout Status = "timeout"

	// StatusError means the call itself failed within its budget.
	StatusError Status = "error"
)

// Outcome is the result of one bounded call. Value is meaningful only
// when Status is StatusOK. Err is set for StatusError and may carry
// diagnostic detail on a timeout.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Failed reports whether the call did not produce a value. Callers treat
// Timeout and Error identically unless a component says otherwise.
func (o Outcome[T]) Failed() bool {
	return o.Status != StatusOK
}

// graceWait is how long Call waits after the deadline for a cooperative
// function to notice cancellation before abandoning it.
var graceWait = 500 * time.Millisecond

// Call runs fn under a hard deadline. fn receives a context that is
// cancelled at the deadline; a well-behaved fn returns promptly with
// ctx.Err(). A fn that ignores cancellation is abandoned after a short
// grace wait and its eventual result is discarded — Call itself always
// returns within timeout plus the grace window.
//
// Call is the weaker, in-process strategy; use Process for dependencies
// that may block outside Go's scheduler.
func Call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) Outcome[T] {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	// Buffered so an abandoned fn can still send without leaking forever.
	ch := make(chan result, 1)

	go func() {
		v, err := fn(callCtx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return classify(callCtx, r.value, r.err)
	case <-callCtx.Done():
	}

	// Deadline hit before fn returned: give it the grace window to honor
	// cancellation, then abandon it.
	grace := time.NewTimer(graceWait)
	defer grace.Stop()

	select {
	case r := <-ch:
		return classify(callCtx, r.value, r.err)
	case <-grace.C:
		var zero T
		return Outcome[T]{Status: StatusTimeout, Value: zero}
	}
}

// classify maps a completed call onto an Outcome. Errors caused by the
// call's own deadline count as timeouts, not call errors.
func classify[T any](ctx context.Context, value T, err error) Outcome[T] {
	if err == nil {
		return Outcome[T]{Status: StatusOK, Value: value}
	}
	var zero T
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return Outcome[T]{Status: StatusTimeout, Value: zero}
	}
	return Outcome[T]{Status: StatusError, Value: zero, Err: err}
}
