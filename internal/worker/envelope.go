// Package worker owns one long-lived background worker goroutine per Channel
// and correlates requests to responses by id. Callers get a Future per
// request; resolution, rejection, or timeout settles that future exactly
// once. No other component talks to the worker directly.
package worker

import (
	"errors"
	"fmt"
	"time"
)

// RequestType identifies the operation carried by a request envelope.
type RequestType string

const (
	FilterData   RequestType = "FILTER_DATA"
	SortData     RequestType = "SORT_DATA"
	ValidateData RequestType = "VALIDATE_DATA"
)

// ResponseType identifies the payload carried by a response envelope.
type ResponseType string

const (
	FilterResult   ResponseType = "FILTER_RESULT"
	SortResult     ResponseType = "SORT_RESULT"
	ValidateResult ResponseType = "VALIDATE_RESULT"
	ErrorResult    ResponseType = "ERROR"
)

// Request is the envelope posted to the worker. ID is generated at send time
// and is globally unique per channel instance.
type Request struct {
	ID      string
	Type    RequestType
	Payload any
}

// Response is the envelope the worker returns. ID echoes the request it
// answers; an ErrorResult carries the failure message in Err.
type Response struct {
	ID      string
	Type    ResponseType
	Payload any
	Err     string
}

// Handler executes one request on the worker goroutine. A returned
// ErrorResult rejects just that request; a panic is treated as a worker-level
// fault and rejects everything pending.
type Handler func(Request) Response

// ErrUnavailable reports that the channel was constructed without worker
// capability. Callers use the synchronous path instead; this is not a user
// visible error.
var ErrUnavailable = errors.New("worker channel unavailable")

// ErrTerminated reports that the channel was shut down while the request was
// pending.
var ErrTerminated = errors.New("worker channel terminated")

// TimeoutError rejects a request that received no response within the
// configured window. Retrying is the caller's decision and always uses a new
// request id.
type TimeoutError struct {
	ID      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("worker request %s timed out after %s", e.ID, e.Timeout)
}

// FaultError rejects every pending request when the worker itself fails.
// The channel treats such faults as total, not partial, failure.
type FaultError struct {
	Cause string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("worker fault: %s", e.Cause)
}
