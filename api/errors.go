package api

import (
	"fmt"
	"time"
)

// StatusError is returned for non-2xx responses from the verification
// service. The message carries the status code and reason phrase so it can
// be surfaced to the user verbatim.
type StatusError struct {
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d %s", e.Code, e.Reason)
}

// TimeoutError is returned when a request exceeds its configured bound.
// A distinct type lets callers tell a stalled service apart from one that
// answered with a failure.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}
