package catalog

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is matched by every transport, status and decoding failure.
var ErrRequestFailed = errors.New("catalog request failed")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog API error (status %d): %s", e.Code, e.Body)
}

// StatusCode exposes the HTTP status to the retry package.
func (e *StatusError) StatusCode() int {
	return e.Code
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRequestFailed
}

// LogicalFailureError is returned when a successful response reports that it
// carries no usable data.
type LogicalFailureError struct {
	Message string
}

func (e *LogicalFailureError) Error() string {
	if e.Message == "" {
		return "catalog reported failure"
	}
	return "catalog reported failure: " + e.Message
}
