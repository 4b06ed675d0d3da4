package httpx

import (
	"errors"
	"fmt"
)

// StatusError reports an HTTP-level rejection from an upstream. Distinct from
// ErrTransport so callers can tell a reachable-but-refusing provider apart
// from a dead one.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, body)
}

// StatusCode extracts the HTTP status from an error chain, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Err converts a non-2xx response into a *StatusError; nil for 2xx.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{Code: r.StatusCode, Body: string(r.Body)}
}
