package strapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("strapi: request %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Canceled reports whether the caller abandoned the request.
func (e *NetworkError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	Endpoint string
	Code     int
	Status   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("strapi: %s returned %d %s", e.Endpoint, e.Code, e.Status)
}

// Temporary reports statuses worth retrying: 408, 429 and 5xx.
func (e *HTTPStatusError) Temporary() bool {
	switch {
	case e.Code == http.StatusRequestTimeout, e.Code == http.StatusTooManyRequests:
		return true
	case e.Code >= 500:
		return true
	default:
		return false
	}
}

// DecodeError reports a 2xx body that is not a Strapi envelope.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("strapi: decode %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Permanent marks the failure as deterministic: retrying yields the same body.
func (e *DecodeError) Permanent() bool { return true }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
