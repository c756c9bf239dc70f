package practicum

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every failure to obtain a response body from the API.
var ErrUnavailable = errors.New("review API unavailable")

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }

// StatusError is a response with a status other than 200 OK.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint %s is unavailable, API status code: %d", e.Endpoint, e.Code)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnavailable }
