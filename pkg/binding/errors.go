package binding

import (
	"fmt"

	"github.com/quickapi/go-quickapi/pkg/request"
)

// RequestError wraps a failure of the underlying HTTP client: DNS, connection, TLS, timeout, cancellation.
// A response with an error status code is not a RequestError.
type RequestError struct {
	Method request.Method
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf(`request %s "%s" failed`, e.Method, e.URL)
	}
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UnsupportedMethodError is returned by Binding.Send for a method without a client constructor.
// All defined methods are dispatched, PATCH included, so only an out-of-range request.Method value,
// for example request.Method(42), produces it.
type UnsupportedMethodError struct {
	Method request.Method
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported HTTP method: %s", e.Method)
}

// InvalidResponseError reports a response of an unexpected shape.
type InvalidResponseError struct {
	Message string
}

func NewInvalidResponseError(format string, a ...any) *InvalidResponseError {
	return &InvalidResponseError{Message: fmt.Sprintf(format, a...)}
}

func (e *InvalidResponseError) Error() string {
	return "invalid response: " + e.Message
}
