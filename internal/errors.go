package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors of the dispatch core.
var (
	ErrControllerNotFound  = errors.New("anvil: controller not found")
	ErrActionNotFound      = errors.New("anvil: action not found")
	ErrUnknownProp         = errors.New("anvil: unknown prop")
	ErrPropType            = errors.New("anvil: prop type mismatch")
	ErrBadEmbedParams      = errors.New("anvil: bad embed parameters")
	ErrEmbedDepthExceeded  = errors.New("anvil: embed depth exceeded")
	ErrEmbedPanic          = errors.New("anvil: panic in embedded controller")
	ErrViewsNotConfigured  = errors.New("anvil: views not configured")
	ErrRoutesNotConfigured = errors.New("anvil: routes not configured")
	ErrCSRF                = errors.New("anvil: csrf check failed")
	ErrBasicAuth           = errors.New("anvil: basic auth rejected")
	ErrBadHeaderLine       = errors.New("anvil: malformed header line")
)

// HTTPError is an error carrying an HTTP status code and a user-facing message.
type HTTPError struct {
	// Err is the underlying cause, for logs only.
	Err error

	// Message is the user-facing error message.
	Message string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// IsHTTPError reports whether err or any error it wraps is an *HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError returns the first *HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// EmbedError wraps a failure raised inside an embedded controller.
type EmbedError struct {
	Err        error
	Controller string
	Action     string
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("error occurred in an embed call (%s/%s): %v", e.Controller, e.Action, e.Err)
}

func (e *EmbedError) Unwrap() error {
	return e.Err
}
