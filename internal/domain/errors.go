package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// MaxQueryResults is the platform's hard cap on from_index + size.
const MaxQueryResults = 50000

var (
	// ErrClientConfiguration signals a caller-supplied value the platform cannot serve.
	ErrClientConfiguration = errors.New("client configuration error")
	// ErrRequestTimeout signals that the platform timed out serving a search (HTTP 204).
	ErrRequestTimeout = errors.New("request timed out")
	// ErrRequestFailed signals a non-success response from the platform.
	ErrRequestFailed = errors.New("request failed")
	// ErrUnknownKind signals a search kind without a registered route.
	ErrUnknownKind = errors.New("unknown search kind")
	// ErrInvalidQuery signals a malformed query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnauthorized signals a missing or rejected API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// RequestError is a non-success response from the platform.
// Message is the operation-specific failure message.
type RequestError struct {
	Route      string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (%s returned %d)", e.Message, e.Route, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return ErrRequestFailed }

// NewRequestError creates a request error.
func NewRequestError(route string, statusCode int, message string) error {
	return &RequestError{Route: route, StatusCode: statusCode, Message: message}
}

// ConfigurationError is a caller-supplied value the platform cannot serve.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func (e *ConfigurationError) Unwrap() error { return ErrClientConfiguration }

// NewWindowLimitError reports a from_index/size window past MaxQueryResults.
func NewWindowLimitError() error {
	return &ConfigurationError{Message: fmt.Sprintf(
		"Citrination does not support pagination past the %dth result. "+
			"Please change from_index and size arguments to be within this limit",
		MaxQueryResults,
	)}
}

// NewTimeoutError reports a search the platform gave up on.
func NewTimeoutError(route string) error {
	return errors.Wrapf(ErrRequestTimeout, "%s", route)
}
