package citrination

import "github.com/kailas-cloud/citrination/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrClientConfiguration = domain.ErrClientConfiguration
	ErrRequestTimeout      = domain.ErrRequestTimeout
	ErrRequestFailed       = domain.ErrRequestFailed
	ErrInvalidQuery        = domain.ErrInvalidQuery
)

// RequestError is a non-success platform response. Use errors.As() to
// read the status code and failure message.
type RequestError = domain.RequestError

// ConfigurationError is a window or parameter the platform cannot serve.
type ConfigurationError = domain.ConfigurationError

// MaxQueryResults is the platform's cap on from_index + size.
const MaxQueryResults = domain.MaxQueryResults
