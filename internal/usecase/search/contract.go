package search

import (
	"context"

	"github.com/kailas-cloud/citrination/internal/domain"
)

// Transport posts an encoded query to a platform route.
// A non-nil error means no response was received.
type Transport interface {
	Post(ctx context.Context, route string, body []byte) (domain.Response, error)
}

// Warner receives non-fatal diagnostics such as size capping.
type Warner interface {
	Warn(ctx context.Context, msg string)
}
