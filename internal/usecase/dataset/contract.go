package dataset

import (
	"context"
	"io"

	"github.com/kailas-cloud/citrination/internal/domain"
)

// Transport talks to the platform's data routes and to upload URLs.
type Transport interface {
	Post(ctx context.Context, route string, body []byte) (domain.Response, error)
	// Put sends raw bytes to an absolute upload URL handed out by the platform.
	Put(ctx context.Context, url string, body io.Reader, size int64) (domain.Response, error)
}
