package search

import (
	"github.com/cockroachdb/errors"

	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/domain/search/kind"
	"github.com/kailas-cloud/citrination/internal/routes"
)

// DefaultFailureMessage is reported for search failures without a more
// specific message.
const DefaultFailureMessage = "An error occurred requesting search results from Citrination"

type route struct {
	path    string
	failure string
}

func (r route) failureMessage() string {
	if r.failure == "" {
		return DefaultFailureMessage
	}
	return r.failure
}

var multiSearchRoute = route{
	path:    routes.PifMultiSearch,
	failure: "Error while making PIF multi search request",
}

// routeFor is the single registration point for search kinds.
// A new kind needs a case here before it can be searched.
func routeFor(k kind.Kind) (route, error) {
	switch k {
	case kind.PifSystem:
		return route{path: routes.PifSearch, failure: "Error while making PIF search request"}, nil
	case kind.Dataset:
		return route{path: routes.DatasetSearch, failure: "Error while making dataset search request"}, nil
	default:
		return route{}, errors.Wrapf(domain.ErrUnknownKind, "%q", string(k))
	}
}
