package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/citrination/internal/codec"
	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
	"github.com/kailas-cloud/citrination/internal/logger"
)

// DefaultMaxQuerySize is the number of hits a single logical search returns
// when the caller does not ask for fewer.
const DefaultMaxQuerySize = 10000

// maxBodyExcerpt bounds the response body attached to request errors.
const maxBodyExcerpt = 512

// Service runs searches against the platform, paging through results.
type Service struct {
	transport    Transport
	warner       Warner
	maxQuerySize int
}

// New creates a search service. warner can be nil; warnings then go to the
// context logger.
func New(transport Transport, warner Warner) *Service {
	return &Service{transport: transport, warner: warner, maxQuerySize: DefaultMaxQuerySize}
}

// WithMaxQuerySize configures the maximum hits per logical search.
func (s *Service) WithMaxQuerySize(size int) *Service {
	if size > 0 {
		s.maxQuerySize = size
	}
	return s
}

// MaxQuerySize returns the maximum hits per logical search.
func (s *Service) MaxQuerySize() int { return s.maxQuerySize }

// PifSearch runs a PIF system search.
func (s *Service) PifSearch(ctx context.Context, q query.PifSystemReturningQuery) (result.PifSearch, error) {
	return paginate[query.PifSystemReturningQuery, result.PifSearchHit](ctx, s, q)
}

// DatasetSearch runs a dataset search.
func (s *Service) DatasetSearch(ctx context.Context, q query.DatasetReturningQuery) (result.DatasetSearch, error) {
	return paginate[query.DatasetReturningQuery, result.DatasetSearchHit](ctx, s, q)
}

// PifMultiSearch runs a batch of PIF queries in a single request. The
// platform answers every query; nothing is paged client-side.
func (s *Service) PifMultiSearch(ctx context.Context, mq query.MultiQuery) (result.MultiSearch, error) {
	if len(mq.Queries) == 0 {
		return result.MultiSearch{}, errors.Wrap(domain.ErrInvalidQuery, "multi query has no queries")
	}
	body, err := s.post(ctx, multiSearchRoute, mq)
	if err != nil {
		return result.MultiSearch{}, err
	}
	var out result.MultiSearch
	if err := codec.DecodeResults(body, &out); err != nil {
		return result.MultiSearch{}, errors.Wrap(err, multiSearchRoute.failureMessage())
	}
	return out, nil
}

// checkWindow rejects windows the platform cannot page to.
func checkWindow(w query.Window) error {
	if (w.FromIndex != nil && *w.FromIndex < 0) || (w.Size != nil && *w.Size < 0) {
		return &domain.ConfigurationError{Message: "from_index and size must not be negative"}
	}
	// Checked one by one first so the sum cannot wrap.
	if (w.FromIndex != nil && *w.FromIndex >= domain.MaxQueryResults) ||
		(w.Size != nil && *w.Size >= domain.MaxQueryResults) ||
		w.Span() >= domain.MaxQueryResults {
		return domain.NewWindowLimitError()
	}
	return nil
}

// paginate fetches pages of q until the requested size, the reported total
// or the end of the window is reached, and assembles one result. Pages are
// requested in order; each page starts where the hits gathered so far end.
// Any failure discards the hits gathered so far. Windows past the
// platform's result limit fail before any request is sent.
func paginate[Q query.Paged[Q], H any](ctx context.Context, s *Service, q Q) (result.Search[H], error) {
	rt, err := routeFor(q.Kind())
	if err != nil {
		return result.Search[H]{}, err
	}

	w := q.Window()
	if err := checkWindow(w); err != nil {
		return result.Search[H]{}, err
	}
	from := 0
	if w.FromIndex != nil {
		from = *w.FromIndex
	}
	size := s.maxQuerySize
	if w.Size != nil {
		size = min(*w.Size, s.maxQuerySize)
	}
	if size == s.maxQuerySize && (w.Size == nil || *w.Size != s.maxQuerySize) {
		s.warn(ctx, fmt.Sprintf("Query size greater than max system size - only %d results will be returned", size))
	}

	log := logger.FromContext(ctx)
	var (
		hits  = make([]H, 0)
		took  float64
		total int
	)
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return result.Search[H]{}, errors.Wrap(err, rt.failureMessage())
		}

		offset := from + len(hits)
		sub := q.WithFromIndex(offset)

		body, err := s.post(ctx, rt, sub)
		if err != nil {
			return result.Search[H]{}, err
		}
		var p result.Page[H]
		if err := codec.DecodeResults(body, &p); err != nil {
			return result.Search[H]{}, errors.Wrap(err, rt.failureMessage())
		}

		total = p.TotalNumHits
		took += p.Took
		hits = append(hits, p.Hits...)

		log.Debug("search page fetched",
			zap.String("route", rt.path),
			zap.Int("page", page),
			zap.Int("from_index", offset),
			zap.Int("page_hits", len(p.Hits)),
			zap.Int("total_num_hits", total),
		)

		if len(hits) >= size || len(hits) >= total || offset >= total {
			break
		}
		// An empty page would be requested again at the same offset.
		if len(p.Hits) == 0 {
			log.Warn("search page returned no hits before reaching the reported total",
				zap.String("route", rt.path),
				zap.Int("from_index", offset),
				zap.Int("total_num_hits", total),
			)
			break
		}
	}

	return result.Search[H]{Hits: hits, TotalNumHits: total, Took: took}, nil
}

// post encodes payload, sends it and checks the response status.
func (s *Service) post(ctx context.Context, rt route, payload any) ([]byte, error) {
	body, err := codec.Encode(payload)
	if err != nil {
		return nil, errors.Wrap(err, rt.failureMessage())
	}

	resp, err := s.transport.Post(ctx, rt.path, body)
	if err != nil {
		return nil, errors.Wrap(err, rt.failureMessage())
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, domain.NewTimeoutError(rt.path)
	case !resp.OK():
		return nil, errors.WithDetailf(
			domain.NewRequestError(rt.path, resp.StatusCode, rt.failureMessage()),
			"response body: %s", excerpt(resp.Body),
		)
	}
	return resp.Body, nil
}

func (s *Service) warn(ctx context.Context, msg string) {
	if s.warner != nil {
		s.warner.Warn(ctx, msg)
		return
	}
	logger.FromContext(ctx).Warn(msg)
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}
