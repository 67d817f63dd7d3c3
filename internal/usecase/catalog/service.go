package catalog

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/domain/record"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
	"github.com/kailas-cloud/citrination/internal/logger"
)

// Multi-search entry statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

const (
	defaultPageSize = 10
	defaultMaxPage  = 100
)

// Service answers search and data requests from a store, the way the
// platform does: one page per request, capped at a server page size and
// at the overall result window.
type Service struct {
	repo        Repository
	files       FileStore
	maxPageSize int
	maxResults  int
}

// New creates a catalog service.
func New(repo Repository, files FileStore) *Service {
	return &Service{
		repo:        repo,
		files:       files,
		maxPageSize: defaultMaxPage,
		maxResults:  domain.MaxQueryResults,
	}
}

// WithLimits configures the server page size and the result window.
func (s *Service) WithLimits(maxPageSize, maxResults int) *Service {
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	if maxResults > 0 {
		s.maxResults = maxResults
	}
	return s
}

// pageBounds returns the offset and page size for a request window. Pages
// never reach past the result window.
func (s *Service) pageBounds(w query.Window) (from, size int, err error) {
	if w.FromIndex != nil {
		from = *w.FromIndex
	}
	size = defaultPageSize
	if w.Size != nil {
		size = *w.Size
	}
	if from < 0 || size < 0 {
		return 0, 0, errors.Wrap(domain.ErrInvalidQuery, "from_index and size must not be negative")
	}
	if from >= s.maxResults {
		return 0, 0, errors.Wrapf(domain.ErrInvalidQuery,
			"from_index must be below %d", s.maxResults)
	}
	size = min(size, s.maxPageSize, s.maxResults-from)
	return from, size, nil
}

// SearchPifs returns one page of PIF systems.
func (s *Service) SearchPifs(
	ctx context.Context, q query.PifSystemReturningQuery,
) (result.Page[result.PifSearchHit], error) {
	start := time.Now()
	from, size, err := s.pageBounds(q.Window())
	if err != nil {
		return result.Page[result.PifSearchHit]{}, err
	}

	pifs, total, err := s.repo.FindPifs(ctx, pifFilter(q.Query), from, size)
	if err != nil {
		return result.Page[result.PifSearchHit]{}, errors.Wrap(err, "find pifs")
	}

	withSystem := q.ReturnSystem == nil || *q.ReturnSystem
	hits := make([]result.PifSearchHit, 0, len(pifs))
	for _, p := range pifs {
		hits = append(hits, pifHit(p, q, withSystem))
	}

	logger.FromContext(ctx).Debug("pif page served",
		zap.Int("from_index", from), zap.Int("size", size),
		zap.Int("hits", len(hits)), zap.Int("total_num_hits", total))

	page := result.Page[result.PifSearchHit]{Hits: hits, TotalNumHits: total, Took: time.Since(start).Seconds()}
	if q.ReturnMaxScore != nil && *q.ReturnMaxScore && len(hits) > 0 {
		page.MaxScore = hits[0].Score
	}
	return page, nil
}

// SearchDatasets returns one page of datasets.
func (s *Service) SearchDatasets(
	ctx context.Context, q query.DatasetReturningQuery,
) (result.Page[result.DatasetSearchHit], error) {
	start := time.Now()
	from, size, err := s.pageBounds(q.Window())
	if err != nil {
		return result.Page[result.DatasetSearchHit]{}, err
	}

	datasets, total, err := s.repo.FindDatasets(ctx, datasetFilter(q.Query), from, size)
	if err != nil {
		return result.Page[result.DatasetSearchHit]{}, errors.Wrap(err, "find datasets")
	}

	hits := make([]result.DatasetSearchHit, 0, len(datasets))
	for _, d := range datasets {
		hit := result.DatasetSearchHit{
			ID:          strconv.Itoa(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Owner:       d.Owner,
			Email:       d.Email,
			UpdatedAt:   d.CreatedAt.Format(time.RFC3339),
		}
		if q.CountPifs != nil && *q.CountPifs {
			n, err := s.repo.CountPifs(ctx, d.ID)
			if err != nil {
				return result.Page[result.DatasetSearchHit]{}, errors.Wrap(err, "count pifs")
			}
			hit.NumPifs = &n
		}
		hits = append(hits, hit)
	}

	return result.Page[result.DatasetSearchHit]{
		Hits: hits, TotalNumHits: total, Took: time.Since(start).Seconds(),
	}, nil
}

// MultiSearch answers each query independently. A failing query yields a
// failure entry; it does not fail the batch.
func (s *Service) MultiSearch(ctx context.Context, mq query.MultiQuery) (result.MultiSearch, error) {
	if len(mq.Queries) == 0 {
		return result.MultiSearch{}, errors.Wrap(domain.ErrInvalidQuery, "queries are required")
	}
	start := time.Now()
	out := result.MultiSearch{Results: make([]result.MultiSearchEntry, 0, len(mq.Queries))}
	for i, q := range mq.Queries {
		page, err := s.SearchPifs(ctx, q)
		if err != nil {
			logger.FromContext(ctx).Info("multi search query failed", zap.Int("index", i), zap.Error(err))
			out.Results = append(out.Results, result.MultiSearchEntry{Status: StatusFailure})
			continue
		}
		out.Results = append(out.Results, result.MultiSearchEntry{Result: &page, Status: StatusSuccess})
	}
	out.Took = time.Since(start).Seconds()
	return out, nil
}

// CreateDataset creates a dataset.
func (s *Service) CreateDataset(ctx context.Context, name, description string, public bool) (record.Dataset, error) {
	if name == "" {
		return record.Dataset{}, errors.Wrap(domain.ErrInvalidQuery, "dataset name is required")
	}
	d, err := s.repo.CreateDataset(ctx, name, description, public)
	if err != nil {
		return record.Dataset{}, errors.Wrap(err, "create dataset")
	}
	return d, nil
}

// BeginUpload reserves an upload and returns its request ID.
func (s *Service) BeginUpload(ctx context.Context, datasetID int, fileName string) (string, error) {
	if fileName == "" {
		return "", errors.Wrap(domain.ErrInvalidQuery, "file name is required")
	}
	return s.files.BeginUpload(ctx, datasetID, fileName)
}

// WriteUpload stores the content of a pending upload.
func (s *Service) WriteUpload(ctx context.Context, requestID string, data []byte) error {
	return s.files.WriteUpload(ctx, requestID, data)
}

// ConfirmUpload publishes a written upload at dest.
func (s *Service) ConfirmUpload(ctx context.Context, datasetID int, requestID, dest string) error {
	return s.files.ConfirmUpload(ctx, datasetID, requestID, dest)
}

// ListFiles lists dataset files matching path.
func (s *Service) ListFiles(ctx context.Context, datasetID int, path string, recursive bool) ([]string, error) {
	return s.files.ListFiles(ctx, datasetID, path, recursive)
}

func pifHit(p record.Pif, q query.PifSystemReturningQuery, withSystem bool) result.PifSearchHit {
	hit := result.PifSearchHit{
		ID:             p.ID,
		Dataset:        strconv.Itoa(p.DatasetID),
		DatasetVersion: p.DatasetVersion,
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
	if q.ScoreRelevance != nil && *q.ScoreRelevance {
		score := 1.0
		hit.Score = &score
	}
	if withSystem {
		hit.System = p.System
	}
	if extracted := extract(p, q.Query); len(extracted) > 0 {
		hit.Extracted = extracted
	}
	return hit
}

// extract fills the extract_as names of the formula and names clauses.
func extract(p record.Pif, queries []query.DataQuery) map[string]any {
	out := map[string]any{}
	for _, dq := range queries {
		for _, sys := range dq.System {
			if sys.ChemicalFormula != nil && sys.ChemicalFormula.ExtractAs != "" {
				if f := p.ChemicalFormula(); f != "" {
					out[sys.ChemicalFormula.ExtractAs] = f
				}
			}
			if sys.Names != nil && sys.Names.ExtractAs != "" {
				if names := p.Names(); len(names) > 0 {
					out[sys.Names.ExtractAs] = names
				}
			}
		}
	}
	return out
}
