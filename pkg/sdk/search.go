package citrination

import (
	"context"
	"fmt"
	"time"
)

// SearchService runs PIF and dataset searches.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// PifSearch runs a PIF system query and returns every hit in the requested
// window. The window must end before MaxQueryResults; a size above the
// client's maximum is capped with a warning. A platform timeout returns an
// error matching ErrRequestTimeout.
func (s *SearchService) PifSearch(
	ctx context.Context, q PifSystemReturningQuery,
) (_ PifSearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.pif", start, err) }()

	res, err := s.svc.PifSearch(ctx, q)
	if err != nil {
		return PifSearchResult{}, fmt.Errorf("pif search: %w", err)
	}
	s.obs.observeHits("search.pif", len(res.Hits))
	return res, nil
}

// DatasetSearch runs a dataset query with the same paging rules as PifSearch.
func (s *SearchService) DatasetSearch(
	ctx context.Context, q DatasetReturningQuery,
) (_ DatasetSearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.dataset", start, err) }()

	res, err := s.svc.DatasetSearch(ctx, q)
	if err != nil {
		return DatasetSearchResult{}, fmt.Errorf("dataset search: %w", err)
	}
	s.obs.observeHits("search.dataset", len(res.Hits))
	return res, nil
}

// PifMultiSearch runs several PIF queries in one request. The platform
// answers each query once; results are not paged.
func (s *SearchService) PifMultiSearch(
	ctx context.Context, mq MultiQuery,
) (_ PifMultiSearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.pif_multi", start, err) }()

	res, err := s.svc.PifMultiSearch(ctx, mq)
	if err != nil {
		return PifMultiSearchResult{}, fmt.Errorf("pif multi search: %w", err)
	}
	return res, nil
}

// GenerateSimpleChemicalQuery builds a PIF query from simple criteria. Run
// it with PifSearch. Matched values are extracted into each hit under
// "name", "chemical_formula", "property_name", "property_value",
// "property_units" and "reference_doi".
func (s *SearchService) GenerateSimpleChemicalQuery(q SimpleChemicalQuery) PifSystemReturningQuery {
	return q.Build()
}
