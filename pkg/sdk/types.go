package citrination

import (
	"github.com/kailas-cloud/citrination/internal/domain/dataset"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
	"github.com/kailas-cloud/citrination/internal/domain/upload"
)

// Query model.
type (
	Filter                  = query.Filter
	ChemicalFilter          = query.ChemicalFilter
	FieldQuery              = query.FieldQuery
	ChemicalFieldQuery      = query.ChemicalFieldQuery
	PropertyQuery           = query.PropertyQuery
	ReferenceQuery          = query.ReferenceQuery
	PifSystemQuery          = query.PifSystemQuery
	DatasetQuery            = query.DatasetQuery
	DataQuery               = query.DataQuery
	ReturningQuery          = query.Returning
	PifSystemReturningQuery = query.PifSystemReturningQuery
	DatasetReturningQuery   = query.DatasetReturningQuery
	MultiQuery              = query.MultiQuery
	// SimpleChemicalQuery describes a simple PIF search; see
	// SearchService.GenerateSimpleChemicalQuery.
	SimpleChemicalQuery = query.SimpleChemical
)

// Results.
type (
	PifSearchHit         = result.PifSearchHit
	DatasetSearchHit     = result.DatasetSearchHit
	PifSearchResult      = result.PifSearch
	DatasetSearchResult  = result.DatasetSearch
	PifMultiSearchResult = result.MultiSearch
	PifMultiSearchEntry  = result.MultiSearchEntry
	PifSearchPage        = result.Page[result.PifSearchHit]
)

// Datasets and uploads.
type (
	Dataset       = dataset.Dataset
	UploadResult  = upload.Result
	UploadFailure = upload.Failure
	UploadSuccess = upload.Success
)

// Clause logic values.
const (
	LogicShould   = query.LogicShould
	LogicMust     = query.LogicMust
	LogicMustNot  = query.LogicMustNot
	LogicOptional = query.LogicOptional
)

// Int returns a pointer to n, for optional query fields.
func Int(n int) *int { return query.Int(n) }

// Bool returns a pointer to b, for optional query fields.
func Bool(b bool) *bool { return query.Bool(b) }

// Float returns a pointer to f, for optional query fields.
func Float(f float64) *float64 { return query.Float(f) }
