// Package query holds the PIF and dataset query model. Field names are the
// snake_case names of the platform's query language; the codec converts them
// to camelCase on the wire.
package query

import (
	"github.com/kailas-cloud/citrination/internal/domain/search/kind"
)

// Logic values for query clauses.
const (
	LogicShould   = "SHOULD"
	LogicMust     = "MUST"
	LogicMustNot  = "MUST_NOT"
	LogicOptional = "OPTIONAL"
)

// Filter restricts a field to exact values, a range or existence.
type Filter struct {
	Logic  string   `json:"logic,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Exists *bool    `json:"exists,omitempty"`
	Equal  any      `json:"equal,omitempty"`
	Min    any      `json:"min,omitempty"`
	Max    any      `json:"max,omitempty"`
	Filter []Filter `json:"filter,omitempty"`
}

// ChemicalFilter is a Filter for chemical formulas.
type ChemicalFilter struct {
	Logic   string           `json:"logic,omitempty"`
	Weight  *float64         `json:"weight,omitempty"`
	Exists  *bool            `json:"exists,omitempty"`
	Equal   string           `json:"equal,omitempty"`
	Element *bool            `json:"element,omitempty"`
	Partial *bool            `json:"partial,omitempty"`
	Exact   *bool            `json:"exact,omitempty"`
	Filter  []ChemicalFilter `json:"filter,omitempty"`
}

// FieldQuery matches and optionally extracts a single field.
type FieldQuery struct {
	Sort               string      `json:"sort,omitempty"`
	Weight             *float64    `json:"weight,omitempty"`
	Logic              string      `json:"logic,omitempty"`
	Simple             string      `json:"simple,omitempty"`
	ExtractAs          string      `json:"extract_as,omitempty"`
	ExtractAll         *bool       `json:"extract_all,omitempty"`
	ExtractWhenMissing any         `json:"extract_when_missing,omitempty"`
	Length             *FieldQuery `json:"length,omitempty"`
	Offset             *FieldQuery `json:"offset,omitempty"`
	Filter             []Filter    `json:"filter,omitempty"`
}

// ChemicalFieldQuery matches and optionally extracts a chemical formula.
type ChemicalFieldQuery struct {
	Sort               string           `json:"sort,omitempty"`
	Weight             *float64         `json:"weight,omitempty"`
	Logic              string           `json:"logic,omitempty"`
	Simple             string           `json:"simple,omitempty"`
	ExtractAs          string           `json:"extract_as,omitempty"`
	ExtractAll         *bool            `json:"extract_all,omitempty"`
	ExtractWhenMissing any              `json:"extract_when_missing,omitempty"`
	Filter             []ChemicalFilter `json:"filter,omitempty"`
}

// PropertyQuery matches a property of a system.
type PropertyQuery struct {
	Logic      string          `json:"logic,omitempty"`
	ExtractAs  string          `json:"extract_as,omitempty"`
	Name       *FieldQuery     `json:"name,omitempty"`
	Value      *FieldQuery     `json:"value,omitempty"`
	Units      *FieldQuery     `json:"units,omitempty"`
	DataType   *FieldQuery     `json:"data_type,omitempty"`
	References *ReferenceQuery `json:"references,omitempty"`
}

// ReferenceQuery matches a literature reference.
type ReferenceQuery struct {
	Logic     string      `json:"logic,omitempty"`
	ExtractAs string      `json:"extract_as,omitempty"`
	Doi       *FieldQuery `json:"doi,omitempty"`
	Isbn      *FieldQuery `json:"isbn,omitempty"`
	Title     *FieldQuery `json:"title,omitempty"`
	Year      *FieldQuery `json:"year,omitempty"`
}

// PifSystemQuery matches a PIF system record.
type PifSystemQuery struct {
	Logic           string              `json:"logic,omitempty"`
	ExtractAs       string              `json:"extract_as,omitempty"`
	Simple          string              `json:"simple,omitempty"`
	UID             *FieldQuery         `json:"uid,omitempty"`
	Names           *FieldQuery         `json:"names,omitempty"`
	ChemicalFormula *ChemicalFieldQuery `json:"chemical_formula,omitempty"`
	Properties      []PropertyQuery     `json:"properties,omitempty"`
	References      *ReferenceQuery     `json:"references,omitempty"`
	Tags            *FieldQuery         `json:"tags,omitempty"`
}

// DatasetQuery matches dataset metadata.
type DatasetQuery struct {
	Logic       string   `json:"logic,omitempty"`
	Simple      string   `json:"simple,omitempty"`
	ID          []Filter `json:"id,omitempty"`
	IsFeatured  []Filter `json:"is_featured,omitempty"`
	Name        []Filter `json:"name,omitempty"`
	Description []Filter `json:"description,omitempty"`
	Owner       []Filter `json:"owner,omitempty"`
	Email       []Filter `json:"email,omitempty"`
}

// DataQuery combines system and dataset clauses.
type DataQuery struct {
	Logic   string           `json:"logic,omitempty"`
	Simple  string           `json:"simple,omitempty"`
	System  []PifSystemQuery `json:"system,omitempty"`
	Dataset []DatasetQuery   `json:"dataset,omitempty"`
}

// Window is the requested slice of the full result set. Nil fields are absent.
type Window struct {
	FromIndex *int
	Size      *int
}

// Span returns from_index + size counting absent values as zero.
func (w Window) Span() int {
	n := 0
	if w.FromIndex != nil {
		n += *w.FromIndex
	}
	if w.Size != nil {
		n += *w.Size
	}
	return n
}

// Returning holds the fields shared by every result-returning query.
type Returning struct {
	Query          []DataQuery `json:"query,omitempty"`
	FromIndex      *int        `json:"from_index,omitempty"`
	Size           *int        `json:"size,omitempty"`
	RandomResults  *bool       `json:"random_results,omitempty"`
	RandomSeed     *int        `json:"random_seed,omitempty"`
	ScoreRelevance *bool       `json:"score_relevance,omitempty"`
	ReturnMaxScore *bool       `json:"return_max_score,omitempty"`
	Timeout        *int        `json:"timeout,omitempty"`
}

// Window returns the requested slice.
func (r Returning) Window() Window {
	return Window{FromIndex: r.FromIndex, Size: r.Size}
}

// Paged is a query the paginating engine can drive. WithFromIndex must
// return a new value and leave the receiver untouched.
type Paged[Q any] interface {
	Kind() kind.Kind
	Window() Window
	WithFromIndex(n int) Q
}

// PifSystemReturningQuery searches PIF systems.
type PifSystemReturningQuery struct {
	Returning
	ReturnSystem                 *bool `json:"return_system,omitempty"`
	AddLatex                     *bool `json:"add_latex,omitempty"`
	ReturnExtractedPath          *bool `json:"return_extracted_path,omitempty"`
	UnwrapSingleValueExtractions *bool `json:"unwrap_single_value_extractions,omitempty"`
}

// Kind implements Paged.
func (PifSystemReturningQuery) Kind() kind.Kind { return kind.PifSystem }

// WithFromIndex implements Paged.
func (q PifSystemReturningQuery) WithFromIndex(n int) PifSystemReturningQuery {
	q.FromIndex = &n
	return q
}

// DatasetReturningQuery searches datasets.
type DatasetReturningQuery struct {
	Returning
	CountPifs *bool `json:"count_pifs,omitempty"`
}

// Kind implements Paged.
func (DatasetReturningQuery) Kind() kind.Kind { return kind.Dataset }

// WithFromIndex implements Paged.
func (q DatasetReturningQuery) WithFromIndex(n int) DatasetReturningQuery {
	q.FromIndex = &n
	return q
}

// MultiQuery is a batch of PIF queries answered in one request.
type MultiQuery struct {
	Queries []PifSystemReturningQuery `json:"queries"`
}

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
