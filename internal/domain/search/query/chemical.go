package query

// Extraction keys used by SimpleChemical.
const (
	ExtractName            = "name"
	ExtractChemicalFormula = "chemical_formula"
	ExtractPropertyName    = "property_name"
	ExtractPropertyValue   = "property_value"
	ExtractPropertyUnits   = "property_units"
	ExtractReferenceDOI    = "reference_doi"
)

// SimpleChemical describes a simple PIF search. Every list field matches any
// of its values. Matched values are extracted into each hit under the
// Extract* keys.
type SimpleChemical struct {
	// Name matches system names.
	Name []string
	// ChemicalFormula matches system chemical formulas.
	ChemicalFormula []string
	// PropertyName matches property names.
	PropertyName []string
	// PropertyValue matches exact property values (strings or numbers).
	PropertyValue []any
	// PropertyMin is the inclusive lower bound of the property value.
	PropertyMin any
	// PropertyMax is the inclusive upper bound of the property value.
	PropertyMax any
	// PropertyUnits matches property units.
	PropertyUnits []string
	// ReferenceDOI matches reference DOIs.
	ReferenceDOI []string
	// IncludeDatasets restricts results to these dataset IDs.
	IncludeDatasets []int
	// ExcludeDatasets removes results from these dataset IDs.
	ExcludeDatasets []int
	// FromIndex is the index of the first record to return.
	FromIndex *int
	// Size is the total number of records to return.
	Size *int
}

// Build returns the PIF query described by s, scored by relevance.
func (s SimpleChemical) Build() PifSystemReturningQuery {
	chemical := make([]ChemicalFilter, 0, len(s.ChemicalFormula))
	for _, f := range s.ChemicalFormula {
		chemical = append(chemical, ChemicalFilter{Equal: f})
	}

	value := equalFilters(s.PropertyValue)
	if s.PropertyMin != nil || s.PropertyMax != nil {
		value = append(value, Filter{Min: s.PropertyMin, Max: s.PropertyMax})
	}

	system := PifSystemQuery{
		Names: &FieldQuery{ExtractAs: ExtractName, Filter: equalStrings(s.Name)},
		ChemicalFormula: &ChemicalFieldQuery{
			ExtractAs: ExtractChemicalFormula,
			Filter:    chemical,
		},
		References: &ReferenceQuery{
			Doi: &FieldQuery{ExtractAs: ExtractReferenceDOI, Filter: equalStrings(s.ReferenceDOI)},
		},
		Properties: []PropertyQuery{{
			Name:  &FieldQuery{ExtractAs: ExtractPropertyName, Filter: equalStrings(s.PropertyName)},
			Value: &FieldQuery{ExtractAs: ExtractPropertyValue, Filter: value},
			Units: &FieldQuery{ExtractAs: ExtractPropertyUnits, Filter: equalStrings(s.PropertyUnits)},
		}},
	}

	var datasets []DatasetQuery
	if len(s.IncludeDatasets) > 0 {
		datasets = append(datasets, DatasetQuery{Logic: LogicMust, ID: equalInts(s.IncludeDatasets)})
	}
	if len(s.ExcludeDatasets) > 0 {
		datasets = append(datasets, DatasetQuery{Logic: LogicMustNot, ID: equalInts(s.ExcludeDatasets)})
	}

	return PifSystemReturningQuery{
		Returning: Returning{
			Query:          []DataQuery{{System: []PifSystemQuery{system}, Dataset: datasets}},
			FromIndex:      s.FromIndex,
			Size:           s.Size,
			ScoreRelevance: Bool(true),
		},
	}
}

func equalStrings(values []string) []Filter {
	out := make([]Filter, 0, len(values))
	for _, v := range values {
		out = append(out, Filter{Equal: v})
	}
	return out
}

func equalInts(values []int) []Filter {
	out := make([]Filter, 0, len(values))
	for _, v := range values {
		out = append(out, Filter{Equal: v})
	}
	return out
}

func equalFilters(values []any) []Filter {
	out := make([]Filter, 0, len(values))
	for _, v := range values {
		out = append(out, Filter{Equal: v})
	}
	return out
}
