package catalog

import (
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/citrination/internal/domain/record"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
)

// pifFilter translates the clauses the store understands: dataset ID
// equality under MUST or MUST_NOT, and chemical formula or name equality.
// Other clauses are ignored.
func pifFilter(queries []query.DataQuery) record.PifFilter {
	var f record.PifFilter
	for _, dq := range queries {
		for _, ds := range dq.Dataset {
			ids := equalInts(ds.ID)
			if ds.Logic == query.LogicMustNot {
				f.ExcludeDatasets = append(f.ExcludeDatasets, ids...)
			} else {
				f.IncludeDatasets = append(f.IncludeDatasets, ids...)
			}
		}
		for _, sys := range dq.System {
			if sys.ChemicalFormula != nil {
				for _, cf := range sys.ChemicalFormula.Filter {
					if cf.Equal != "" {
						f.Formulas = append(f.Formulas, cf.Equal)
					}
				}
			}
			if sys.Names != nil {
				f.Names = append(f.Names, equalStrings(sys.Names.Filter)...)
			}
		}
	}
	return f
}

func datasetFilter(queries []query.DataQuery) record.DatasetFilter {
	var f record.DatasetFilter
	for _, dq := range queries {
		for _, ds := range dq.Dataset {
			ids := equalInts(ds.ID)
			if ds.Logic == query.LogicMustNot {
				f.ExcludeIDs = append(f.ExcludeIDs, ids...)
			} else {
				f.IDs = append(f.IDs, ids...)
			}
			f.Names = append(f.Names, equalStrings(ds.Name)...)
		}
	}
	return f
}

func equalInts(filters []query.Filter) []int {
	var out []int
	for _, fl := range filters {
		if n, ok := toInt(fl.Equal); ok {
			out = append(out, n)
		}
	}
	return out
}

func equalStrings(filters []query.Filter) []string {
	var out []string
	for _, fl := range filters {
		if s, ok := fl.Equal.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
