// Package result holds search hits and the aggregated results built from pages.
package result

// PifSearchHit is a PIF system matched by a search.
type PifSearchHit struct {
	ID             string         `json:"id"`
	Dataset        string         `json:"dataset"`
	DatasetVersion int            `json:"dataset_version"`
	Score          *float64       `json:"score,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
	System         map[string]any `json:"system,omitempty"`
	Extracted      map[string]any `json:"extracted,omitempty"`
	ExtractedPath  map[string]any `json:"extracted_path,omitempty"`
}

// DatasetSearchHit is a dataset matched by a search.
type DatasetSearchHit struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Owner       string   `json:"owner,omitempty"`
	Email       string   `json:"email,omitempty"`
	NumPifs     *int     `json:"num_pifs,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Page is one response of a paginated search. Hits is nil when the
// response carried none.
type Page[H any] struct {
	Hits         []H      `json:"hits"`
	TotalNumHits int      `json:"total_num_hits"`
	Took         float64  `json:"took"`
	MaxScore     *float64 `json:"max_score,omitempty"`
}

// Search is the result of one logical search assembled from every page.
// Took is the sum of the pages' took; TotalNumHits is the last page's total.
type Search[H any] struct {
	Hits         []H     `json:"hits"`
	TotalNumHits int     `json:"total_num_hits"`
	Took         float64 `json:"took"`
}

// PifSearch is an assembled PIF search result.
type PifSearch = Search[PifSearchHit]

// DatasetSearch is an assembled dataset search result.
type DatasetSearch = Search[DatasetSearchHit]

// MultiSearchEntry is the outcome of one query of a multi-search.
type MultiSearchEntry struct {
	Result *Page[PifSearchHit] `json:"result,omitempty"`
	Status string              `json:"status,omitempty"`
}

// MultiSearch is the response of a multi-search.
type MultiSearch struct {
	Took    float64            `json:"took"`
	Results []MultiSearchEntry `json:"results"`
}
