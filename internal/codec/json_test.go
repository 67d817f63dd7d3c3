package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
)

func TestEncode_CamelCaseKeys(t *testing.T) {
	q := query.PifSystemReturningQuery{
		Returning: query.Returning{
			FromIndex:      query.Int(10),
			Size:           query.Int(5),
			ScoreRelevance: query.Bool(true),
			Query: []query.DataQuery{{
				System: []query.PifSystemQuery{{
					ChemicalFormula: &query.ChemicalFieldQuery{ExtractAs: "chemical_formula"},
				}},
			}},
		},
	}

	raw, err := Encode(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got["fromIndex"] != float64(10) || got["size"] != float64(5) || got["scoreRelevance"] != true {
		t.Errorf("unexpected top-level fields: %v", got)
	}
	if _, ok := got["from_index"]; ok {
		t.Error("snake_case key leaked onto the wire")
	}
	sys := got["query"].([]any)[0].(map[string]any)["system"].([]any)[0].(map[string]any)
	formula := sys["chemicalFormula"].(map[string]any)
	if formula["extractAs"] != "chemical_formula" {
		t.Errorf("extract value must be kept verbatim, got %v", formula["extractAs"])
	}
}

func TestEncode_AbsentWindowOmitted(t *testing.T) {
	raw, err := Encode(query.DatasetReturningQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "{}" {
		t.Errorf("expected empty object, got %s", raw)
	}
}

func TestDecodeResults(t *testing.T) {
	body := []byte(`{"results":{"totalNumHits":3,"took":0.5,"hits":[{"id":"1","datasetVersion":2,"extracted":{"propertyValue":"3.4"}}]}}`)

	var page result.Page[result.PifSearchHit]
	if err := DecodeResults(body, &page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalNumHits != 3 || page.Took != 0.5 || len(page.Hits) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	hit := page.Hits[0]
	if hit.DatasetVersion != 2 {
		t.Errorf("expected dataset_version 2, got %d", hit.DatasetVersion)
	}
	if _, ok := hit.Extracted["property_value"]; !ok {
		t.Errorf("nested keys must be snake_case, got %v", hit.Extracted)
	}
}

func TestDecodeResults_NoHits(t *testing.T) {
	var page result.Page[result.DatasetSearchHit]
	if err := DecodeResults([]byte(`{"results":{"totalNumHits":0,"took":1}}`), &page); err != nil {
		t.Fatal(err)
	}
	if page.Hits != nil {
		t.Errorf("expected absent hits, got %v", page.Hits)
	}
}

func TestDecodeResults_Missing(t *testing.T) {
	var page result.Page[result.DatasetSearchHit]
	err := DecodeResults([]byte(`{"status":"ok"}`), &page)
	if !errors.Is(err, ErrMissingResults) {
		t.Errorf("expected ErrMissingResults, got %v", err)
	}
}

func TestDecodeResults_Malformed(t *testing.T) {
	var page result.Page[result.DatasetSearchHit]
	if err := DecodeResults([]byte(`not json`), &page); err == nil {
		t.Error("expected error")
	}
}
