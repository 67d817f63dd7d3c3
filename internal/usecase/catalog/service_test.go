package catalog

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/domain/record"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
)

// --- Mocks ---

type mockRepo struct {
	createFn       func(ctx context.Context, name, description string, public bool) (record.Dataset, error)
	findPifsFn     func(ctx context.Context, f record.PifFilter, from, size int) ([]record.Pif, int, error)
	findDatasetsFn func(ctx context.Context, f record.DatasetFilter, from, size int) ([]record.Dataset, int, error)
	countFn        func(ctx context.Context, datasetID int) (int, error)
}

func (m *mockRepo) CreateDataset(ctx context.Context, name, description string, public bool) (record.Dataset, error) {
	return m.createFn(ctx, name, description, public)
}

func (m *mockRepo) FindPifs(ctx context.Context, f record.PifFilter, from, size int) ([]record.Pif, int, error) {
	return m.findPifsFn(ctx, f, from, size)
}

func (m *mockRepo) FindDatasets(
	ctx context.Context, f record.DatasetFilter, from, size int,
) ([]record.Dataset, int, error) {
	return m.findDatasetsFn(ctx, f, from, size)
}

func (m *mockRepo) CountPifs(ctx context.Context, datasetID int) (int, error) {
	return m.countFn(ctx, datasetID)
}

type mockFiles struct {
	beginFn func(ctx context.Context, datasetID int, fileName string) (string, error)
}

func (m *mockFiles) BeginUpload(ctx context.Context, datasetID int, fileName string) (string, error) {
	return m.beginFn(ctx, datasetID, fileName)
}

func (m *mockFiles) WriteUpload(context.Context, string, []byte) error { return nil }

func (m *mockFiles) ConfirmUpload(context.Context, int, string, string) error { return nil }

func (m *mockFiles) ListFiles(context.Context, int, string, bool) ([]string, error) {
	return []string{}, nil
}

// pifRepo serves n systems, recording the requested windows.
func pifRepo(n int, windows *[][2]int) *mockRepo {
	return &mockRepo{
		findPifsFn: func(_ context.Context, _ record.PifFilter, from, size int) ([]record.Pif, int, error) {
			*windows = append(*windows, [2]int{from, size})
			var out []record.Pif
			for i := from; i < n && i < from+size; i++ {
				out = append(out, record.Pif{
					ID:        strconv.Itoa(i),
					DatasetID: 1,
					System:    map[string]any{"chemical_formula": "GaN", "names": []string{"gallium nitride"}},
				})
			}
			return out, n, nil
		},
	}
}

// --- Tests ---

func TestSearchPifs_DefaultPageSize(t *testing.T) {
	var windows [][2]int
	svc := New(pifRepo(50, &windows), nil)

	page, err := svc.SearchPifs(context.Background(), query.PifSystemReturningQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Hits) != 10 || page.TotalNumHits != 50 {
		t.Errorf("hits=%d total=%d; want 10, 50", len(page.Hits), page.TotalNumHits)
	}
	if windows[0] != [2]int{0, 10} {
		t.Errorf("window = %v", windows[0])
	}
	if page.Hits[0].System == nil {
		t.Error("system is returned by default")
	}
}

func TestSearchPifs_PageCap(t *testing.T) {
	tests := []struct {
		name      string
		from      int
		size      int
		wantSize  int
		maxPage   int
		maxResult int
	}{
		{"below cap", 0, 5, 5, 100, 50000},
		{"capped by page size", 0, 500, 100, 100, 50000},
		{"capped by window", 49990, 100, 10, 100, 50000},
		{"small window", 8, 5, 2, 100, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var windows [][2]int
			svc := New(pifRepo(60000, &windows), nil).WithLimits(tt.maxPage, tt.maxResult)
			q := query.PifSystemReturningQuery{Returning: query.Returning{
				FromIndex: query.Int(tt.from), Size: query.Int(tt.size),
			}}
			if _, err := svc.SearchPifs(context.Background(), q); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if windows[0] != [2]int{tt.from, tt.wantSize} {
				t.Errorf("window = %v, want [%d %d]", windows[0], tt.from, tt.wantSize)
			}
		})
	}
}

func TestSearchPifs_InvalidWindow(t *testing.T) {
	var windows [][2]int
	svc := New(pifRepo(10, &windows), nil)

	for _, q := range []query.PifSystemReturningQuery{
		{Returning: query.Returning{FromIndex: query.Int(-1)}},
		{Returning: query.Returning{Size: query.Int(-1)}},
		{Returning: query.Returning{FromIndex: query.Int(50000)}},
	} {
		if _, err := svc.SearchPifs(context.Background(), q); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("expected ErrInvalidQuery for %+v, got %v", q.Window(), err)
		}
	}
	if len(windows) != 0 {
		t.Errorf("store must not be queried, got %v", windows)
	}
}

func TestSearchPifs_ScoresAndExtracts(t *testing.T) {
	var windows [][2]int
	svc := New(pifRepo(3, &windows), nil)

	q := query.SimpleChemical{ChemicalFormula: []string{"GaN"}, Name: []string{"gallium nitride"}}.Build()
	q.ReturnSystem = query.Bool(false)
	q.ReturnMaxScore = query.Bool(true)

	page, err := svc.SearchPifs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hit := page.Hits[0]
	if hit.Score == nil || *hit.Score != 1 {
		t.Errorf("expected score 1, got %v", hit.Score)
	}
	if page.MaxScore == nil {
		t.Error("expected max score")
	}
	if hit.System != nil {
		t.Error("system must be omitted when return_system is false")
	}
	if hit.Extracted[query.ExtractChemicalFormula] != "GaN" {
		t.Errorf("unexpected extracted: %v", hit.Extracted)
	}
	if hit.Dataset != "1" {
		t.Errorf("dataset = %q, want 1", hit.Dataset)
	}
}

func TestSearchPifs_TranslatesFilter(t *testing.T) {
	var got record.PifFilter
	repo := &mockRepo{
		findPifsFn: func(_ context.Context, f record.PifFilter, _, _ int) ([]record.Pif, int, error) {
			got = f
			return nil, 0, nil
		},
	}
	q := query.SimpleChemical{
		ChemicalFormula: []string{"GaN", "SiC"},
		Name:            []string{"x"},
		IncludeDatasets: []int{1, 2},
		ExcludeDatasets: []int{3},
	}.Build()

	page, err := New(repo, nil).SearchPifs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Hits == nil {
		t.Error("hits must be an empty slice, not nil")
	}
	if len(got.Formulas) != 2 || len(got.Names) != 1 {
		t.Errorf("unexpected system filter: %+v", got)
	}
	if len(got.IncludeDatasets) != 2 || len(got.ExcludeDatasets) != 1 || got.ExcludeDatasets[0] != 3 {
		t.Errorf("unexpected dataset filter: %+v", got)
	}
}

func TestSearchPifs_RepoError(t *testing.T) {
	repo := &mockRepo{
		findPifsFn: func(context.Context, record.PifFilter, int, int) ([]record.Pif, int, error) {
			return nil, 0, errors.New("boom")
		},
	}
	if _, err := New(repo, nil).SearchPifs(context.Background(), query.PifSystemReturningQuery{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchDatasets_CountPifs(t *testing.T) {
	repo := &mockRepo{
		findDatasetsFn: func(_ context.Context, f record.DatasetFilter, _, _ int) ([]record.Dataset, int, error) {
			if len(f.Names) != 1 || f.Names[0] != "band gaps" {
				t.Errorf("unexpected filter: %+v", f)
			}
			return []record.Dataset{{ID: 4, Name: "band gaps"}}, 1, nil
		},
		countFn: func(_ context.Context, id int) (int, error) { return id * 10, nil },
	}
	q := query.DatasetReturningQuery{
		Returning: query.Returning{Query: []query.DataQuery{{
			Dataset: []query.DatasetQuery{{Name: []query.Filter{{Equal: "band gaps"}}}},
		}}},
		CountPifs: query.Bool(true),
	}

	page, err := New(repo, nil).SearchDatasets(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Hits) != 1 || page.Hits[0].ID != "4" {
		t.Fatalf("unexpected hits: %+v", page.Hits)
	}
	if page.Hits[0].NumPifs == nil || *page.Hits[0].NumPifs != 40 {
		t.Errorf("num_pifs = %v, want 40", page.Hits[0].NumPifs)
	}
}

func TestMultiSearch(t *testing.T) {
	var windows [][2]int
	svc := New(pifRepo(5, &windows), nil)

	res, err := svc.MultiSearch(context.Background(), query.MultiQuery{Queries: []query.PifSystemReturningQuery{
		{Returning: query.Returning{Size: query.Int(2)}},
		{Returning: query.Returning{FromIndex: query.Int(-3)}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Results))
	}
	if res.Results[0].Status != StatusSuccess || len(res.Results[0].Result.Hits) != 2 {
		t.Errorf("unexpected first entry: %+v", res.Results[0])
	}
	if res.Results[1].Status != StatusFailure || res.Results[1].Result != nil {
		t.Errorf("unexpected second entry: %+v", res.Results[1])
	}
}

func TestMultiSearch_Empty(t *testing.T) {
	_, err := New(&mockRepo{}, nil).MultiSearch(context.Background(), query.MultiQuery{})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestCreateDataset(t *testing.T) {
	repo := &mockRepo{
		createFn: func(_ context.Context, name, _ string, _ bool) (record.Dataset, error) {
			return record.Dataset{ID: 1, Name: name}, nil
		},
	}
	svc := New(repo, nil)

	if _, err := svc.CreateDataset(context.Background(), "", "", false); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for empty name, got %v", err)
	}
	d, err := svc.CreateDataset(context.Background(), "x", "", false)
	if err != nil || d.Name != "x" {
		t.Errorf("unexpected result %+v (%v)", d, err)
	}
}

func TestBeginUpload_RequiresFileName(t *testing.T) {
	called := false
	files := &mockFiles{beginFn: func(context.Context, int, string) (string, error) {
		called = true
		return "id", nil
	}}
	svc := New(&mockRepo{}, files)

	if _, err := svc.BeginUpload(context.Background(), 1, ""); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if called {
		t.Error("store must not be called")
	}
	id, err := svc.BeginUpload(context.Background(), 1, "a.json")
	if err != nil || id != "id" {
		t.Errorf("unexpected %q (%v)", id, err)
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3, 3, true},
		{float64(4), 4, true},
		{"5", 5, true},
		{"x", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := toInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("toInt(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
