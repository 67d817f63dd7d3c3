package citrination

import (
	"context"

	"github.com/kailas-cloud/citrination/internal/domain/dataset"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
	"github.com/kailas-cloud/citrination/internal/domain/upload"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	pifFn     func(ctx context.Context, q query.PifSystemReturningQuery) (result.PifSearch, error)
	datasetFn func(ctx context.Context, q query.DatasetReturningQuery) (result.DatasetSearch, error)
	multiFn   func(ctx context.Context, mq query.MultiQuery) (result.MultiSearch, error)
}

func (m *mockSearchUC) PifSearch(ctx context.Context, q query.PifSystemReturningQuery) (result.PifSearch, error) {
	return m.pifFn(ctx, q)
}

func (m *mockSearchUC) DatasetSearch(
	ctx context.Context, q query.DatasetReturningQuery,
) (result.DatasetSearch, error) {
	return m.datasetFn(ctx, q)
}

func (m *mockSearchUC) PifMultiSearch(ctx context.Context, mq query.MultiQuery) (result.MultiSearch, error) {
	return m.multiFn(ctx, mq)
}

// --- dataUseCase mock ---

type mockDataUC struct {
	createFn func(ctx context.Context, name, description string, public bool) (*dataset.Dataset, error)
	uploadFn func(ctx context.Context, id int, source, dest string) (*upload.Result, error)
	listFn   func(ctx context.Context, id int, path string, recursive bool) ([]string, error)
	countFn  func(ctx context.Context, id int) (int, error)
}

func (m *mockDataUC) Create(ctx context.Context, name, description string, public bool) (*dataset.Dataset, error) {
	return m.createFn(ctx, name, description, public)
}

func (m *mockDataUC) Upload(ctx context.Context, id int, source, dest string) (*upload.Result, error) {
	return m.uploadFn(ctx, id, source, dest)
}

func (m *mockDataUC) ListFiles(ctx context.Context, id int, path string, recursive bool) ([]string, error) {
	return m.listFn(ctx, id, path, recursive)
}

func (m *mockDataUC) MatchedFileCount(ctx context.Context, id int) (int, error) {
	return m.countFn(ctx, id)
}

// testClient creates a Client with mock use cases.
func testClient(searchSvc searchUseCase, dataSvc dataUseCase) *Client {
	return &Client{
		searchSvc: searchSvc,
		dataSvc:   dataSvc,
	}
}
