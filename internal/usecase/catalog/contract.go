package catalog

import (
	"context"

	"github.com/kailas-cloud/citrination/internal/domain/record"
)

// Repository stores datasets and PIF systems.
type Repository interface {
	CreateDataset(ctx context.Context, name, description string, public bool) (record.Dataset, error)
	FindPifs(ctx context.Context, f record.PifFilter, from, size int) ([]record.Pif, int, error)
	FindDatasets(ctx context.Context, f record.DatasetFilter, from, size int) ([]record.Dataset, int, error)
	CountPifs(ctx context.Context, datasetID int) (int, error)
}

// FileStore stores dataset files uploaded in three steps: begin, write, confirm.
type FileStore interface {
	BeginUpload(ctx context.Context, datasetID int, fileName string) (string, error)
	WriteUpload(ctx context.Context, requestID string, data []byte) error
	ConfirmUpload(ctx context.Context, datasetID int, requestID, dest string) error
	ListFiles(ctx context.Context, datasetID int, path string, recursive bool) ([]string, error)
}
