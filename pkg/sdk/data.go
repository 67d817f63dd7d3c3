package citrination

import (
	"context"
	"fmt"
	"time"
)

// DataService creates datasets and uploads files to them.
type DataService struct {
	svc dataUseCase
	obs *observer
}

// CreateDataset creates a dataset.
func (s *DataService) CreateDataset(
	ctx context.Context, name, description string, public bool,
) (_ *Dataset, err error) {
	start := time.Now()
	defer func() { s.obs.observe("data.create_dataset", start, err) }()

	d, err := s.svc.Create(ctx, name, description, public)
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	return d, nil
}

// Upload uploads a file or a directory tree to a dataset. A file lands at
// dest (its base name when dest is empty); a directory's files land under
// dest at their relative paths. Per-file failures are reported in the
// result, not as an error.
func (s *DataService) Upload(
	ctx context.Context, datasetID int, source, dest string,
) (_ *UploadResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("data.upload", start, err) }()

	res, err := s.svc.Upload(ctx, datasetID, source, dest)
	if err != nil {
		return res, fmt.Errorf("upload: %w", err)
	}
	if !res.Successful() {
		s.obs.Warn(ctx, fmt.Sprintf("%d of %d files failed to upload",
			len(res.Failures()), len(res.Failures())+len(res.Successes())))
	}
	return res, nil
}

// ListFiles lists dataset files matching path.
func (s *DataService) ListFiles(
	ctx context.Context, datasetID int, path string, recursive bool,
) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("data.list_files", start, err) }()

	files, err := s.svc.ListFiles(ctx, datasetID, path, recursive)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// MatchedFileCount counts the files in a dataset.
func (s *DataService) MatchedFileCount(ctx context.Context, datasetID int) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("data.matched_file_count", start, err) }()

	n, err := s.svc.MatchedFileCount(ctx, datasetID)
	if err != nil {
		return 0, fmt.Errorf("matched file count: %w", err)
	}
	return n, nil
}
