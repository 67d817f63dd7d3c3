package dataset

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/citrination/internal/codec"
	"github.com/kailas-cloud/citrination/internal/domain"
	domds "github.com/kailas-cloud/citrination/internal/domain/dataset"
	"github.com/kailas-cloud/citrination/internal/domain/upload"
	"github.com/kailas-cloud/citrination/internal/logger"
	"github.com/kailas-cloud/citrination/internal/routes"
)

// Failure messages for data routes.
const (
	msgCreateDataset = "Error creating dataset"
	msgUploadURL     = "Error requesting upload location"
	msgUploadFile    = "Error uploading file"
	msgConfirm       = "Error confirming upload"
	msgListFiles     = "Error listing dataset files"
)

// Service manages datasets and their files.
type Service struct {
	transport Transport
}

// New creates a dataset service.
func New(transport Transport) *Service {
	return &Service{transport: transport}
}

type createRequest struct {
	DataSet struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	} `json:"data_set"`
}

type createResponse struct {
	ID          int     `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CreatedAt   *string `json:"created_at"`
}

// Create creates a dataset.
func (s *Service) Create(ctx context.Context, name, description string, public bool) (*domds.Dataset, error) {
	if name == "" {
		return nil, errors.Wrap(domain.ErrInvalidQuery, "dataset name is required")
	}
	var req createRequest
	req.DataSet.Name = name
	req.DataSet.Description = description
	req.DataSet.Public = public

	var resp createResponse
	if err := s.call(ctx, routes.CreateDataset, msgCreateDataset, req, &resp); err != nil {
		return nil, err
	}

	d := domds.New(resp.ID)
	if resp.Name != nil {
		d.SetName(*resp.Name)
	}
	if resp.Description != nil {
		d.SetDescription(*resp.Description)
	}
	if resp.CreatedAt != nil {
		d.SetCreatedAt(*resp.CreatedAt)
	}
	return d, nil
}

// Upload uploads source to dataset datasetID. A file lands at dest, or at
// its base name when dest is empty. A directory is walked and each regular
// file lands under dest at its path relative to source. Per-file failures
// are recorded in the result; the error is only for an unreadable source.
func (s *Service) Upload(ctx context.Context, datasetID int, source, dest string) (*upload.Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.Wrap(err, "stat upload source")
	}

	res := &upload.Result{}
	if !info.IsDir() {
		if dest == "" {
			dest = filepath.Base(source)
		}
		s.uploadOne(ctx, datasetID, source, dest, info.Size(), res)
		return res, nil
	}

	err = filepath.WalkDir(source, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			res.AddFailure(p, walkErr.Error())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			res.AddFailure(p, err.Error())
			return nil
		}
		rel, err := filepath.Rel(source, p)
		if err != nil {
			res.AddFailure(p, err.Error())
			return nil
		}
		s.uploadOne(ctx, datasetID, p, path.Join(dest, filepath.ToSlash(rel)), fi.Size(), res)
		return nil
	})
	if err != nil {
		return res, errors.Wrap(err, "walk upload source")
	}
	return res, nil
}

func (s *Service) uploadOne(ctx context.Context, datasetID int, src, dest string, size int64, res *upload.Result) {
	if err := s.uploadFile(ctx, datasetID, src, dest, size); err != nil {
		logger.FromContext(ctx).Warn("file upload failed",
			zap.Int("dataset_id", datasetID), zap.String("path", src), zap.Error(err))
		res.AddFailure(src, err.Error())
		return
	}
	res.AddSuccess(src)
}

type uploadURLRequest struct {
	FileName string `json:"file_name"`
}

type uploadURLResponse struct {
	URL       string `json:"url"`
	RequestID string `json:"request_id"`
}

type confirmRequest struct {
	DestPath string `json:"dest_path"`
}

// uploadFile requests an upload location, sends the bytes and confirms.
func (s *Service) uploadFile(ctx context.Context, datasetID int, src, dest string, size int64) error {
	route, err := routes.Expand(routes.UploadURL, routes.Param{Name: routes.ParamDatasetID, Value: datasetID})
	if err != nil {
		return err
	}
	var loc uploadURLResponse
	if err := s.call(ctx, route, msgUploadURL, uploadURLRequest{FileName: dest}, &loc); err != nil {
		return err
	}
	if loc.URL == "" {
		return errors.Newf("%s: no upload url returned", msgUploadURL)
	}

	f, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "open upload source")
	}
	defer func() { _ = f.Close() }()

	resp, err := s.transport.Put(ctx, loc.URL, f, size)
	if err != nil {
		return errors.Wrap(err, msgUploadFile)
	}
	if !resp.OK() {
		return domain.NewRequestError(loc.URL, resp.StatusCode, msgUploadFile)
	}

	confirm, err := routes.Expand(routes.ConfirmUpload,
		routes.Param{Name: routes.ParamDatasetID, Value: datasetID},
		routes.Param{Name: routes.ParamRequestID, Value: loc.RequestID},
	)
	if err != nil {
		return err
	}
	return s.call(ctx, confirm, msgConfirm, confirmRequest{DestPath: dest}, nil)
}

type listRequest struct {
	List struct {
		Path      string `json:"path"`
		Recursive bool   `json:"recursive"`
	} `json:"list"`
}

type listResponse struct {
	Files []string `json:"files"`
}

// ListFiles returns the paths of dataset files matching p. An empty p
// matches every file.
func (s *Service) ListFiles(ctx context.Context, datasetID int, p string, recursive bool) ([]string, error) {
	route, err := routes.Expand(routes.ListFiles, routes.Param{Name: routes.ParamDatasetID, Value: datasetID})
	if err != nil {
		return nil, err
	}
	var req listRequest
	req.List.Path = p
	req.List.Recursive = recursive

	var resp listResponse
	if err := s.call(ctx, route, msgListFiles, req, &resp); err != nil {
		return nil, err
	}
	if resp.Files == nil {
		return []string{}, nil
	}
	return resp.Files, nil
}

// MatchedFileCount counts every file in the dataset.
func (s *Service) MatchedFileCount(ctx context.Context, datasetID int) (int, error) {
	files, err := s.ListFiles(ctx, datasetID, "", true)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// call posts payload to route and decodes the response into out when
// out is non-nil.
func (s *Service) call(ctx context.Context, route, failure string, payload, out any) error {
	body, err := codec.Encode(payload)
	if err != nil {
		return errors.Wrap(err, failure)
	}
	resp, err := s.transport.Post(ctx, route, body)
	if err != nil {
		return errors.Wrap(err, failure)
	}
	if !resp.OK() {
		return errors.WithDetailf(
			domain.NewRequestError(route, resp.StatusCode, failure),
			"response body: %s", string(resp.Body),
		)
	}
	if out == nil {
		return nil
	}
	if err := codec.DecodeBody(resp.Body, out); err != nil {
		return errors.Wrap(err, failure)
	}
	return nil
}
