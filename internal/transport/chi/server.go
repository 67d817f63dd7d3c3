// Package chi serves the platform's search and data routes from a local
// catalog, for tests and offline development.
package chi

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/citrination/internal/codec"
	"github.com/kailas-cloud/citrination/internal/domain/record"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
	"github.com/kailas-cloud/citrination/internal/routes"
	healthuc "github.com/kailas-cloud/citrination/internal/usecase/health"
)

// APIPrefix is where the platform routes are mounted.
const APIPrefix = "/api"

// UploadPrefix is where upload URLs point.
const UploadPrefix = "/uploads/"

const (
	maxRequestBytes = 4 << 20
	maxUploadBytes  = 64 << 20
)

// Catalog answers the platform routes.
type Catalog interface {
	SearchPifs(ctx context.Context, q query.PifSystemReturningQuery) (result.Page[result.PifSearchHit], error)
	SearchDatasets(ctx context.Context, q query.DatasetReturningQuery) (result.Page[result.DatasetSearchHit], error)
	MultiSearch(ctx context.Context, mq query.MultiQuery) (result.MultiSearch, error)
	CreateDataset(ctx context.Context, name, description string, public bool) (record.Dataset, error)
	BeginUpload(ctx context.Context, datasetID int, fileName string) (string, error)
	WriteUpload(ctx context.Context, requestID string, data []byte) error
	ConfirmUpload(ctx context.Context, datasetID int, requestID, dest string) error
	ListFiles(ctx context.Context, datasetID int, path string, recursive bool) ([]string, error)
}

// Server handles the sandbox HTTP API.
type Server struct {
	catalog Catalog
	health  *healthuc.Service
	logger  *zap.Logger
}

// NewServer creates a sandbox server.
func NewServer(catalog Catalog, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{catalog: catalog, health: health, logger: logger}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Put(UploadPrefix+"{"+routes.ParamRequestID+"}", s.PutUpload)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/"+routes.PifSearch, s.PifSearch)
		r.Post("/"+routes.DatasetSearch, s.DatasetSearch)
		r.Post("/"+routes.PifMultiSearch, s.PifMultiSearch)
		r.Post("/"+routes.CreateDataset, s.CreateDataset)
		r.Post("/"+routes.UploadURL, s.UploadURL)
		r.Post("/"+routes.ConfirmUpload, s.ConfirmUpload)
		r.Post("/"+routes.ListFiles, s.ListFiles)
	})
}

// Handler returns a router with API key auth and every route mounted.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(APIKeyMiddleware(apiKeys))
	s.Register(r)
	return r
}

// PifSearch handles POST /api/search/pif_search.
func (s *Server) PifSearch(w http.ResponseWriter, r *http.Request) {
	var q query.PifSystemReturningQuery
	if !s.decode(w, r, &q) {
		return
	}
	page, err := s.catalog.SearchPifs(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeResults(w, page)
}

// DatasetSearch handles POST /api/search/dataset.
func (s *Server) DatasetSearch(w http.ResponseWriter, r *http.Request) {
	var q query.DatasetReturningQuery
	if !s.decode(w, r, &q) {
		return
	}
	page, err := s.catalog.SearchDatasets(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeResults(w, page)
}

// PifMultiSearch handles POST /api/search/pif/multi_pif_search.
func (s *Server) PifMultiSearch(w http.ResponseWriter, r *http.Request) {
	var mq query.MultiQuery
	if !s.decode(w, r, &mq) {
		return
	}
	res, err := s.catalog.MultiSearch(r.Context(), mq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeResults(w, res)
}

type createDatasetRequest struct {
	DataSet struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	} `json:"data_set"`
}

type datasetResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// CreateDataset handles POST /api/data_sets/create_dataset.
func (s *Server) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.catalog.CreateDataset(r.Context(), req.DataSet.Name, req.DataSet.Description, req.DataSet.Public)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeCamel(w, http.StatusOK, datasetResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	})
}

type uploadURLRequest struct {
	FileName string `json:"file_name"`
}

type uploadURLResponse struct {
	URL       string `json:"url"`
	RequestID string `json:"request_id"`
}

// UploadURL handles POST /api/data_sets/{dataset_id}/upload.
func (s *Server) UploadURL(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := datasetParam(w, r)
	if !ok {
		return
	}
	var req uploadURLRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.catalog.BeginUpload(r.Context(), datasetID, req.FileName)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeCamel(w, http.StatusOK, uploadURLResponse{
		URL:       baseURL(r) + UploadPrefix + id,
		RequestID: id,
	})
}

// PutUpload handles PUT /uploads/{request_id}.
func (s *Server) PutUpload(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "read upload: "+err.Error())
		return
	}
	if err := s.catalog.WriteUpload(r.Context(), chi.URLParam(r, routes.ParamRequestID), data); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type confirmRequest struct {
	DestPath string `json:"dest_path"`
}

// ConfirmUpload handles POST /api/data_sets/{dataset_id}/update/{request_id}.
func (s *Server) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := datasetParam(w, r)
	if !ok {
		return
	}
	var req confirmRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.catalog.ConfirmUpload(r.Context(), datasetID, chi.URLParam(r, routes.ParamRequestID), req.DestPath)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeCamel(w, http.StatusOK, map[string]string{"status": "ok"})
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

// ListFiles handles POST /api/datasets/{dataset_id}/list_filepaths.
func (s *Server) ListFiles(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := datasetParam(w, r)
	if !ok {
		return
	}
	var req listRequest
	if !s.decode(w, r, &req) {
		return
	}
	files, err := s.catalog.ListFiles(r.Context(), datasetID, req.List.Path, req.List.Recursive)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeCamel(w, http.StatusOK, listResponse{Files: files})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads a camelCase body into out. It writes the error response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "read body: "+err.Error())
		return false
	}
	if err := codec.DecodeBody(body, out); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeResults wraps v in a results envelope.
func (s *Server) writeResults(w http.ResponseWriter, v any) {
	s.writeCamel(w, http.StatusOK, map[string]any{"results": v})
}

// writeCamel writes v with camelCase keys, the platform's wire format.
func (s *Server) writeCamel(w http.ResponseWriter, status int, v any) {
	body, err := codec.Encode(v)
	if err != nil {
		s.handleDomainError(w, errors.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func datasetParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, routes.ParamDatasetID)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid dataset id "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host
}
