package citrination

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/citrination/internal/domain/dataset"
	"github.com/kailas-cloud/citrination/internal/domain/search/query"
	"github.com/kailas-cloud/citrination/internal/domain/search/result"
	"github.com/kailas-cloud/citrination/internal/domain/upload"
	"github.com/kailas-cloud/citrination/internal/metrics"
	transport "github.com/kailas-cloud/citrination/internal/transport/citrination"
	datasetuc "github.com/kailas-cloud/citrination/internal/usecase/dataset"
	searchuc "github.com/kailas-cloud/citrination/internal/usecase/search"
)

// DefaultHost is the public Citrination platform.
const DefaultHost = transport.DefaultHost

// DefaultMaxQuerySize is the default cap on hits per search.
const DefaultMaxQuerySize = searchuc.DefaultMaxQuerySize

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	PifSearch(ctx context.Context, q query.PifSystemReturningQuery) (result.PifSearch, error)
	DatasetSearch(ctx context.Context, q query.DatasetReturningQuery) (result.DatasetSearch, error)
	PifMultiSearch(ctx context.Context, mq query.MultiQuery) (result.MultiSearch, error)
}

type dataUseCase interface {
	Create(ctx context.Context, name, description string, public bool) (*dataset.Dataset, error)
	Upload(ctx context.Context, datasetID int, source, dest string) (*upload.Result, error)
	ListFiles(ctx context.Context, datasetID int, path string, recursive bool) ([]string, error)
	MatchedFileCount(ctx context.Context, datasetID int) (int, error)
}

// Client is the Citrination SDK entry point. It is safe for concurrent use;
// each search owns its own pagination state.
type Client struct {
	searchSvc searchUseCase
	dataSvc   dataUseCase
	obs       *observer
	host      string
}

// New creates a Client. WithAPIKey is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		host:         DefaultHost,
		maxQuerySize: DefaultMaxQuerySize,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.apiKey == "" {
		return nil, errors.New("citrination: api key required (use WithAPIKey)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	if cfg.metricsReg != nil {
		if err := metrics.RegisterTransportMetrics(cfg.metricsReg); err != nil {
			return nil, fmt.Errorf("citrination: %w", err)
		}
	}
	obs.suppress = cfg.suppressWarnings
	obs.onWarn = cfg.warningHandler

	tr, err := transport.New(&transport.Config{
		Host:              cfg.host,
		APIKey:            cfg.apiKey,
		HTTPClient:        cfg.httpClient,
		Timeout:           cfg.timeout,
		RequestsPerSecond: cfg.rps,
		Burst:             cfg.burst,
		UserAgent:         cfg.userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("citrination: %w", err)
	}

	return &Client{
		searchSvc: searchuc.New(tr, obs).WithMaxQuerySize(cfg.maxQuerySize),
		dataSvc:   datasetuc.New(tr),
		obs:       obs,
		host:      cfg.host,
	}, nil
}

// Host returns the platform base URL the client talks to.
func (c *Client) Host() string { return c.host }

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Data returns the dataset and upload service.
func (c *Client) Data() *DataService {
	return &DataService{svc: c.dataSvc, obs: c.obs}
}
