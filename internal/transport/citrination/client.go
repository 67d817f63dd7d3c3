// Package citrination is the HTTP transport to the Citrination platform API.
package citrination

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/logger"
	"github.com/kailas-cloud/citrination/internal/metrics"
	"github.com/kailas-cloud/citrination/internal/version"
)

// Request headers understood by the platform.
const (
	HeaderAPIKey     = "X-API-Key"
	HeaderAPIVersion = "X-Citrination-API-Version"
	HeaderRequestID  = "X-Request-ID"

	// APIVersion is the platform API version this client speaks.
	APIVersion = "1.0.0"
	// DefaultHost is the public platform.
	DefaultHost = "https://citrination.com"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 5 * time.Minute
)

// maxResponseBytes bounds a response body read into memory.
const maxResponseBytes = 512 << 20

// Config holds the transport settings.
type Config struct {
	Host       string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	// RequestsPerSecond enables a client-side rate limit when positive.
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client sends requests to the platform API.
type Client struct {
	apiRoot   string
	apiKey    string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	tracer    trace.Tracer
}

// New creates a platform transport.
func New(cfg *Config) (*Client, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrapf(err, "parse host %q", host)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf("host %q must be an http or https url", host)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "citrination-go/" + version.Version
	}
	return &Client{
		apiRoot:   strings.TrimRight(host, "/") + "/api/",
		apiKey:    cfg.APIKey,
		http:      hc,
		limiter:   limiter,
		userAgent: ua,
		tracer:    otel.Tracer("citrination-transport"),
	}, nil
}

// Post sends a JSON body to an API route relative to the API root.
func (c *Client) Post(ctx context.Context, route string, body []byte) (domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiRoot+route, bytes.NewReader(body))
	if err != nil {
		return domain.Response{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderAPIVersion, APIVersion)
	return c.do(ctx, req, routeLabel(route))
}

// Put sends raw bytes to an absolute upload URL. The API key is not sent.
func (c *Client) Put(ctx context.Context, uploadURL string, body io.Reader, size int64) (domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return domain.Response{}, errors.Wrap(err, "build upload request")
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	return c.do(ctx, req, "upload")
}

func (c *Client) do(ctx context.Context, req *http.Request, label string) (domain.Response, error) {
	requestID := uuid.NewString()
	method := req.Method

	ctx, span := c.tracer.Start(ctx, "citrination."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("citrination.route", label),
			attribute.String("citrination.request_id", requestID),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	log := logger.FromContext(ctx)
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.TransportErrorsTotal.WithLabelValues(method, label, "rate_limit").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limiter wait failed")
			return domain.Response{}, errors.Wrap(err, "rate limiter")
		}
		metrics.TransportRateLimitWaitSeconds.Observe(time.Since(waitStart).Seconds())
	}

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.TransportErrorsTotal.WithLabelValues(method, label, "network").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		log.Debug("platform request failed",
			zap.String("method", method),
			zap.String("route", label),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return domain.Response{}, errors.Wrapf(err, "%s %s", method, label)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	duration := time.Since(start)
	if err != nil {
		metrics.TransportErrorsTotal.WithLabelValues(method, label, "read_body").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "read response body failed")
		return domain.Response{}, errors.Wrapf(err, "read %s %s response", method, label)
	}

	status := resp.StatusCode
	metrics.TransportRequestsTotal.WithLabelValues(method, label, strconv.Itoa(status)).Inc()
	metrics.TransportRequestDuration.WithLabelValues(method, label).Observe(duration.Seconds())

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	log.Debug("platform request completed",
		zap.String("method", method),
		zap.String("route", label),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)

	return domain.Response{StatusCode: status, Body: body}, nil
}

// routeLabel collapses path parameters so metric labels stay bounded.
func routeLabel(route string) string {
	segments := strings.Split(route, "/")
	for i, s := range segments {
		if isParam(s) || (i > 0 && segments[i-1] == "update") {
			segments[i] = "{}"
		}
	}
	return strings.Join(segments, "/")
}

func isParam(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
