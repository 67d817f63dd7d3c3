package citrination

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	host       string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string

	maxQuerySize int
	rps          float64
	burst        int

	suppressWarnings bool
	warningHandler   func(string)

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sets the platform API key. Required.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHost sets the platform base URL.
// Default: https://citrination.com.
func WithHost(host string) Option {
	return optionFunc(func(c *clientConfig) {
		c.host = host
	})
}

// WithHTTPClient replaces the HTTP client used for every request.
// WithTimeout is ignored when a client is supplied.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout bounds a single HTTP request. Default: 5 minutes.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithMaxQuerySize sets the maximum number of hits one search returns.
// Default: 10000.
func WithMaxQuerySize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxQuerySize = size
	})
}

// WithRateLimit limits requests to rps per second with the given burst.
// Disabled by default.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rps = rps
		c.burst = burst
	})
}

// WithSuppressWarnings silences non-fatal warnings such as size capping.
func WithSuppressWarnings(suppress bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.suppressWarnings = suppress
	})
}

// WithWarningHandler receives every non-fatal warning in addition to the
// logger.
func WithWarningHandler(fn func(msg string)) Option {
	return optionFunc(func(c *clientConfig) {
		c.warningHandler = fn
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
