package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/citrination/internal/config"
	dbValkey "github.com/kailas-cloud/citrination/internal/db/valkey"
	"github.com/kailas-cloud/citrination/internal/domain/record"
	logpkg "github.com/kailas-cloud/citrination/internal/logger"
	"github.com/kailas-cloud/citrination/internal/metrics"
	"github.com/kailas-cloud/citrination/internal/repository/memory"
	"github.com/kailas-cloud/citrination/internal/repository/seed"
	repoValkey "github.com/kailas-cloud/citrination/internal/repository/valkey"
	chiTransport "github.com/kailas-cloud/citrination/internal/transport/chi"
	citrinationTransport "github.com/kailas-cloud/citrination/internal/transport/citrination"
	cataloguc "github.com/kailas-cloud/citrination/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/citrination/internal/usecase/health"
	"github.com/kailas-cloud/citrination/internal/version"
)

func main() {
	// Load configuration based on ENV, or an explicit file
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting citrination sandbox",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("max_page_size", cfg.Search.MaxPageSize),
		zap.Int("max_query_results", cfg.Search.MaxQueryResults),
		zap.Bool("auth", len(cfg.Auth.APIKeys) > 0),
	)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStore()
	logger.Info("Store ready", zap.String("driver", cfg.Database.Driver), zap.Strings("addrs", cfg.Database.Addrs))

	// A persistent store keeps its data across restarts; seed it once.
	_, existing, err := store.FindDatasets(ctx, record.DatasetFilter{}, 0, 1)
	if err != nil {
		logger.Fatal("Failed to inspect store", zap.Error(err))
	}
	if existing == 0 {
		datasets, pifs, err := seed.Load(ctx, store, cfg.Seed.Datasets, cfg.Seed.Pifs)
		if err != nil {
			logger.Fatal("Failed to seed store", zap.Error(err))
		}
		logger.Info("Store seeded", zap.Int("datasets", datasets), zap.Int("pifs", pifs))
	} else {
		logger.Info("Store already populated, skipping seed", zap.Int("datasets", existing))
	}

	if err := metrics.RegisterHTTPMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	catalog := cataloguc.New(store, store).WithLimits(cfg.Search.MaxPageSize, cfg.Search.MaxQueryResults)
	healthSvc := healthuc.New(map[string]healthuc.Pinger{"store": store})
	server := chiTransport.NewServer(catalog, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.APIKeyMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// catalogStore is what the sandbox needs from a storage backend.
type catalogStore interface {
	cataloguc.Repository
	cataloguc.FileStore
	seed.Target
	healthuc.Pinger
}

// openStore builds the configured storage backend and returns a func that
// releases it.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (catalogStore, func(), error) {
	switch cfg.Driver {
	case config.DriverValkey:
		db, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := db.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := repoValkey.New(db).
			WithPrefix(cfg.Prefix).
			WithUploadTTL(time.Duration(cfg.UploadTTLSec) * time.Second)
		return store, db.Close, nil
	default:
		return memory.New(), func() {}, nil
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternal,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
// A client-supplied request ID wins over the generated one.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(citrinationTransport.HeaderRequestID)
			if requestID == "" {
				requestID = chiMiddleware.GetReqID(r.Context())
			}
			if requestID != "" {
				w.Header().Set(citrinationTransport.HeaderRequestID, requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.String("api_version", r.Header.Get(citrinationTransport.HeaderAPIVersion)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
