package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/config"
	"github.com/survivor-labs/survivor-indexer/internal/db"
	dbMemory "github.com/survivor-labs/survivor-indexer/internal/db/memory"
	dbPostgres "github.com/survivor-labs/survivor-indexer/internal/db/postgres"
	dbRedis "github.com/survivor-labs/survivor-indexer/internal/db/redis"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
	logpkg "github.com/survivor-labs/survivor-indexer/internal/logger"
	"github.com/survivor-labs/survivor-indexer/internal/metrics"
	"github.com/survivor-labs/survivor-indexer/internal/repository/querycache"
	"github.com/survivor-labs/survivor-indexer/internal/repository/snapshot"
	chiTransport "github.com/survivor-labs/survivor-indexer/internal/transport/chi"
	healthuc "github.com/survivor-labs/survivor-indexer/internal/usecase/health"
	queryuc "github.com/survivor-labs/survivor-indexer/internal/usecase/query"
	"github.com/survivor-labs/survivor-indexer/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, zap.String("service", "survivor-api"))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting survivor API server", append(version.Fields(),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("networks", cfg.NetworkNames()),
		zap.Bool("query_cache", cfg.Cache.Enabled()),
	)...)

	reg, err := loadVocabulary(cfg.Vocabulary)
	if err != nil {
		logger.Fatal("Failed to load vocabulary", zap.Error(err))
	}
	c := codec.New(reg)

	// Register query metrics explicitly (no init())
	metrics.RegisterQueryMetrics()
	metrics.SetBuildInfo(version.Version, version.Commit)

	ctx := context.Background()
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	// Optional query cache shared by all networks; keys carry the network name.
	var cache *dbRedis.Store
	if cfg.Cache.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:          cfg.Cache.Addrs,
			Password:       cfg.Cache.Password,
			CommandTimeout: time.Duration(cfg.Cache.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()
		if err := cache.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to query cache", zap.Int("ttl_sec", cfg.Cache.TTLSec))
	}

	limits := request.Limits{Default: cfg.Query.DefaultLimit, Max: cfg.Query.MaxLimit}
	services := make(map[string]*queryuc.Service, len(cfg.Networks))
	pingers := make(map[string]healthuc.Pinger, len(cfg.Networks))

	for _, name := range cfg.NetworkNames() {
		netLogger := logger.With(zap.String("network", name))

		store, err := createStore(ctx, cfg.Networks[name])
		if err != nil {
			netLogger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, readiness); err != nil {
			netLogger.Fatal("Database not ready", zap.Error(err))
		}
		netLogger.Info("Connected to database", zap.String("driver", cfg.Networks[name].Driver))

		var finder db.Finder = store
		if cache != nil {
			finder = querycache.New(
				store, cache, name,
				time.Duration(cfg.Cache.TTLSec)*time.Second,
				metrics.QueryCacheTotal, netLogger,
			)
		}

		exec := snapshot.New(finder, name, snapshot.Metrics{
			Duration: metrics.StoreQueryDuration,
			Returned: metrics.QueryRecordsReturned,
		})
		services[name] = queryuc.New(name, c, exec, netLogger).
			WithLimits(limits).
			WithAnomalyCounter(metrics.DataAnomaliesTotal)
		pingers[name] = store
	}

	// Health service
	var cachePinger healthuc.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := healthuc.New(pingers, cachePinger)

	// Create chi server
	server := chiTransport.NewServer(services, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// createStore opens the store of one network by driver.
func createStore(ctx context.Context, n config.NetworkConfig) (db.Store, error) {
	switch n.Driver {
	case config.DriverPostgres:
		s, err := dbPostgres.NewStore(ctx, dbPostgres.Config{DSN: n.DSN, MaxConns: n.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("create postgres store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", n.Driver)
	}
}

func loadVocabulary(cfg config.VocabularyConfig) (*vocab.Registry, error) {
	if cfg.Path == "" {
		return vocab.Default()
	}
	return vocab.Load(cfg.Path)
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
