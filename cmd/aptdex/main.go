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
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/config"
	dbRedis "github.com/kailas-cloud/aptdex/internal/db/redis"
	logpkg "github.com/kailas-cloud/aptdex/internal/logger"
	"github.com/kailas-cloud/aptdex/internal/metrics"
	"github.com/kailas-cloud/aptdex/internal/repository/claimindex"
	"github.com/kailas-cloud/aptdex/internal/repository/embcache"
	listingrepo "github.com/kailas-cloud/aptdex/internal/repository/listing"
	chiTransport "github.com/kailas-cloud/aptdex/internal/transport/chi"
	openaiT "github.com/kailas-cloud/aptdex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/aptdex/internal/usecase/index"
	searchuc "github.com/kailas-cloud/aptdex/internal/usecase/search"
	"github.com/kailas-cloud/aptdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting aptdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI provider wrapped in the two-tier cache.
	baseEmbedder := openaiT.NewEmbedder(&openaiT.EmbedderConfig{
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
		Model:         cfg.Embedding.Model,
		Dimensions:    cfg.Embedding.Dimensions,
		Provider:      "openai",
		RatePerSecond: cfg.Embedding.RatePerSecond,
		RateBurst:     cfg.Embedding.RateBurst,
		Logger:        logger,
	})
	embedder := embcache.New(
		baseEmbedder, store,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	extractor := openaiT.NewExtractor(&openaiT.ExtractorConfig{
		APIKey:  cfg.Extractor.APIKey,
		BaseURL: cfg.Extractor.BaseURL,
		Model:   cfg.Extractor.Model,
		Logger:  logger,
	})

	// Repositories
	claimRepo := claimindex.New(store, cfg.Index.Dimensions, claimindex.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := claimRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create claim indexes", zap.Error(err))
	}
	listingRepo := listingrepo.New(store)

	// Use case services
	searchSvc := searchuc.New(claimRepo, listingRepo, listingRepo, embedder, searchuc.Config{
		RoomK:         cfg.Search.RoomK,
		ApartmentK:    cfg.Search.ApartmentK,
		NeighborhoodK: cfg.Search.NeighborhoodK,
		ClaimTimeout:  time.Duration(cfg.Search.ClaimTimeoutMs) * time.Millisecond,
	})
	ingestSvc, err := indexuc.New(claimRepo, listingRepo, embedder, cfg.Ingest.EmbedWorkers)
	if err != nil {
		logger.Fatal("Failed to create ingest service", zap.Error(err))
	}
	defer ingestSvc.Close()
	healthSvc := healthuc.New(store, baseEmbedder, extractor)

	server := chiTransport.NewServer(searchSvc, ingestSvc, listingRepo, extractor, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

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

// wideEventMiddleware emits a canonical log line per request, propagates
// X-Request-ID, and hands the handlers a request-scoped logger.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			reqLog := logger
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
				reqLog = logger.With(zap.String("request_id", requestID))
			}
			ctx := logpkg.WithContext(r.Context(), reqLog)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("http_request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
