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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/config"
	dbRedis "github.com/shelfscan/prodex/internal/db/redis"
	"github.com/shelfscan/prodex/internal/domain"
	logpkg "github.com/shelfscan/prodex/internal/logger"
	"github.com/shelfscan/prodex/internal/metrics"
	"github.com/shelfscan/prodex/internal/repository/embcache"
	productrepo "github.com/shelfscan/prodex/internal/repository/product"
	chiTransport "github.com/shelfscan/prodex/internal/transport/chi"
	openaiEmb "github.com/shelfscan/prodex/internal/transport/openai"
	healthuc "github.com/shelfscan/prodex/internal/usecase/health"
	hybriduc "github.com/shelfscan/prodex/internal/usecase/hybrid"
	lookupuc "github.com/shelfscan/prodex/internal/usecase/lookup"
	similarityuc "github.com/shelfscan/prodex/internal/usecase/similarity"
	"github.com/shelfscan/prodex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodex API server",
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

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI-compatible -> Redis cache -> instruction prefix
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(
		base, store,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)
	if cfg.Embedding.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	repo := productrepo.New(store, cfg.Embedding.Dimensions).WithHNSW(productrepo.HNSWConfig{
		M:           cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruct,
	})
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}

	lookupSvc := lookupuc.New(
		repo,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		time.Duration(cfg.Cache.SlowQueryMS)*time.Millisecond,
		logger,
	)
	similaritySvc := similarityuc.New(repo, cfg.Search.CandidateMultiplier, logger)
	searchSvc := hybriduc.New(lookupSvc, similaritySvc, embedder, hybriduc.Config{
		AllergenKeywords:   cfg.Search.AllergenKeywords,
		IngredientKeywords: cfg.Search.IngredientKeywords,
		Weights: hybriduc.Weights{
			Ingredients: cfg.Search.IngredientsWeight,
			Name:        cfg.Search.NameWeight,
			Allergens:   cfg.Search.AllergensWeight,
		},
	}, logger)
	// The decorators hide HealthCheck, so the base provider is checked directly.
	healthSvc := healthuc.New(store, base)

	server := chiTransport.NewServer(searchSvc, healthSvc, chiTransport.SearchDefaults{
		Limit:    cfg.Search.DefaultLimit,
		MinScore: cfg.Search.MinScore,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)
	r.Method("GET", "/metrics", promhttp.Handler())

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

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
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
