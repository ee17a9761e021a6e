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

	"github.com/shelfmind/shelfmind/internal/config"
	"github.com/shelfmind/shelfmind/internal/domain"
	logpkg "github.com/shelfmind/shelfmind/internal/logger"
	"github.com/shelfmind/shelfmind/internal/metrics"
	librepo "github.com/shelfmind/shelfmind/internal/repository/library"
	chiTransport "github.com/shelfmind/shelfmind/internal/transport/chi"
	openaiEmb "github.com/shelfmind/shelfmind/internal/transport/openai"
	embeddinguc "github.com/shelfmind/shelfmind/internal/usecase/embedding"
	galaxyuc "github.com/shelfmind/shelfmind/internal/usecase/galaxy"
	healthuc "github.com/shelfmind/shelfmind/internal/usecase/health"
	queryuc "github.com/shelfmind/shelfmind/internal/usecase/query"
	reasonuc "github.com/shelfmind/shelfmind/internal/usecase/reason"
	recommenduc "github.com/shelfmind/shelfmind/internal/usecase/recommend"
	"github.com/shelfmind/shelfmind/internal/version"
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

	logger.Info("Starting shelfmind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("snapshot", cfg.Library.SnapshotPath),
	)

	// Load the library snapshot once; it is immutable for the process lifetime.
	store, err := librepo.Load(cfg.Library.SnapshotPath, logger)
	if err != nil {
		logger.Fatal("Failed to load library snapshot", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRecommendMetrics()
	metrics.RegisterHTTPMetrics()

	// Embedder chain — pass nil interface (not typed nil pointer!) when the
	// provider is not configured, so the query service degrades cleanly.
	var embedder domain.Embedder
	if cfg.Embedding.Provider != "" {
		embedder = buildEmbedder(cfg.Embedding, logger)
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Warn("No embedding provider configured, concept queries disabled")
	}

	// Keyword index for the degraded search mode
	keywords := queryuc.NewKeywordIndex()
	if err := keywords.Fit(store.Books()); err != nil {
		logger.Fatal("Failed to fit keyword index", zap.Error(err))
	}

	querySvc := queryuc.New(
		embedder, keywords,
		time.Duration(cfg.Embedding.TimeoutSec)*time.Second, logger,
	)
	recommendSvc := recommenduc.New(store, querySvc, keywords, reasonuc.NewDefault(), logger)

	projector, err := buildProjector(cfg.Galaxy, store)
	if err != nil {
		logger.Fatal("Failed to build galaxy projector", zap.Error(err))
	}
	galaxySvc := galaxyuc.New(projector, logger)

	var embChecker healthuc.EmbeddingChecker
	if embedder != nil {
		embChecker = newEmbeddingHealthChecker(embedder)
	}
	healthSvc := healthuc.New(store, embChecker)

	server := chiTransport.NewServer(recommendSvc, querySvc, galaxySvc, store, healthSvc, logger).
		WithRecommendDefaults(recommenduc.Defaults{
			TopK:          cfg.Recommend.DefaultTopK,
			DiscoveryPool: cfg.Recommend.DiscoveryPool,
		})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Instrumented
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	return embeddinguc.NewInstrumentedEmbedder(base, cfg.Provider, cfg.Model, logger)
}

// buildProjector selects the configured 3D projection.
func buildProjector(cfg config.GalaxyConfig, store *librepo.Store) (galaxyuc.Projector, error) {
	switch cfg.Projector {
	case "pca":
		p, err := galaxyuc.FitPCA(store.Embeddings(), cfg.Scale)
		if err != nil {
			return nil, fmt.Errorf("fit pca projector: %w", err)
		}
		return p, nil
	default:
		// Fail at startup, not on the first galaxy request.
		if dims := store.Dimensions(); dims > 0 && dims < galaxyuc.MinAxisDimensions {
			return nil, fmt.Errorf(
				"axis projector needs %d dims, library snapshot has %d (use the pca projector)",
				galaxyuc.MinAxisDimensions, dims)
		}
		return galaxyuc.NewAxisProjector(cfg.Scale), nil
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
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
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

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
