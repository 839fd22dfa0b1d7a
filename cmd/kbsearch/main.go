package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbsearch/internal/config"
	dbValkey "github.com/kailas-cloud/kbsearch/internal/db/valkey"
	"github.com/kailas-cloud/kbsearch/internal/domain"
	logpkg "github.com/kailas-cloud/kbsearch/internal/logger"
	"github.com/kailas-cloud/kbsearch/internal/metrics"
	collectionrepo "github.com/kailas-cloud/kbsearch/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/kbsearch/internal/repository/document"
	"github.com/kailas-cloud/kbsearch/internal/repository/embcache"
	"github.com/kailas-cloud/kbsearch/internal/repository/keys"
	searchrepo "github.com/kailas-cloud/kbsearch/internal/repository/search"
	"github.com/kailas-cloud/kbsearch/internal/telemetry"
	chiTransport "github.com/kailas-cloud/kbsearch/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/kbsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/kbsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/kbsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kbsearch/internal/usecase/search"
	seeduc "github.com/kailas-cloud/kbsearch/internal/usecase/seed"
	"github.com/kailas-cloud/kbsearch/internal/version"
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

	logger.Info("Starting kbsearch",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)
	if cfg.Auth.APIKey == "" {
		logger.Warn("auth.api_key is empty: every search request will be rejected")
	}

	flush, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.Telemetry.SentryDSN,
		Environment:      env,
		Release:          version.Version,
		TracesSampleRate: cfg.Telemetry.TracesSampleRate,
	}, logger)
	if err != nil {
		logger.Warn("Sentry disabled", zap.Error(err))
	}
	defer flush()

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
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

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	ks := keys.New(cfg.Storage.KeyPrefix)

	// Composition root: OpenAI -> Cached -> Instrumented -> Instruction
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	var embedder domain.Embedder = base
	if cfg.Embedding.Cache {
		embedder = embcache.New(base, store, ks, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)

	docEmbedder := withInstruction(embedder, cfg.Embedding.DocumentInstruction)
	queryEmbedder := withInstruction(embedder, cfg.Embedding.QueryInstruction)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.Cache),
	)

	collRepo := collectionrepo.New(store, ks).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	docRepo := documentrepo.New(store, ks)
	searchRepo := searchrepo.New(store, ks)

	if cfg.Seed.IsEnabled() {
		seedSvc := seeduc.New(collRepo, docRepo, docEmbedder, cfg.Embedding.Dimensions, logger)
		if _, err := seedSvc.Run(ctx, cfg.Seed.Collection, seeduc.DefaultDocuments); err != nil {
			telemetry.CaptureError(ctx, err)
			flush()
			logger.Fatal("Failed to seed knowledge base", zap.Error(err))
		}
	}

	searchSvc := searchuc.New(collRepo, searchRepo, queryEmbedder, searchuc.Limits{
		Default: cfg.Search.DefaultResults,
		Max:     cfg.Search.MaxResults,
	})

	healthSvc := healthuc.New(logger).
		Register("database", healthuc.CheckFunc(store.Ping)).
		Register("embedding", healthuc.CheckFunc(base.HealthCheck))

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKey),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

// withInstruction prefixes texts with instruction; outermost so the cache key includes it.
func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}
