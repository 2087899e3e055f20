// Command server starts the portfolio scoring engine HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	ai "github.com/talentfolio/scoring-engine/internal/adapter/ai"
	aireal "github.com/talentfolio/scoring-engine/internal/adapter/ai/real"
	"github.com/talentfolio/scoring-engine/internal/adapter/ai/stub"
	rediscache "github.com/talentfolio/scoring-engine/internal/adapter/cache/redis"
	httpserver "github.com/talentfolio/scoring-engine/internal/adapter/httpserver"
	"github.com/talentfolio/scoring-engine/internal/adapter/observability"
	"github.com/talentfolio/scoring-engine/internal/adapter/queue/redpanda"
	"github.com/talentfolio/scoring-engine/internal/adapter/repo/postgres"
	"github.com/talentfolio/scoring-engine/internal/app"
	"github.com/talentfolio/scoring-engine/internal/config"
	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepo(pool)
	projectRepo := postgres.NewProjectRepo(pool)

	// Optional result cache.
	var (
		rdb   *goredis.Client
		cache domain.ResultCache
	)
	if cfg.CacheEnabled() {
		rdb = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		cache = rediscache.New(rdb, cfg.ScoreCacheTTL)
		defer func() { _ = rdb.Close() }()
	}

	// Optional queue; without brokers the HTTP handler runs recalculations
	// in-process.
	var queue domain.Queue
	if cfg.QueueEnabled() {
		producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			slog.Error("redpanda producer connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				slog.Error("failed to close queue producer", slog.Any("error", err))
			}
		}()
		queue = producer
	}

	// Without an API key the deterministic stub keeps dev environments usable.
	var aiClient domain.AIClient = aireal.New(cfg)
	if cfg.AIAPIKey == "" && !cfg.IsProd() {
		slog.Warn("no AI api key configured; using deterministic stub client")
		aiClient = stub.New()
	}
	judge := ai.NewJudge(aiClient, cfg.AIMaxTokens, cfg.AIPromptTokenBudget)
	scoreSvc := usecase.NewScoreService(userRepo, projectRepo, judge, cache)

	dbCheck, redisCheck := app.BuildReadinessChecks(pool, rdb)
	srv := httpserver.NewServer(cfg, scoreSvc, userRepo, queue, cache, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
