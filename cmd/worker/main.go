// Command worker consumes recalculation tasks from the Redpanda queue and
// runs them through the scoring service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	ai "github.com/talentfolio/scoring-engine/internal/adapter/ai"
	aireal "github.com/talentfolio/scoring-engine/internal/adapter/ai/real"
	"github.com/talentfolio/scoring-engine/internal/adapter/ai/stub"
	rediscache "github.com/talentfolio/scoring-engine/internal/adapter/cache/redis"
	"github.com/talentfolio/scoring-engine/internal/adapter/observability"
	"github.com/talentfolio/scoring-engine/internal/adapter/queue/redpanda"
	"github.com/talentfolio/scoring-engine/internal/adapter/repo/postgres"
	"github.com/talentfolio/scoring-engine/internal/config"
	"github.com/talentfolio/scoring-engine/internal/domain"
	"github.com/talentfolio/scoring-engine/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	if !cfg.QueueEnabled() {
		slog.Error("no kafka brokers configured; worker has nothing to consume")
		os.Exit(1)
	}

	pool, err := postgres.NewPool(context.Background(), cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var cache domain.ResultCache
	if cfg.CacheEnabled() {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		cache = rediscache.New(rdb, cfg.ScoreCacheTTL)
		defer func() { _ = rdb.Close() }()
	}

	userRepo := postgres.NewUserRepo(pool)
	projectRepo := postgres.NewProjectRepo(pool)
	var aiClient domain.AIClient = aireal.New(cfg)
	if cfg.AIAPIKey == "" && !cfg.IsProd() {
		slog.Warn("no AI api key configured; using deterministic stub client")
		aiClient = stub.New()
	}
	judge := ai.NewJudge(aiClient, cfg.AIMaxTokens, cfg.AIPromptTokenBudget)
	scoreSvc := usecase.NewScoreService(userRepo, projectRepo, judge, cache)

	handler := redpanda.NewTaskHandler(scoreSvc)
	consumer, err := redpanda.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, handler, 4)
	if err != nil {
		slog.Error("redpanda consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Error("failed to close consumer", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("consumer stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("worker stopped")
}
