package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crickpulse/prediction-api/internal/config"
	"github.com/crickpulse/prediction-api/internal/engine"
	"github.com/crickpulse/prediction-api/internal/handlers"
	"github.com/crickpulse/prediction-api/internal/logic"
	"github.com/crickpulse/prediction-api/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("fatal: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: team ratings
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()

	// ClickHouse: settled match history for feature queries
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("clickhouse dsn: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("clickhouse: %w", err)
	}
	defer ch.Close()

	// Redis: live form published by the settlement workers
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	ratings := logic.NewRatingStore(pg)
	features := logic.NewFeatureStore(ch, rdb)

	predictor := engine.New(engine.Config{
		Ratings:            ratings,
		Features:           features,
		CacheTTL:           cfg.CacheTTL,
		CacheCapacity:      cfg.CacheCapacity,
		TestDrawProb:       cfg.TestDrawProb,
		ImportanceKeywords: cfg.ImportanceKeywords,
		Logger:             logger,
	})

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		KFactor:       cfg.EloKFactor,
		ClickHouse:    ch,
		Ratings:       ratings,
		Forms:         rdb,
		Logger:        logger,
	})
	// The pool owns its lifetime: Stop drains the queue, so it must not
	// share the signal context or workers die before the drain.
	pool.Start(context.Background())
	defer pool.Stop()

	h := handlers.New(handlers.Config{
		Engine:     predictor,
		WorkerPool: pool,
		Ratings:    ratings,
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predictions", h.Predict)
		r.Post("/predictions/fast", h.PredictFast)
		r.Post("/predictions/balanced", h.PredictBalanced)
		r.Delete("/cache", h.ClearCache)
		r.Get("/cache/stats", h.GetCacheStats)
		r.Post("/results", h.IngestResult)
		r.Get("/ratings/{teamId}", h.GetTeamRating)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sugar.Infow("Prediction API listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Errorw("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	sugar.Info("Server stopped")
	return nil
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
