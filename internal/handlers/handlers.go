package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crickpulse/prediction-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// PredictionEngine is the tiered prediction engine the handlers expose.
type PredictionEngine interface {
	Predict(ctx context.Context, input models.PredictionInput, mode models.PredictionMode, constraint models.TimeConstraint) *models.PredictionResult
	PredictFast(ctx context.Context, input models.PredictionInput) *models.PredictionResult
	PredictBalanced(ctx context.Context, input models.PredictionInput) *models.PredictionResult
	ClearCache()
	CacheStats() models.CacheStats
}

// ResultQueue defines the interface for the settlement worker pool
type ResultQueue interface {
	Enqueue(result *models.MatchResult) bool
	QueueDepth() int
}

// RatingReader is the read side of the ratings store.
type RatingReader interface {
	GetRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error)
}

type Config struct {
	Engine     PredictionEngine
	WorkerPool ResultQueue
	Ratings    RatingReader
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
}

type Handler struct {
	engine    PredictionEngine
	pool      ResultQueue
	ratings   RatingReader
	pg        *pgxpool.Pool
	ch        driver.Conn
	redis     *redis.Client
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

func New(cfg Config) *Handler {
	return &Handler{
		engine:    cfg.Engine,
		pool:      cfg.WorkerPool,
		ratings:   cfg.Ratings,
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
	}
}
