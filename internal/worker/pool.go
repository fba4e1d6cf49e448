// Package worker implements the buffered worker pool for rating settlement.
// It decouples HTTP result ingestion from database writes, providing:
// - Backpressure handling via load shedding
// - Batch inserts of settled results into ClickHouse
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crickpulse/prediction-api/internal/models"
)

// Prometheus metrics
var (
	resultsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_results_ingested_total",
		Help: "Total number of match results accepted for settlement",
	})

	resultsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_results_settled_total",
		Help: "Total number of match results applied to team ratings",
	})

	resultsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_results_failed_total",
		Help: "Total number of match results that failed settlement",
	})

	settleQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crickpulse_settlement_queue_depth",
		Help: "Current depth of the settlement queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crickpulse_result_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts of settled results into ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	resultsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_results_load_shed_total",
		Help: "Total number of match results dropped due to load shedding",
	})
)

// RatingStore is the slice of the ratings store the settler needs.
type RatingStore interface {
	GetOrInitRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error)
	UpsertRating(ctx context.Context, rating *models.TeamRating) error
}

// FormWriter publishes recency-weighted form for the feature provider.
type FormWriter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Job represents one settled match queued for processing
type Job struct {
	Result    *models.MatchResult
	Timestamp time.Time
}

// PoolConfig configures the settlement pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	KFactor       float64
	ClickHouse    driver.Conn
	Ratings       RatingStore
	Forms         FormWriter
	Logger        *zap.Logger
}

// Pool manages a pool of workers applying match results to ratings
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new settlement pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.KFactor <= 0 {
		cfg.KFactor = DefaultKFactor
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Settlement pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the pool, flushing queued results
func (p *Pool) Stop() {
	p.logger.Info("Stopping settlement pool...")

	// Close first so workers drain the queue before the context dies.
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Settlement pool stopped")
}

// Enqueue adds a result to the queue. Returns false when the pool is
// shutting down or the queue is full.
func (p *Pool) Enqueue(result *models.MatchResult) bool {
	job := Job{
		Result:    result,
		Timestamp: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue result (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- job:
		resultsIngested.Inc()
		return true
	default:
		p.logger.Warn("Settlement queue full, dropping result")
		resultsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker settles results as they arrive and batches ClickHouse history writes
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.insertBatch(batch); err != nil {
			p.logger.Errorw("History batch insert failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}

			if err := p.settle(job.Result); err != nil {
				p.logger.Errorw("Settlement failed",
					"worker", id,
					"matchID", job.Result.MatchID,
					"error", err,
				)
				resultsFailed.Inc()
				continue
			}
			resultsSettled.Inc()

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// insertBatch writes settled results into ClickHouse so the feature
// provider's venue and head-to-head queries can see them.
func (p *Pool) insertBatch(batch []Job) error {
	if p.config.ClickHouse == nil {
		return nil
	}

	ctx := context.Background()
	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO match_results (
			match_id, team1_id, team2_id, format, venue, tournament,
			outcome, margin, played_at
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		r := job.Result
		playedAt := r.PlayedAt
		if playedAt.IsZero() {
			playedAt = job.Timestamp
		}
		if err := chBatch.Append(
			r.MatchID,
			r.Team1ID,
			r.Team2ID,
			string(r.Format),
			r.Venue,
			r.Tournament,
			string(r.Outcome),
			r.Margin,
			playedAt,
		); err != nil {
			p.logger.Warnw("Failed to append result to batch", "error", err, "matchID", r.MatchID)
			continue
		}
	}

	return chBatch.Send()
}

// reportQueueDepth periodically updates the queue depth gauge
func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			settleQueueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
