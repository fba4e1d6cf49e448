// Package engine implements the tiered match-outcome prediction engine:
// an Elo rating model, a feature ensemble on top of it, a TTL-bounded
// prediction cache and a mode orchestrator that degrades through cheaper
// tiers instead of failing the caller.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/crickpulse/prediction-api/internal/models"
)

var (
	predictionsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crickpulse_predictions_computed_total",
		Help: "Total number of predictions computed, by engine",
	}, []string{"engine"})

	tierFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crickpulse_prediction_tier_fallbacks_total",
		Help: "Total number of times a prediction tier fell back to a cheaper one",
	})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crickpulse_prediction_duration_seconds",
		Help:    "Duration of prediction computations",
		Buckets: prometheus.DefBuckets,
	})
)

// DefaultImportanceKeywords mark a fixture worth the balanced tier when the
// smart mode inspects tournament and series text.
var DefaultImportanceKeywords = []string{"world", "final", "semi"}

// Config wires the orchestrator's collaborators and policy knobs.
type Config struct {
	Ratings            RatingSource
	Features           FeatureSource
	CacheTTL           time.Duration
	CacheCapacity      int
	TestDrawProb       float64
	ImportanceKeywords []string
	Logger             *zap.Logger
}

// Orchestrator selects the execution path for a prediction request, memoizes
// results and chains fallbacks so Predict never returns an error.
type Orchestrator struct {
	elo      *EloModel
	ensemble *Ensemble
	cache    *PredictionCache
	group    singleflight.Group
	keywords []string
	logger   *zap.SugaredLogger
}

func New(cfg Config) *Orchestrator {
	keywords := cfg.ImportanceKeywords
	if len(keywords) == 0 {
		keywords = DefaultImportanceKeywords
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	return &Orchestrator{
		elo:      NewEloModel(cfg.Ratings, cfg.TestDrawProb),
		ensemble: NewEnsemble(cfg.Features),
		cache:    NewPredictionCache(cfg.CacheTTL, cfg.CacheCapacity),
		keywords: lowered,
		logger:   cfg.Logger.Sugar(),
	}
}

// PredictFast runs the rating model only.
func (o *Orchestrator) PredictFast(ctx context.Context, input models.PredictionInput) *models.PredictionResult {
	return o.predictTier(ctx, input, false)
}

// PredictBalanced runs the rating model then the feature ensemble, keeping
// the rating-only result when enhancement fails.
func (o *Orchestrator) PredictBalanced(ctx context.Context, input models.PredictionInput) *models.PredictionResult {
	return o.predictTier(ctx, input, true)
}

// Predict resolves the execution tier from mode and optional time constraint,
// then dispatches. It never returns an error: every failure degrades down to
// the static fallback.
func (o *Orchestrator) Predict(ctx context.Context, input models.PredictionInput, mode models.PredictionMode, constraint models.TimeConstraint) *models.PredictionResult {
	if o.resolveBalanced(input, mode, constraint) {
		return o.PredictBalanced(ctx, input)
	}
	return o.PredictFast(ctx, input)
}

// ClearCache drops all memoized predictions.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
}

// CacheStats reports prediction cache occupancy and hit rate.
func (o *Orchestrator) CacheStats() models.CacheStats {
	return o.cache.Stats()
}

// resolveBalanced decides whether the request takes the balanced path. A
// time constraint wins over the mode; "accurate" maps to balanced since
// there is no heavier tier.
func (o *Orchestrator) resolveBalanced(input models.PredictionInput, mode models.PredictionMode, constraint models.TimeConstraint) bool {
	switch constraint {
	case models.ConstraintFast:
		return false
	case models.ConstraintBalanced, models.ConstraintAccurate:
		return true
	}

	switch mode {
	case models.ModeBalanced:
		return true
	case models.ModeSmart:
		return o.important(input)
	default:
		return false
	}
}

// important reports whether the fixture's tournament or series text matches
// the importance vocabulary.
func (o *Orchestrator) important(input models.PredictionInput) bool {
	text := strings.ToLower(input.Tournament + " " + input.SeriesContext)
	for _, kw := range o.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) predictTier(ctx context.Context, input models.PredictionInput, balanced bool) *models.PredictionResult {
	key := cacheKey(input, balanced)

	if cached, ok := o.cache.Get(key); ok {
		return &cached
	}

	// Collapse concurrent computations for the same key: the duplicates
	// block on the first caller's result instead of recomputing.
	value, _, _ := o.group.Do(key, func() (interface{}, error) {
		return o.compute(ctx, input, balanced, key), nil
	})

	result := value.(*models.PredictionResult)
	copied := cloneResult(*result)
	return &copied
}

// compute runs the fallback pipeline for one tier and writes successful
// model results back to the cache. The static fallback is returned but not
// cached, so a recovered rating store is picked up immediately.
func (o *Orchestrator) compute(ctx context.Context, input models.PredictionInput, balanced bool, key string) *models.PredictionResult {
	start := time.Now()
	defer func() {
		predictionDuration.Observe(time.Since(start).Seconds())
	}()

	base, err := o.elo.WinProbability(ctx, input.Team1ID, input.Team2ID, input.Format)
	if err != nil {
		o.logger.Warnw("Rating model unavailable, using static fallback",
			"team1", input.Team1ID,
			"team2", input.Team2ID,
			"format", input.Format,
			"error", err,
		)
		tierFallbacks.Inc()
		predictionsComputed.WithLabelValues(EngineFallback).Inc()
		result := FallbackResult(input)
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result
	}

	result := o.assemble(ctx, input, base, balanced)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	predictionsComputed.WithLabelValues(result.EngineUsed).Inc()

	o.cache.Put(key, *result)
	return result
}

// assemble builds the final result from the Elo prior, running the ensemble
// on the balanced path and degrading to the plain Elo result when it fails.
func (o *Orchestrator) assemble(ctx context.Context, input models.PredictionInput, base models.WinProbabilities, balanced bool) *models.PredictionResult {
	if balanced {
		if enh, err := o.ensemble.Enhance(ctx, base, input); err == nil {
			profile := ProfileFor(EngineEnsemble)
			return &models.PredictionResult{
				Team1WinProb: enh.Probs.Team1WinProb,
				Team2WinProb: enh.Probs.Team2WinProb,
				DrawProb:     enh.Probs.DrawProb,
				Confidence:   enh.Confidence,
				KeyFactors:   enh.KeyFactors,
				ModelVersion: profile.ModelVersion,
				EngineUsed:   EngineEnsemble,
				Accuracy:     profile.Accuracy,
			}
		} else {
			o.logger.Warnw("Feature enhancement failed, keeping rating-only result",
				"team1", input.Team1ID,
				"team2", input.Team2ID,
				"error", err,
			)
			tierFallbacks.Inc()
		}
	}

	profile := ProfileFor(EngineElo)
	return &models.PredictionResult{
		Team1WinProb: base.Team1WinProb,
		Team2WinProb: base.Team2WinProb,
		DrawProb:     base.DrawProb,
		Confidence:   profile.Confidence,
		KeyFactors:   []string{"Elo rating differential"},
		ModelVersion: profile.ModelVersion,
		EngineUsed:   EngineElo,
		Accuracy:     profile.Accuracy,
	}
}

// cacheKey derives the memoization signature. The balanced tier includes the
// venue and a tier tag so the two tiers never collide: a balanced result is
// strictly richer than a fast one.
func cacheKey(input models.PredictionInput, balanced bool) string {
	parts := []string{input.Team1ID, input.Team2ID, string(input.Format)}
	if balanced {
		parts = append(parts, input.Venue, "balanced")
	}
	return strings.Join(parts, "|")
}
