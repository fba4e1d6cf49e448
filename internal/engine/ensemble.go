package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/crickpulse/prediction-api/internal/models"
)

// FeatureSource is the feature-enrichment capability the balanced tier
// consumes. The production implementation reads ClickHouse history and
// Redis live form.
type FeatureSource interface {
	MatchFeatures(ctx context.Context, input models.PredictionInput) (*models.MatchFeatures, error)
}

// Adjustment weights for the contextual signals. The perturbation is
// additive on team1's win mass and renormalized afterwards, so the sum
// invariant holds regardless of the weights.
const (
	formWeight  = 0.12
	venueWeight = 0.08
	h2hWeight   = 0.10

	// weakCoverage is the evidence floor below which the ensemble refuses
	// to claim more confidence than the rating model alone.
	weakCoverage = 0.25

	maxConfidence = 0.92
)

// Ensemble blends the Elo prior with contextual adjustments: recent form,
// venue bias and head-to-head history.
type Ensemble struct {
	features FeatureSource
}

func NewEnsemble(features FeatureSource) *Ensemble {
	return &Ensemble{features: features}
}

// Enhancement is the ensemble's output: adjusted probabilities plus the
// evidence trail that produced them.
type Enhancement struct {
	Probs      models.WinProbabilities
	Confidence float64
	KeyFactors []string
}

// Enhance perturbs the base probabilities with feature signals. Probabilities
// stay in [0,1] and keep summing to 1 within tolerance. It fails with
// ErrEnhanceUnavailable (wrapped) when the provider errors or returns
// malformed data; the caller then falls back to the raw prior.
func (e *Ensemble) Enhance(ctx context.Context, base models.WinProbabilities, input models.PredictionInput) (*Enhancement, error) {
	feats, err := e.features.MatchFeatures(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnhanceUnavailable, err)
	}
	if err := validateFeatures(feats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnhanceUnavailable, err)
	}

	formEdge := feats.Team1RecentForm - feats.Team2RecentForm
	h2hEdge := headToHeadEdge(feats.HeadToHead)
	shift := formWeight*formEdge + venueWeight*feats.VenueBias + h2hWeight*h2hEdge

	// Shift team1's share of the win mass, then rebalance team2 so the
	// distribution still sums to 1 with the draw mass untouched.
	winMass := base.Team1WinProb + base.Team2WinProb
	p1 := clamp01(base.Team1WinProb + shift*winMass)
	if p1 > winMass {
		p1 = winMass
	}

	enhanced := models.WinProbabilities{
		Team1WinProb: p1,
		Team2WinProb: winMass - p1,
		DrawProb:     base.DrawProb,
	}

	return &Enhancement{
		Probs:      enhanced,
		Confidence: e.confidence(feats),
		KeyFactors: keyFactors(input, feats),
	}, nil
}

// confidence starts at the rating model's flat baseline and is only pushed
// above it when the evidence is not weak.
func (e *Ensemble) confidence(feats *models.MatchFeatures) float64 {
	base := ProfileFor(EngineElo).Confidence
	if feats.Coverage < weakCoverage {
		return base
	}
	conf := base + 0.15*feats.Coverage
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf
}

func validateFeatures(f *models.MatchFeatures) error {
	if f == nil {
		return fmt.Errorf("nil features")
	}
	for _, v := range []float64{f.Team1RecentForm, f.Team2RecentForm, f.VenueBias, f.Coverage} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite feature value")
		}
	}
	if f.Team1RecentForm < 0 || f.Team1RecentForm > 1 || f.Team2RecentForm < 0 || f.Team2RecentForm > 1 {
		return fmt.Errorf("form out of range")
	}
	if f.VenueBias < -1 || f.VenueBias > 1 {
		return fmt.Errorf("venue bias out of range")
	}
	if f.Coverage < 0 || f.Coverage > 1 {
		return fmt.Errorf("coverage out of range")
	}
	h := f.HeadToHead
	if h.Matches < 0 || h.Matches < h.Team1Wins+h.Team2Wins+h.Draws {
		return fmt.Errorf("inconsistent head-to-head record")
	}
	return nil
}

func headToHeadEdge(h models.H2HRecord) float64 {
	if h.Matches == 0 {
		return 0
	}
	return float64(h.Team1Wins-h.Team2Wins) / float64(h.Matches)
}

func keyFactors(input models.PredictionInput, feats *models.MatchFeatures) []string {
	name1 := input.Team1Name
	if name1 == "" {
		name1 = input.Team1ID
	}
	name2 := input.Team2Name
	if name2 == "" {
		name2 = input.Team2ID
	}

	var factors []string
	switch {
	case feats.Team1RecentForm-feats.Team2RecentForm > 0.1:
		factors = append(factors, "Recent form favours "+name1)
	case feats.Team2RecentForm-feats.Team1RecentForm > 0.1:
		factors = append(factors, "Recent form favours "+name2)
	}
	switch {
	case feats.VenueBias > 0.1:
		factors = append(factors, "Venue record favours "+name1)
	case feats.VenueBias < -0.1:
		factors = append(factors, "Venue record favours "+name2)
	}
	if edge := headToHeadEdge(feats.HeadToHead); feats.HeadToHead.Matches >= 3 {
		if edge > 0.2 {
			factors = append(factors, "Head-to-head edge to "+name1)
		} else if edge < -0.2 {
			factors = append(factors, "Head-to-head edge to "+name2)
		}
	}
	if len(factors) == 0 {
		factors = append(factors, "Evenly matched on contextual signals")
	}
	return factors
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
