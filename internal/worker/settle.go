package worker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/crickpulse/prediction-api/internal/models"
)

const (
	// DefaultKFactor is the Elo update step when none is configured.
	DefaultKFactor = 24.0

	// formDecay is the weight kept from the previous form rating. The
	// remainder comes from the latest result, so recent matches dominate.
	formDecay = 0.75
)

// settle applies one match result to both teams' ratings and publishes the
// updated form to Redis for the feature provider.
func (p *Pool) settle(result *models.MatchResult) error {
	ctx := context.Background()

	r1, err := p.config.Ratings.GetOrInitRating(ctx, result.Team1ID, result.Format)
	if err != nil {
		return fmt.Errorf("load rating for %s: %w", result.Team1ID, err)
	}
	r2, err := p.config.Ratings.GetOrInitRating(ctx, result.Team2ID, result.Format)
	if err != nil {
		return fmt.Errorf("load rating for %s: %w", result.Team2ID, err)
	}

	score1 := outcomeScore(result.Outcome)
	expected1 := 1.0 / (1.0 + math.Pow(10, (r2.EloRating-r1.EloRating)/400.0))

	// A larger victory margin moves ratings further, capped at 1.5x.
	k := p.config.KFactor * (1 + 0.5*clampMargin(result.Margin))
	delta := k * (score1 - expected1)

	applyOutcome(r1, score1, delta, result.PlayedAt)
	applyOutcome(r2, 1-score1, -delta, result.PlayedAt)

	if err := p.config.Ratings.UpsertRating(ctx, r1); err != nil {
		return err
	}
	if err := p.config.Ratings.UpsertRating(ctx, r2); err != nil {
		return err
	}

	p.publishForm(ctx, result.Format, r1, r2)
	return nil
}

func outcomeScore(outcome models.MatchOutcome) float64 {
	switch outcome {
	case models.OutcomeTeam1Win:
		return 1
	case models.OutcomeTeam2Win:
		return 0
	default:
		return 0.5
	}
}

// applyOutcome folds one result into a rating row: Elo delta, win/loss/draw
// tallies, recency-weighted form and peak tracking.
func applyOutcome(r *models.TeamRating, score, delta float64, playedAt time.Time) {
	r.EloRating += delta
	r.MatchesPlayed++
	switch score {
	case 1:
		r.Wins++
	case 0:
		r.Losses++
	default:
		r.Draws++
	}

	r.FormRating = formDecay*r.FormRating + (1-formDecay)*score

	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}
	if r.EloRating > r.PeakRating {
		r.PeakRating = r.EloRating
		r.PeakAt = playedAt
	}
	r.UpdatedAt = time.Now().UTC()
}

// publishForm mirrors both teams' form into the live_form hash. Failures are
// logged, not fatal: the feature provider degrades to neutral form.
func (p *Pool) publishForm(ctx context.Context, format models.MatchFormat, ratings ...*models.TeamRating) {
	if p.config.Forms == nil {
		return
	}

	key := "live_form:" + string(format)
	for _, r := range ratings {
		if err := p.config.Forms.HSet(ctx, key, r.TeamID, fmt.Sprintf("%.4f", r.FormRating)).Err(); err != nil {
			p.logger.Warnw("Failed to publish live form", "team", r.TeamID, "error", err)
		}
	}
}

func clampMargin(m float64) float64 {
	return math.Max(0, math.Min(1, m))
}
