package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/crickpulse/prediction-api/internal/models"
)

// RatingSource is the rating lookup capability the engine consumes. The
// production implementation lives in internal/logic and reads Postgres.
type RatingSource interface {
	GetRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error)
}

// EloModel converts per-team Elo ratings into a head-to-head win
// probability using the logistic formula over the rating difference.
type EloModel struct {
	ratings  RatingSource
	drawProb float64 // mass reserved for the draw in test matches
}

func NewEloModel(ratings RatingSource, drawProb float64) *EloModel {
	if drawProb <= 0 || drawProb >= 1 {
		drawProb = DefaultTestDrawProb
	}
	return &EloModel{ratings: ratings, drawProb: drawProb}
}

// DefaultTestDrawProb is the draw mass reserved in test cricket when no
// override is configured.
const DefaultTestDrawProb = 0.02

// WinProbability computes the outcome distribution for team1 vs team2 in the
// given format. It fails with ErrMissingRating (wrapped) when either side has
// no rating record in that context; it never panics.
func (m *EloModel) WinProbability(ctx context.Context, team1ID, team2ID string, format models.MatchFormat) (models.WinProbabilities, error) {
	var probs models.WinProbabilities

	r1, err := m.ratings.GetRating(ctx, team1ID, format)
	if err != nil {
		return probs, fmt.Errorf("rating lookup for %s/%s: %w", team1ID, format, err)
	}
	r2, err := m.ratings.GetRating(ctx, team2ID, format)
	if err != nil {
		return probs, fmt.Errorf("rating lookup for %s/%s: %w", team2ID, format, err)
	}

	p1 := logistic(r1.EloRating, r2.EloRating)

	if format == models.FormatTest {
		// Reserve the draw mass and rescale the win probabilities so the
		// three outcomes sum to 1.
		probs.DrawProb = m.drawProb
		probs.Team1WinProb = p1 * (1 - m.drawProb)
		probs.Team2WinProb = (1 - p1) * (1 - m.drawProb)
	} else {
		probs.Team1WinProb = p1
		probs.Team2WinProb = 1 - p1
	}

	return probs, nil
}

// logistic is the standard Elo expectation: P = 1 / (1 + 10^((R2-R1)/400)).
func logistic(r1, r2 float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (r2-r1)/400.0))
}
