package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/crickpulse/prediction-api/internal/models"
)

// stubRatings implements RatingSource for testing
type stubRatings struct {
	ratings map[string]float64
	err     error
}

func (s *stubRatings) GetRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error) {
	if s.err != nil {
		return nil, s.err
	}
	elo, ok := s.ratings[teamID]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrMissingRating)
	}
	r := models.NewTeamRating(teamID, format)
	r.EloRating = elo
	return r, nil
}

func TestWinProbability(t *testing.T) {
	ratings := &stubRatings{ratings: map[string]float64{
		"ind": 1600,
		"aus": 1400,
		"eng": 1500,
	}}
	model := NewEloModel(ratings, 0.02)

	tests := []struct {
		name     string
		team1    string
		team2    string
		format   models.MatchFormat
		wantP1   float64
		wantDraw float64
		wantErr  bool
	}{
		{
			name:   "200 point edge in t20",
			team1:  "ind",
			team2:  "aus",
			format: models.FormatT20,
			// 1/(1+10^(-200/400))
			wantP1:   0.7597,
			wantDraw: 0,
		},
		{
			name:     "even teams in odi",
			team1:    "eng",
			team2:    "eng",
			format:   models.FormatODI,
			wantP1:   0.5,
			wantDraw: 0,
		},
		{
			name:     "test format reserves draw mass",
			team1:    "ind",
			team2:    "aus",
			format:   models.FormatTest,
			wantP1:   0.7597 * 0.98,
			wantDraw: 0.02,
		},
		{
			name:    "missing rating",
			team1:   "ind",
			team2:   "nzl",
			format:  models.FormatT20,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.WinProbability(context.Background(), tt.team1, tt.team2, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("WinProbability() expected error, got nil")
				}
				if !errors.Is(err, ErrMissingRating) {
					t.Errorf("WinProbability() error = %v, want ErrMissingRating", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("WinProbability() unexpected error: %v", err)
			}
			if math.Abs(got.Team1WinProb-tt.wantP1) > 0.01 {
				t.Errorf("Team1WinProb = %.4f, want %.4f", got.Team1WinProb, tt.wantP1)
			}
			if math.Abs(got.DrawProb-tt.wantDraw) > 1e-9 {
				t.Errorf("DrawProb = %.4f, want %.4f", got.DrawProb, tt.wantDraw)
			}
			sum := got.Team1WinProb + got.Team2WinProb + got.DrawProb
			if sum < 0.99 || sum > 1.01 {
				t.Errorf("probabilities sum to %.4f, want within [0.99, 1.01]", sum)
			}
		})
	}
}

func TestWinProbabilitySourceError(t *testing.T) {
	model := NewEloModel(&stubRatings{err: errors.New("connection refused")}, 0.02)

	_, err := model.WinProbability(context.Background(), "ind", "aus", models.FormatODI)
	if err == nil {
		t.Fatal("WinProbability() expected error when source fails")
	}
}
