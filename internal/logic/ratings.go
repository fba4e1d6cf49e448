package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/crickpulse/prediction-api/internal/engine"
	"github.com/crickpulse/prediction-api/internal/models"
)

// RatingStore reads and writes team ratings in Postgres. It implements
// engine.RatingSource for the prediction engine and the settlement
// interface for the worker pool.
type RatingStore struct {
	pg PgPool
}

func NewRatingStore(pg PgPool) *RatingStore {
	return &RatingStore{pg: pg}
}

const ratingColumns = `elo_rating, glicko_rating, volatility, matches_played,
	wins, losses, draws, form_rating, peak_rating, peak_at, updated_at`

// GetRating returns the rating row for (teamID, format). A missing row is
// reported as engine.ErrMissingRating so the orchestrator can fall back.
func (s *RatingStore) GetRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error) {
	rating := &models.TeamRating{TeamID: teamID, Format: format}

	err := s.pg.QueryRow(ctx, `
		SELECT `+ratingColumns+`
		FROM team_ratings
		WHERE team_id = $1 AND format = $2
	`, teamID, format).Scan(
		&rating.EloRating, &rating.GlickoRating, &rating.Volatility,
		&rating.MatchesPlayed, &rating.Wins, &rating.Losses, &rating.Draws,
		&rating.FormRating, &rating.PeakRating, &rating.PeakAt, &rating.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %s in format %s: %w", teamID, format, engine.ErrMissingRating)
	}
	if err != nil {
		return nil, fmt.Errorf("rating query failed: %w", err)
	}

	return rating, nil
}

// GetOrInitRating returns the rating row, creating a fresh 1500 rating on
// first sight of the team in this format.
func (s *RatingStore) GetOrInitRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error) {
	rating, err := s.GetRating(ctx, teamID, format)
	if err == nil {
		return rating, nil
	}
	if !errors.Is(err, engine.ErrMissingRating) {
		return nil, err
	}

	fresh := models.NewTeamRating(teamID, format)
	_, err = s.pg.Exec(ctx, `
		INSERT INTO team_ratings (team_id, format, `+ratingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (team_id, format) DO NOTHING
	`, fresh.TeamID, fresh.Format,
		fresh.EloRating, fresh.GlickoRating, fresh.Volatility,
		fresh.MatchesPlayed, fresh.Wins, fresh.Losses, fresh.Draws,
		fresh.FormRating, fresh.PeakRating, fresh.PeakAt, fresh.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("rating init failed: %w", err)
	}

	return fresh, nil
}

// UpsertRating writes a settled rating back. Rows are superseded in place,
// never deleted.
func (s *RatingStore) UpsertRating(ctx context.Context, rating *models.TeamRating) error {
	if !rating.Consistent() {
		return fmt.Errorf("inconsistent rating for %s/%s: matches %d != w+l+d %d",
			rating.TeamID, rating.Format, rating.MatchesPlayed,
			rating.Wins+rating.Losses+rating.Draws)
	}

	_, err := s.pg.Exec(ctx, `
		INSERT INTO team_ratings (team_id, format, `+ratingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (team_id, format) DO UPDATE SET
			elo_rating = EXCLUDED.elo_rating,
			glicko_rating = EXCLUDED.glicko_rating,
			volatility = EXCLUDED.volatility,
			matches_played = EXCLUDED.matches_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			form_rating = EXCLUDED.form_rating,
			peak_rating = EXCLUDED.peak_rating,
			peak_at = EXCLUDED.peak_at,
			updated_at = EXCLUDED.updated_at
	`, rating.TeamID, rating.Format,
		rating.EloRating, rating.GlickoRating, rating.Volatility,
		rating.MatchesPlayed, rating.Wins, rating.Losses, rating.Draws,
		rating.FormRating, rating.PeakRating, rating.PeakAt, rating.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("rating upsert failed: %w", err)
	}
	return nil
}
