package models

import "time"

// InitialRating is the Elo assigned to a team on first sight in a context.
const InitialRating = 1500.0

// TeamRating is one row of the ratings store: one per (team, format).
// Rows are never deleted, only superseded by later updates.
type TeamRating struct {
	TeamID        string      `json:"team_id"`
	Format        MatchFormat `json:"format"`
	EloRating     float64     `json:"elo_rating"`
	GlickoRating  float64     `json:"glicko_rating"`
	Volatility    float64     `json:"volatility"`
	MatchesPlayed int         `json:"matches_played"`
	Wins          int         `json:"wins"`
	Losses        int         `json:"losses"`
	Draws         int         `json:"draws"`
	FormRating    float64     `json:"form_rating"`
	PeakRating    float64     `json:"peak_rating"`
	PeakAt        time.Time   `json:"peak_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewTeamRating returns a freshly initialized rating for a team first seen
// in the given format.
func NewTeamRating(teamID string, format MatchFormat) *TeamRating {
	now := time.Now().UTC()
	return &TeamRating{
		TeamID:       teamID,
		Format:       format,
		EloRating:    InitialRating,
		GlickoRating: InitialRating,
		Volatility:   0.06,
		FormRating:   0.5,
		PeakRating:   InitialRating,
		PeakAt:       now,
		UpdatedAt:    now,
	}
}

// Consistent reports whether the win/loss/draw tallies add up to the
// matches-played counter.
func (r *TeamRating) Consistent() bool {
	return r.MatchesPlayed == r.Wins+r.Losses+r.Draws
}
