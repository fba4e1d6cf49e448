package models

import "time"

// MatchOutcome is what a settled match reported for team1.
type MatchOutcome string

const (
	OutcomeTeam1Win MatchOutcome = "team1_win"
	OutcomeTeam2Win MatchOutcome = "team2_win"
	OutcomeDraw     MatchOutcome = "draw"
)

// MatchResult is a settled fixture submitted for rating settlement.
// Margin is an optional normalized victory margin in [0,1]; 0 means unknown.
type MatchResult struct {
	MatchID    string       `json:"match_id"`
	Team1ID    string       `json:"team1_id" validate:"required"`
	Team2ID    string       `json:"team2_id" validate:"required,nefield=Team1ID"`
	Format     MatchFormat  `json:"format" validate:"required,oneof=t20 odi test"`
	Venue      string       `json:"venue"`
	Tournament string       `json:"tournament"`
	Outcome    MatchOutcome `json:"outcome" validate:"required,oneof=team1_win team2_win draw"`
	Margin     float64      `json:"margin" validate:"gte=0,lte=1"`
	PlayedAt   time.Time    `json:"played_at"`
}
