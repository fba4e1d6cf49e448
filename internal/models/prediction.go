package models

import "time"

// MatchFormat identifies the rating context a prediction is scoped to.
type MatchFormat string

const (
	FormatT20  MatchFormat = "t20"
	FormatODI  MatchFormat = "odi"
	FormatTest MatchFormat = "test"
)

// Valid reports whether the format is one we model.
func (f MatchFormat) Valid() bool {
	switch f {
	case FormatT20, FormatODI, FormatTest:
		return true
	}
	return false
}

// PredictionMode selects the execution path of the orchestrator.
type PredictionMode string

const (
	ModeFast     PredictionMode = "fast"
	ModeBalanced PredictionMode = "balanced"
	ModeSmart    PredictionMode = "smart"
)

// TimeConstraint lets callers force a tier directly, bypassing the smart
// heuristic. "accurate" maps to the balanced tier.
type TimeConstraint string

const (
	ConstraintFast     TimeConstraint = "fast"
	ConstraintBalanced TimeConstraint = "balanced"
	ConstraintAccurate TimeConstraint = "accurate"
)

// PredictionInput identifies a single prediction request. Immutable once
// constructed.
type PredictionInput struct {
	Team1ID       string      `json:"team1_id" validate:"required"`
	Team2ID       string      `json:"team2_id" validate:"required,nefield=Team1ID"`
	Team1Name     string      `json:"team1_name"`
	Team2Name     string      `json:"team2_name"`
	Venue         string      `json:"venue"`
	Format        MatchFormat `json:"format" validate:"required,oneof=t20 odi test"`
	MatchDate     time.Time   `json:"match_date"`
	Tournament    string      `json:"tournament"`
	SeriesContext string      `json:"series_context"`
}

// PredictionResult is the contract every predict operation fulfils,
// regardless of which engine produced it.
type PredictionResult struct {
	Team1WinProb     float64  `json:"team1_win_prob"`
	Team2WinProb     float64  `json:"team2_win_prob"`
	DrawProb         float64  `json:"draw_prob"`
	Confidence       float64  `json:"confidence"`
	KeyFactors       []string `json:"key_factors"`
	RiskFactors      []string `json:"risk_factors"`
	ModelVersion     string   `json:"model_version"`
	EngineUsed       string   `json:"engine_used"`
	Accuracy         float64  `json:"accuracy"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
	FromCache        bool     `json:"from_cache,omitempty"`
}

// WinProbabilities is the output of the rating model before any
// feature-based adjustment: the Elo prior.
type WinProbabilities struct {
	Team1WinProb float64 `json:"team1_win_prob"`
	Team2WinProb float64 `json:"team2_win_prob"`
	DrawProb     float64 `json:"draw_prob"`
}

// MatchFeatures carries the contextual signals the feature ensemble blends
// into the Elo prior. Coverage is the fraction of signals that were actually
// backed by data, in [0,1]; weakly covered features should not inflate
// confidence.
type MatchFeatures struct {
	Team1RecentForm float64   `json:"team1_recent_form"` // [0,1], 0.5 = neutral
	Team2RecentForm float64   `json:"team2_recent_form"`
	VenueBias       float64   `json:"venue_bias"` // [-1,1], >0 favours team1
	HeadToHead      H2HRecord `json:"head_to_head"`
	Coverage        float64   `json:"coverage"`
}

// H2HRecord summarises recent meetings between the two sides.
type H2HRecord struct {
	Matches   int `json:"matches"`
	Team1Wins int `json:"team1_wins"`
	Team2Wins int `json:"team2_wins"`
	Draws     int `json:"draws"`
}
