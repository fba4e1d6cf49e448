package handlers

import (
	"context"
	"fmt"

	"github.com/crickpulse/prediction-api/internal/engine"
	"github.com/crickpulse/prediction-api/internal/models"
)

// MockEngine implements PredictionEngine for testing
type MockEngine struct {
	LastMode       models.PredictionMode
	LastConstraint models.TimeConstraint
	LastInput      models.PredictionInput
	ClearCalls     int
	Stats          models.CacheStats
}

func (m *MockEngine) result(engineUsed string) *models.PredictionResult {
	return &models.PredictionResult{
		Team1WinProb: 0.6,
		Team2WinProb: 0.4,
		Confidence:   0.75,
		EngineUsed:   engineUsed,
	}
}

func (m *MockEngine) Predict(ctx context.Context, input models.PredictionInput, mode models.PredictionMode, constraint models.TimeConstraint) *models.PredictionResult {
	m.LastInput = input
	m.LastMode = mode
	m.LastConstraint = constraint
	return m.result("mock-" + string(mode))
}

func (m *MockEngine) PredictFast(ctx context.Context, input models.PredictionInput) *models.PredictionResult {
	m.LastInput = input
	return m.result(engine.EngineElo)
}

func (m *MockEngine) PredictBalanced(ctx context.Context, input models.PredictionInput) *models.PredictionResult {
	m.LastInput = input
	return m.result(engine.EngineEnsemble)
}

func (m *MockEngine) ClearCache() {
	m.ClearCalls++
}

func (m *MockEngine) CacheStats() models.CacheStats {
	return m.Stats
}

// MockQueue implements ResultQueue for testing
type MockQueue struct {
	Results []*models.MatchResult
	Reject  bool
}

func (m *MockQueue) Enqueue(result *models.MatchResult) bool {
	if m.Reject {
		return false
	}
	m.Results = append(m.Results, result)
	return true
}

func (m *MockQueue) QueueDepth() int {
	return len(m.Results)
}

// MockRatings implements RatingReader for testing
type MockRatings struct {
	Ratings map[string]*models.TeamRating
	Err     error
}

func (m *MockRatings) GetRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Ratings[teamID+"|"+string(format)]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("team %s: %w", teamID, engine.ErrMissingRating)
}
