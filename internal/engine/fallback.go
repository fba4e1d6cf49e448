package engine

import "github.com/crickpulse/prediction-api/internal/models"

// FallbackResult is the last-resort static estimate: a slightly home-skewed
// distribution with low confidence. It depends on no external state and
// never fails.
func FallbackResult(input models.PredictionInput) *models.PredictionResult {
	profile := ProfileFor(EngineFallback)

	result := &models.PredictionResult{
		Team1WinProb: 0.52,
		Team2WinProb: 0.46,
		DrawProb:     0.02,
		Confidence:   profile.Confidence,
		ModelVersion: profile.ModelVersion,
		EngineUsed:   EngineFallback,
		Accuracy:     profile.Accuracy,
		KeyFactors:   []string{"Static baseline estimate"},
		RiskFactors: []string{
			"Rating data unavailable",
			"Prediction degraded to static baseline",
		},
	}

	// Draw mass only carries meaning in test cricket; fold it into the win
	// probabilities for the limited-overs formats.
	if input.Format != models.FormatTest {
		result.Team1WinProb = 0.53
		result.Team2WinProb = 0.47
		result.DrawProb = 0
	}

	return result
}
