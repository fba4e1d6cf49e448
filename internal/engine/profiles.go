package engine

// Engine identifiers reported in PredictionResult.EngineUsed.
const (
	EngineElo      = "elo-rating"
	EngineEnsemble = "feature-ensemble"
	EngineFallback = "static-fallback"
)

// Profile holds the static quality estimates for one engine. These are
// calibration constants, not measured values; keeping them in one table
// makes recalibration a one-line change.
type Profile struct {
	ModelVersion string
	Confidence   float64 // baseline confidence assigned by the engine
	Accuracy     float64 // static per-engine quality estimate, percent
}

var profiles = map[string]Profile{
	EngineElo:      {ModelVersion: "elo-v2.1", Confidence: 0.75, Accuracy: 75.0},
	EngineEnsemble: {ModelVersion: "ensemble-v1.3", Confidence: 0.75, Accuracy: 82.0},
	EngineFallback: {ModelVersion: "baseline-v1.0", Confidence: 0.60, Accuracy: 55.0},
}

// ProfileFor returns the profile for the named engine. Unknown names get the
// fallback profile so a result is never left without quality metadata.
func ProfileFor(engine string) Profile {
	if p, ok := profiles[engine]; ok {
		return p
	}
	return profiles[EngineFallback]
}
