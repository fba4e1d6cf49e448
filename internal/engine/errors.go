package engine

import "errors"

var (
	// ErrMissingRating means an entity has no rating record in the requested
	// context. Rating sources wrap this so the orchestrator can fall back.
	ErrMissingRating = errors.New("no rating in requested context")

	// ErrEnhanceUnavailable means the feature provider failed or returned
	// malformed data; the balanced tier degrades to the raw Elo output.
	ErrEnhanceUnavailable = errors.New("feature enhancement unavailable")
)
