package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/crickpulse/prediction-api/internal/models"
)

// IngestResult accepts a settled match result for rating settlement
// @Summary Ingest Match Result
// @Description Queues a settled fixture; ratings are updated asynchronously
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param body body models.MatchResult true "Match Result"
// @Success 202 {object} map[string]string "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Queue Full"
// @Router /results [post]
func (h *Handler) IngestResult(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var result models.MatchResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validator.Struct(&result); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if result.MatchID == "" {
		result.MatchID = uuid.New().String()
	}

	if !h.pool.Enqueue(&result) {
		h.logger.Warnw("Settlement queue rejected result", "matchID", result.MatchID)
		h.errorResponse(w, http.StatusServiceUnavailable, "Settlement queue full")
		return
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]string{
		"status":   "accepted",
		"match_id": result.MatchID,
	})
}
