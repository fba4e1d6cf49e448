package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crickpulse/prediction-api/internal/engine"
	"github.com/crickpulse/prediction-api/internal/models"
)

// GetTeamRating returns the current rating row for a team in one format
// @Summary Get Team Rating
// @Tags Ratings
// @Produce json
// @Param teamId path string true "Team ID"
// @Param format query string true "Match format" Enums(t20, odi, test)
// @Success 200 {object} models.TeamRating
// @Failure 404 {object} map[string]string "Not Found"
// @Router /ratings/{teamId} [get]
func (h *Handler) GetTeamRating(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamId")
	if teamID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Team ID is required")
		return
	}

	format := models.MatchFormat(r.URL.Query().Get("format"))
	if !format.Valid() {
		h.errorResponse(w, http.StatusBadRequest, "Format must be one of t20, odi, test")
		return
	}

	rating, err := h.ratings.GetRating(r.Context(), teamID, format)
	if err != nil {
		if errors.Is(err, engine.ErrMissingRating) {
			h.errorResponse(w, http.StatusNotFound, "No rating for team in this format")
			return
		}
		h.logger.Errorw("Failed to get team rating", "error", err, "teamID", teamID, "format", format)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get rating")
		return
	}

	h.jsonResponse(w, http.StatusOK, rating)
}
