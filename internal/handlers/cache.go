package handlers

import "net/http"

// ClearCache drops all memoized predictions
// @Summary Clear Prediction Cache
// @Tags Cache
// @Produce json
// @Success 200 {object} map[string]string "Cleared"
// @Router /cache [delete]
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearCache()
	h.logger.Infow("Prediction cache cleared")
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GetCacheStats reports prediction cache occupancy and hit rate
// @Summary Prediction Cache Stats
// @Tags Cache
// @Produce json
// @Success 200 {object} models.CacheStats
// @Router /cache/stats [get]
func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.engine.CacheStats())
}
