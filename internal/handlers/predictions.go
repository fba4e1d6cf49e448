package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crickpulse/prediction-api/internal/models"
)

// PredictRequest wraps the prediction input with the execution policy.
type PredictRequest struct {
	models.PredictionInput
	Mode           models.PredictionMode `json:"mode" validate:"omitempty,oneof=fast balanced smart"`
	TimeConstraint models.TimeConstraint `json:"time_constraint" validate:"omitempty,oneof=fast balanced accurate"`
}

// decodePredictRequest parses and validates a prediction request body.
func (h *Handler) decodePredictRequest(w http.ResponseWriter, r *http.Request) (*PredictRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return nil, false
	}
	return &req, true
}

// Predict returns a match outcome prediction using the requested mode
// @Summary Predict Match Outcome
// @Description Runs the tiered prediction engine; never fails, degrading to a static baseline instead
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body PredictRequest true "Fixture and execution policy"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predictions [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePredictRequest(w, r)
	if !ok {
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeSmart
	}

	result := h.engine.Predict(r.Context(), req.PredictionInput, mode, req.TimeConstraint)
	h.jsonResponse(w, http.StatusOK, result)
}

// PredictFast returns a rating-only prediction
// @Summary Fast Prediction
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictionInput true "Fixture"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predictions/fast [post]
func (h *Handler) PredictFast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePredictRequest(w, r)
	if !ok {
		return
	}

	result := h.engine.PredictFast(r.Context(), req.PredictionInput)
	h.jsonResponse(w, http.StatusOK, result)
}

// PredictBalanced returns a feature-enhanced prediction
// @Summary Balanced Prediction
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictionInput true "Fixture"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predictions/balanced [post]
func (h *Handler) PredictBalanced(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePredictRequest(w, r)
	if !ok {
		return
	}

	result := h.engine.PredictBalanced(r.Context(), req.PredictionInput)
	h.jsonResponse(w, http.StatusOK, result)
}
