package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cybraia/style-hub/internal/tracking"
)

// TrackingHandler handles view tracking and the ETL trigger
type TrackingHandler struct {
	tracking *tracking.Service
	logger   *slog.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(trackingService *tracking.Service, logger *slog.Logger) *TrackingHandler {
	return &TrackingHandler{
		tracking: trackingService,
		logger:   logger,
	}
}

// trackViewRequest is the body of POST /track/view
type trackViewRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// TrackView handles POST /track/view
func (h *TrackingHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	var req trackViewRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.Warn("failed to decode tracking request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.tracking.TrackView(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		if err == tracking.ErrMissingProductID {
			writeError(w, http.StatusBadRequest, "product_id is required for tracking.")
			return
		}

		h.logger.Error("failed to record user interaction", "product_id", req.ProductID, "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to record user interaction.", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Interaction tracked successfully (via MongoDB).",
		"inserted_id": result.InsertedID,
		"first_view":  result.FirstView,
	})
}

// RunETL handles POST /etl/run
// Merges per-product view counts from the event store into the analytics
// warehouse. Mounted behind API key auth.
func (h *TrackingHandler) RunETL(w http.ResponseWriter, r *http.Request) {
	result, err := h.tracking.RunETL(r.Context())
	if err != nil {
		if err == tracking.ErrNoInteractions {
			writeMessage(w, http.StatusOK, "No interaction data to transfer.")
			return
		}

		h.logger.Error("etl run failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "ETL orchestration failed.", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Application-Driven ETL complete. MongoDB summary merged into BigQuery.",
		"products_processed": result.ProductsProcessed,
		"bigquery_response":  "success",
		"run_id":             result.RunID,
	})
}
