package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cybraia/style-hub/internal/analytics"
)

// AnalyticsHandler handles ranking queries against the analytics warehouse
type AnalyticsHandler struct {
	analytics *analytics.Service
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analyticsService,
		logger:    logger,
	}
}

// TopProducts handles GET /analytics/top5
func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	top, err := h.analytics.TopProducts(r.Context())
	if err != nil {
		if err == analytics.ErrNoViews {
			writeMessage(w, http.StatusOK, "No views recorded in BigQuery for ranking.")
			return
		}

		h.logger.Error("view ranking failed", "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "BigQuery Analytics query failed.", err)
		return
	}

	writeJSON(w, http.StatusOK, top)
}
