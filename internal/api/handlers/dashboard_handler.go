package handlers

import (
	"net/http"

	"github.com/isdelr/ewaste-ai-be/internal/services"
)

// DashboardHandler serves the per-user statistics rollup.
type DashboardHandler struct {
	service services.StatsServiceProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service services.StatsServiceProvider) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats returns the caller's dashboard.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Dashboard(claims.UserID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch dashboard stats")
		return
	}

	respondJSON(w, http.StatusOK, envelope{"success": true, "stats": stats})
}
