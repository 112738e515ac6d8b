package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/isdelr/ewaste-ai-be/internal/services"
)

const (
	defaultCenterLimit = 10
	maxCenterLimit     = 100
	defaultRadiusKm    = 10.0
)

// RecyclingHandler serves the recycling center directory.
type RecyclingHandler struct {
	service services.CenterServiceProvider
}

// NewRecyclingHandler creates a new RecyclingHandler.
func NewRecyclingHandler(service services.CenterServiceProvider) *RecyclingHandler {
	return &RecyclingHandler{service: service}
}

// ListCenters returns centers, ranked by distance when both lat and lng are given.
// radius is echoed back but does not filter results.
func (h *RecyclingHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var point *models.GeoPoint
	rawLat, rawLng := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	if rawLat != "" && rawLng != "" {
		lat, latErr := strconv.ParseFloat(rawLat, 64)
		lng, lngErr := strconv.ParseFloat(rawLng, 64)
		if latErr != nil || lngErr != nil || !inRange(lat, 90) || !inRange(lng, 180) {
			respondError(w, http.StatusBadRequest, "lat and lng must be valid coordinates")
			return
		}
		point = &models.GeoPoint{Latitude: lat, Longitude: lng}
	}

	radius := defaultRadiusKm
	if raw := strings.TrimSpace(q.Get("radius")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			respondError(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
		radius = v
	}

	limit := queryInt(r, "limit", defaultCenterLimit, maxCenterLimit)
	centers := h.service.List(point, limit)

	query := envelope{"lat": nil, "lng": nil, "radius": radius, "limit": limit}
	note := "Default list"
	if point != nil {
		query["lat"] = point.Latitude
		query["lng"] = point.Longitude
		note = "Sorted by distance from your location"
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"centers": centers,
		"query":   query,
		"note":    note,
	})
}

// GetCenter returns a single center.
func (h *RecyclingHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Recycling center not found")
		return
	}

	center, err := h.service.GetByID(id)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch recycling center")
		return
	}

	respondJSON(w, http.StatusOK, envelope{"success": true, "center": center})
}

// inRange reports whether v is a finite number within [-bound, bound].
func inRange(v, bound float64) bool {
	return !math.IsNaN(v) && v >= -bound && v <= bound
}
