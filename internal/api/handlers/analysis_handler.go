package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/ewaste-ai-be/internal/services"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxPage          = 1 << 20

	// multipartSlack covers boundaries and part headers on top of the file itself.
	multipartSlack = 1 << 20
	// multipartMemory is how much of a form is kept in memory before spilling to disk.
	multipartMemory = 1 << 20
)

// AnalysisHandler handles image uploads and the analysis history.
type AnalysisHandler struct {
	service   services.AnalysisServiceProvider
	maxUpload int64
}

// NewAnalysisHandler creates a new AnalysisHandler accepting uploads up to maxUpload bytes.
func NewAnalysisHandler(service services.AnalysisServiceProvider, maxUpload int64) *AnalysisHandler {
	return &AnalysisHandler{service: service, maxUpload: maxUpload}
}

func (h *AnalysisHandler) tooLargeMessage() string {
	return fmt.Sprintf("Image exceeds the %dMB upload limit", h.maxUpload>>20)
}

// Predict classifies the uploaded image and records the analysis.
// Only the file name and size are used; the bytes are never inspected.
func (h *AnalysisHandler) Predict(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if r.ContentLength > h.maxUpload+multipartSlack {
		respondError(w, http.StatusBadRequest, h.tooLargeMessage())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartSlack)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, http.StatusBadRequest, h.tooLargeMessage())
		default:
			log.Debug().Err(err).Int64("user_id", claims.UserID).Msg("Unreadable upload")
			respondError(w, http.StatusBadRequest, "No image file provided")
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	file.Close()

	if header.Size > h.maxUpload {
		respondError(w, http.StatusBadRequest, h.tooLargeMessage())
		return
	}

	analysis, stats, err := h.service.Record(claims.UserID, header.Filename, header.Size)
	if err != nil {
		respondServiceError(w, r, err, "Failed to analyze image")
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success":    true,
		"analysis":   analysis.Prediction,
		"guidance":   analysis.Guidance,
		"fileInfo":   analysis.FileInfo,
		"analysisId": analysis.ID,
		"timestamp":  analysis.Timestamp,
		"userStats":  stats,
	})
}

// List returns the caller's analyses, newest first.
func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1, maxPage)
	limit := queryInt(r, "limit", defaultPageLimit, maxPageLimit)

	analyses, total, err := h.service.ListForUser(claims.UserID, page, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch analyses")
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success":  true,
		"analyses": analyses,
		"pagination": envelope{
			"total":      total,
			"page":       page,
			"limit":      limit,
			"totalPages": (total + limit - 1) / limit,
		},
	})
}

// Get returns one analysis. Records owned by someone else are reported as missing.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Analysis not found")
		return
	}

	analysis, err := h.service.GetByID(claims.UserID, id)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch analysis")
		return
	}

	respondJSON(w, http.StatusOK, envelope{"success": true, "analysis": analysis})
}
