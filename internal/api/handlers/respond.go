package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/isdelr/ewaste-ai-be/internal/auth"
	"github.com/isdelr/ewaste-ai-be/internal/services"
	"github.com/rs/zerolog/log"
)

// envelope is the JSON object every endpoint answers with.
type envelope map[string]interface{}

// respondJSON encodes payload before writing the status, so a payload that
// cannot be encoded becomes a 500 envelope instead of an empty body.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(envelope{"success": false, "error": "Failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, envelope{"success": false, "error": msg})
}

// respondServiceError maps service errors to status codes. Anything unexpected is
// logged and reported with the generic fallback message only.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, services.ErrDuplicateEmail):
		respondError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrAnalysisNotFound):
		respondError(w, http.StatusNotFound, "Analysis not found")
	case errors.Is(err, services.ErrCenterNotFound):
		respondError(w, http.StatusNotFound, "Recycling center not found")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// currentClaims returns the claims put on the context by the JWT middleware.
func currentClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusUnauthorized, "Access token required")
		return nil, false
	}
	return claims, true
}

// queryInt reads a positive integer query parameter. Missing, malformed or
// non-positive values yield def; values above max are capped.
func queryInt(r *http.Request, key string, def, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
