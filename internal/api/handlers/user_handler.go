package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/isdelr/ewaste-ai-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	GenerateJWT(user models.User) (string, error)
}

// UserHandler handles registration, login and the caller's own profile.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens TokenIssuer) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password"`
	UserType models.AccountType `json:"userType"`
}

// ProfilePayload lists the profile fields a user may change. A password key in
// the body is simply ignored.
type ProfilePayload struct {
	Name     *string             `json:"name"`
	Email    *string             `json:"email"`
	UserType *models.AccountType `json:"userType"`
	Type     *models.AccountType `json:"type"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(payload.Name, payload.Email, payload.Password, payload.UserType)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondServiceError(w, r, err, "Registration failed")
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Registration successful",
		"user":    user,
		"token":   token,
	})
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		respondServiceError(w, r, err, "Login failed")
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// GetProfile returns the authenticated user.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("User from token not found")
		respondServiceError(w, r, err, "Failed to fetch profile")
		return
	}

	respondJSON(w, http.StatusOK, envelope{"success": true, "user": user})
}

// UpdateProfile applies a partial update to the authenticated user.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var payload ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := models.ProfileUpdate{Name: payload.Name, Email: payload.Email, Type: payload.Type}
	if payload.UserType != nil {
		update.Type = payload.UserType
	}

	user, err := h.service.UpdateProfile(claims.UserID, update)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("Failed to update profile")
		respondServiceError(w, r, err, "Failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}
