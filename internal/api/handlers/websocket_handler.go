package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/isdelr/ewaste-ai-be/internal/auth"
	"github.com/isdelr/ewaste-ai-be/internal/models"
	ws "github.com/isdelr/ewaste-ai-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateJWT(token string) (*auth.Claims, error)
}

// UserLookup resolves the account behind a token.
type UserLookup interface {
	GetUserByID(id int64) (models.User, error)
}

// WebSocketHandler upgrades authenticated requests to the live analysis feed.
type WebSocketHandler struct {
	hub      *ws.Hub
	tokens   TokenValidator
	users    UserLookup
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser origins outside
// allowedOrigins are refused; "*" allows any.
func NewWebSocketHandler(hub *ws.Hub, tokens TokenValidator, users UserLookup, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		tokens: tokens,
		users:  users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Serve authenticates the request, then hands the connection to the hub.
// Browsers cannot set headers on an upgrade, so the token may come as ?token=.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token, _ = auth.BearerToken(r)
	}

	claims, err := h.tokens.ValidateJWT(token)
	if err != nil {
		if errors.Is(err, auth.ErrMissingToken) {
			respondError(w, http.StatusUnauthorized, "Access token required")
			return
		}
		respondError(w, http.StatusForbidden, "Invalid or expired token")
		return
	}

	if _, err := h.users.GetUserByID(claims.UserID); err != nil {
		respondServiceError(w, r, err, "Failed to open live feed")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID)
	if !h.hub.Attach(client) {
		conn.Close()
		return
	}
	log.Debug().Str("client_id", client.ID).Int64("user_id", claims.UserID).Msg("Live feed client connected")

	go client.WritePump()
	go client.ReadPump(h.handleIncomingWSMessage)
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().Err(err).Str("client_id", client.ID).Msg("Error decoding websocket message")
		client.Reply(ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case ws.ActionPing:
		client.Reply(ws.NewPongMessage())
	default:
		log.Warn().Str("action", msg.Action).Str("client_id", client.ID).Msg("Unknown websocket action received")
		client.Reply(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}
