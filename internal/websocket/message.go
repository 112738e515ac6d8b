package websocket

import (
	"encoding/json"

	"github.com/isdelr/ewaste-ai-be/internal/models"
)

const (
	ActionAnalysisCreated = "analysis.created"
	ActionPing            = "ping"
	ActionPong            = "pong"
	ActionError           = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// AnalysisPayload accompanies ActionAnalysisCreated.
type AnalysisPayload struct {
	Analysis  models.Analysis  `json:"analysis"`
	UserStats models.UserStats `json:"userStats"`
}

// NewErrorMessage encodes an error notice for a client.
func NewErrorMessage(text string) []byte {
	b, _ := json.Marshal(Message{Action: ActionError, Payload: map[string]string{"error": text}})
	return b
}

// NewPongMessage answers a client ping.
func NewPongMessage() []byte {
	b, _ := json.Marshal(Message{Action: ActionPong})
	return b
}
