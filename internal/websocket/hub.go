package websocket

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/rs/zerolog/log"
)

type userMessage struct {
	userID  int64
	payload []byte
}

// Hub maintains the set of active clients and routes messages to their owners.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Clients grouped by the user they authenticated as.
	byUser map[int64]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	publish  chan userMessage
	done     chan struct{}
	stopOnce sync.Once
	count    atomic.Int64
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		publish:    make(chan userMessage, 64),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. All map access happens here.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.remove(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true
			h.count.Store(int64(len(h.clients)))
			log.Info().Int64("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				log.Info().Int64("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.publish:
			for client := range h.byUser[msg.userID] {
				select {
				case client.Send <- msg.payload:
				default:
					// Slow consumer; drop it rather than block the hub.
					log.Warn().Int64("user_id", client.UserID).Str("client_id", client.ID).Msg("Dropping slow websocket client")
					h.remove(client)
				}
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// SendToUser queues payload for every client of userID. It is dropped once the hub is stopped.
func (h *Hub) SendToUser(userID int64, payload []byte) {
	select {
	case h.publish <- userMessage{userID: userID, payload: payload}:
	case <-h.done:
	}
}

// AnalysisRecorded pushes a new analysis to its owner's live feed.
func (h *Hub) AnalysisRecorded(analysis models.Analysis, stats models.UserStats) {
	msg, err := json.Marshal(Message{
		Action: ActionAnalysisCreated,
		Payload: AnalysisPayload{
			Analysis:  analysis,
			UserStats: stats,
		},
	})
	if err != nil {
		log.Error().Err(err).Int64("analysis_id", analysis.ID).Msg("Failed to encode websocket message")
		return
	}
	h.SendToUser(analysis.UserID, msg)
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	if subs, ok := h.byUser[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	h.count.Store(int64(len(h.clients)))
}

// Attach registers client. It reports false once the hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}
