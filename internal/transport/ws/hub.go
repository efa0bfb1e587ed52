package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"rolecoach/internal/log"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to client message types
const (
	MsgDiarizationProgress MessageType = "diarization_progress"
	MsgAnalysisReady       MessageType = "analysis_ready"
	MsgSubscribed          MessageType = "subscribed"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to every connection subscribed to that session
type Hub struct {
	// session -> connections
	sessions map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	logger zerolog.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	TrainerID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message for one session channel
type BroadcastMessage struct {
	SessionID string
	Message   *Message

	// To restricts delivery to one connection of the session
	To *Connection
}

// NewHub creates a hub and starts its loop. Cancelling ctx stops the loop
// and closes every open connection.
func NewHub(ctx context.Context) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		logger:     log.Component("ws"),
	}
	go h.run(ctx)
	return h
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, conns := range h.sessions {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.sessions, id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.sessions[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug().Str("sessionId", conn.SessionID).Str("trainerId", conn.TrainerID).Msg("subscriber connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.sessions[conn.SessionID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.sessions, conn.SessionID)
					}
					h.logger.Debug().Str("sessionId", conn.SessionID).Msg("subscriber disconnected")
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error().Err(err).Str("type", string(msg.Message.Type)).Msg("failed to encode message")
				continue
			}
			h.mu.RLock()
			for conn := range h.sessions[msg.SessionID] {
				if msg.To != nil && msg.To != conn {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Subscribers returns how many connections listen on a session
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// BroadcastToSession sends a message to every subscriber of a session
// (implements service.Broadcaster). Events are dropped when the hub is
// saturated so model work never waits on slow clients.
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	h.enqueue(sessionID, nil, msgType, payload)
}

// SendTo sends a message to a single registered connection
func (h *Hub) SendTo(conn *Connection, msgType string, payload interface{}) {
	h.enqueue(conn.SessionID, conn, msgType, payload)
}

func (h *Hub) enqueue(sessionID string, to *Connection, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msgType).Msg("failed to encode payload")
		return
	}
	msg := &BroadcastMessage{
		SessionID: sessionID,
		To:        to,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn().Str("sessionId", sessionID).Str("type", msgType).Msg("broadcast queue full, dropping event")
	}
}
