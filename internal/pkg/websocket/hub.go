// Package websocket pushes committed ledger changes to connected teachers and parents.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/models"
)

// Event types
const (
	EventSessionCreated     = "session.created"
	EventSessionPaidChanged = "session.paid_changed"
	EventPriceChanged       = "student.price_changed"
)

// Event is one ledger change. Teachers receive every event, a parent only the
// events of their own children.
type Event struct {
	Type      string      `json:"type"`
	StudentID int64       `json:"studentId"`
	ParentID  int64       `json:"-"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// audience reports whether a client with the given identity may receive e
func (e *Event) audience(userID int64, role models.RoleType) bool {
	return role == models.RoleTeacher || (role == models.RoleParent && userID == e.ParentID)
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	// guards clients for ClientsCount
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Publish queues an event for delivery. It never blocks: when the queue is full the event is dropped.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- &event:
	default:
		h.logger.Warn().Str("type", event.Type).Int64("studentID", event.StudentID).Msg("Ledger event queue full, event dropped")
	}
}

// ClientsCount returns the number of connected clients
func (h *Hub) ClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", client.userID).
		Str("role", string(client.role)).
		Msg("Client registered")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Info().Int64("userID", client.userID).Msg("Client unregistered")
	}
}

func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal ledger event")
		return
	}

	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for client := range h.clients {
		if !event.audience(client.userID, client.role) {
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// a full send buffer means the peer stopped reading
	for _, client := range slow {
		h.removeClient(client)
	}

	h.logger.Debug().
		Str("type", event.Type).
		Int64("studentID", event.StudentID).
		Int("clientCount", delivered).
		Msg("Ledger event broadcasted")
}
