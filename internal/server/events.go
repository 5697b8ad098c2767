package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// EventType defines the type of a pushed event.
type EventType string

const (
	// EventTaskUpdate indicates a task was created, updated, or deleted.
	EventTaskUpdate EventType = "task_update"

	// EventContactUpdate indicates a contact was created, updated, or
	// deleted.
	EventContactUpdate EventType = "contact_update"

	// EventStats indicates dashboard statistics may have changed.
	EventStats EventType = "stats"
)

// Event is a broadcast message pushed to connected clients.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EntityEventData describes which entity changed and how.
type EntityEventData struct {
	ID     int64  `json:"id"`
	Action string `json:"action"` // created, updated, deleted
}

// Hub manages WebSocket connections and fans events out to them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewHub creates an event hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start runs the broadcast loop until Stop is called.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.broadcastLoop()
}

// Stop closes all connections and waits for the broadcast loop.
func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
}

// Broadcast queues an event for all connected clients. A nil data
// value sends the event with no payload. Dropped when the queue is
// full.
func (h *Hub) Broadcast(eventType EventType, data any) {
	if h == nil {
		return
	}
	var payload json.RawMessage
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		if err != nil {
			h.logger.Printf("failed to marshal event data: %v", err)
			return
		}
	}
	event := Event{Type: eventType, Timestamp: time.Now(), Data: payload}

	select {
	case h.broadcast <- event:
	case <-h.ctx.Done():
	default:
		h.logger.Println("broadcast channel full, dropping event")
	}
}

// ClientCount returns the current number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Printf("failed to marshal event: %v", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					h.logger.Printf("failed to send to client: %v", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Printf("client connected (total: %d)", count)

	go h.readLoop(conn)
}

// readLoop keeps the connection alive and notices disconnects. Client
// messages are not processed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		count := len(h.clients)
		h.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Printf("client disconnected (total: %d)", count)
		return
	}
	h.clientsMu.Unlock()
}
