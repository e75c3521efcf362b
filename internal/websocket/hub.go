package websocket

import (
	"context"
	"log/slog"

	"lounge-chat/internal/observability"
)

// Hub maintains the set of connected observers and fans accepted messages
// out to all of them. There is a single room: every observer receives every
// event.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			observability.WebSocketConnectionsActive.Inc()
			slog.Info("observer connected",
				slog.String("remote_addr", client.remoteAddr))

		case client := <-h.unregister:
			h.unregisterClient(client)

		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
					observability.WebSocketMessagesSent.Inc()
				default:
					// Send buffer full, drop the slow observer.
					h.closeClientSend(client)
					delete(h.clients, client)
					observability.WebSocketConnectionsActive.Dec()
				}
			}
		}
	}
}

// unregisterClient safely removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.closeClientSend(client)
		observability.WebSocketConnectionsActive.Dec()
		slog.Info("observer disconnected",
			slog.String("remote_addr", client.remoteAddr))
	}
}

// closeClientSend safely closes a client's send channel
func (h *Hub) closeClientSend(client *Client) {
	select {
	case <-client.send:
		// Channel already closed
	default:
		close(client.send)
	}
}

// shutdown performs graceful cleanup of all connections
func (h *Hub) shutdown() {
	close(h.done)

	for client := range h.clients {
		h.closeClientSend(client)
		slog.Info("closed observer connection",
			slog.String("remote_addr", client.remoteAddr))
	}

	slog.Info("hub shutdown complete")
}

// Broadcast queues a payload for delivery to every connected observer.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// Register registers a client with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
