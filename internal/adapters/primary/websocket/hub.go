package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// Hub maintains the set of active Clients and routes events to the
// connections of the console they belong to.
type Hub struct {
	// clients maps console IDs to their active connections.
	// A console can be open in several tabs.
	clients map[string]map[*Client]bool

	// Broadcast channel for events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	// mu protects the clients map
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventPublisher interface.
var _ ports.EventPublisher = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Publish queues an event for the connections of event.ConsoleID. Events
// are dropped when the queue is full.
func (h *Hub) Publish(_ context.Context, event domain.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"console_id", event.ConsoleID,
		)
	}
}

// ForConsole returns a notifier and publisher that stamp every event with
// the console ID.
func (h *Hub) ForConsole(consoleID string) *ConsoleChannel {
	return &ConsoleChannel{hub: h, consoleID: consoleID}
}

// Run starts the hub's event loop until ctx is done, then closes every
// connection. This MUST be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.ConsoleID] == nil {
		h.clients[client.ConsoleID] = make(map[*Client]bool)
	}
	h.clients[client.ConsoleID][client] = true

	h.logger.Info("client registered",
		"console_id", client.ConsoleID,
		"total_connections", len(h.clients[client.ConsoleID]),
	)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if consoleClients, ok := h.clients[client.ConsoleID]; ok {
		if _, exists := consoleClients[client]; exists {
			delete(consoleClients, client)
			if len(consoleClients) == 0 {
				delete(h.clients, client.ConsoleID)
			}
		}
	}

	// Safely close the send channel
	client.CloseSend()

	h.logger.Info("client unregistered",
		"console_id", client.ConsoleID,
	)
}

// broadcastEvent sends an event to every connection of its console
func (h *Hub) broadcastEvent(event domain.Event) {
	h.mu.RLock()
	consoleClients, ok := h.clients[event.ConsoleID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(consoleClients))
	for client := range consoleClients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if event.Type != domain.EventRecordingTick {
		h.logger.Debug("broadcasting event",
			"event_type", event.Type,
			"console_id", event.ConsoleID,
			"client_count", len(clients),
		)
	}

	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// Client's send buffer is full, drop the connection
			h.logger.Warn("client send buffer full, unregistering",
				"console_id", client.ConsoleID,
			)
			h.unregisterClient(client)
		}
	}
}

// DisconnectConsole closes every connection of a console, used when the
// console is evicted.
func (h *Hub) DisconnectConsole(consoleID string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[consoleID]))
	for client := range h.clients[consoleID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case h.Unregister <- client:
		case <-h.done:
			return
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for consoleID, consoleClients := range h.clients {
		for client := range consoleClients {
			client.CloseSend()
		}
		delete(h.clients, consoleID)
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, consoleClients := range h.clients {
		count += len(consoleClients)
	}
	return count
}

// IsConsoleConnected checks if a console has any active connections
func (h *Hub) IsConsoleConnected(consoleID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[consoleID]
	return ok && len(clients) > 0
}

// ConsoleChannel is the push channel of a single console.
type ConsoleChannel struct {
	hub       *Hub
	consoleID string
}

var (
	_ ports.Notifier       = (*ConsoleChannel)(nil)
	_ ports.EventPublisher = (*ConsoleChannel)(nil)
)

// Notify pushes a notification event.
func (c *ConsoleChannel) Notify(ctx context.Context, n domain.Notification) {
	c.hub.Publish(ctx, domain.Event{
		Type:      domain.EventNotification,
		Payload:   n,
		ConsoleID: c.consoleID,
	})
}

// Publish pushes an event to this console regardless of its ConsoleID.
func (c *ConsoleChannel) Publish(ctx context.Context, event domain.Event) {
	event.ConsoleID = c.consoleID
	c.hub.Publish(ctx, event)
}
