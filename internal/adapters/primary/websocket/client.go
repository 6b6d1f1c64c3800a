package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lorrc/voice2ticket/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Most events written per wakeup of the write pump.
	maxBatch = 64
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.Event

	// Console this connection renders.
	ConsoleID string

	// closeOnce ensures the Send channel is only closed once
	closeOnce sync.Once

	// logger for this client
	logger *slog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, consoleID string, logger *slog.Logger) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan domain.Event, 256),
		ConsoleID: consoleID,
		logger:    logger.With("console_id", consoleID),
	}
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			closed := !ok
			if ok {
				var batch []domain.Event
				batch, closed = c.pending(event)
				for _, queued := range coalesce(batch) {
					if err := c.writeJSON(queued); err != nil {
						c.logger.Error("failed to write message", "error", err, "type", string(queued.Type))
						return
					}
				}
			}

			if closed {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// pending returns first followed by the events already queued, without
// waiting for more. closed reports that the hub closed Send meanwhile.
func (c *Client) pending(first domain.Event) (events []domain.Event, closed bool) {
	events = []domain.Event{first}
	for len(events) < maxBatch {
		select {
		case event, ok := <-c.Send:
			if !ok {
				return events, true
			}
			events = append(events, event)
		default:
			return events, false
		}
	}
	return events, false
}

// coalesce drops state snapshots and recording ticks that a later event of
// the same type replaces. Notifications and pongs are all kept, in order.
func coalesce(events []domain.Event) []domain.Event {
	latest := make(map[domain.EventType]int, 2)
	for i, event := range events {
		if replaceable(event.Type) {
			latest[event.Type] = i
		}
	}

	kept := make([]domain.Event, 0, len(events))
	for i, event := range events {
		if replaceable(event.Type) && latest[event.Type] != i {
			continue
		}
		kept = append(kept, event)
	}
	return kept
}

func replaceable(eventType domain.EventType) bool {
	return eventType == domain.EventStateChanged || eventType == domain.EventRecordingTick
}

// ClientMessageType names what a browser may send over the socket.
type ClientMessageType string

const (
	MessagePing ClientMessageType = "PING"
)

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type ClientMessageType `json:"type"`
}

// handleIncomingMessage processes messages received from the client. The
// socket is push-only; actions go through the REST routes.
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case MessagePing:
		c.sendPong()
	default:
		c.logger.Debug("received unknown message type", "type", string(msg.Type))
	}
}

func (c *Client) sendPong() {
	defer func() {
		// Send may already be closed by the hub
		_ = recover()
	}()
	select {
	case c.Send <- domain.Event{Type: domain.EventPong, ConsoleID: c.ConsoleID}:
	default:
		c.logger.Debug("send buffer full, pong dropped")
	}
}
