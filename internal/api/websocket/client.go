package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB
)

type Client struct {
	ID        string
	UserID    uint
	Username  string
	DiagramID uint
	Color     string
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan Message
	Logger    zerolog.Logger

	// Guards closed so Deliver never races the channel close: the room
	// worker may still hold this client for queued commands after the
	// connection is gone.
	mu     sync.Mutex
	closed bool
}

func NewClient(id string, userID uint, username string, diagramID uint, hub *Hub, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		ID:        id,
		UserID:    userID,
		Username:  username,
		DiagramID: diagramID,
		Color:     generateUserColor(userID),
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan Message, 256),
		Logger:    logger,
	}
}

// Deliver queues an outbound message, dropping it when the client's send
// buffer is full rather than blocking the caller. Messages delivered after
// Close are dropped silently.
func (c *Client) Deliver(message Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- message:
	default:
		c.Logger.Warn().
			Str("clientId", c.ID).
			Msg("Client send buffer full, message dropped")
	}
}

// Close shuts the outbound queue. Idempotent; once closed, Deliver becomes
// a no-op so workers still holding the client cannot hit a closed channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Error().Err(err).Str("clientId", c.ID).Msg("WebSocket read error")
			}
			break
		}

		var msg Message
		if err = json.Unmarshal(messageBytes, &msg); err != nil {
			c.Logger.Error().Err(err).Str("clientId", c.ID).Msg("Failed to unmarshal message")
			c.sendError("Invalid message format", err)
			continue
		}

		// Set metadata
		msg.UserID = c.UserID
		msg.Username = c.Username
		msg.DiagramID = c.DiagramID
		msg.Timestamp = time.Now()

		// Fast path: presence traffic that never touches the topology
		// (cursor, chat, etc.)
		if !c.requiresProcessing(msg.Type) {
			c.Hub.Broadcast <- msg
			continue
		}

		// Slow path: hand the mutation to the room's single worker so
		// topology changes apply in arrival order.
		if !c.Hub.Dispatch(c, msg) {
			c.Logger.Warn().
				Str("type", string(msg.Type)).
				Msg("Room queue full, dropping message")
			c.sendError("Server is busy, please try again")
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			messageBytes, err := json.Marshal(message)
			if err != nil {
				c.Logger.Error().Err(err).Msg("Failed to marshal message")
				continue
			}

			w.Write(messageBytes)

			// Add queued messages to the current websocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				msg := <-c.Send
				msgBytes, _ := json.Marshal(msg)
				w.Write(msgBytes)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(errorMsg string, errs ...error) {
	c.Deliver(NewErrorMessage(c.DiagramID, c.UserID, c.Username, errorMsg, errs...))
}

// requiresProcessing checks if a message type mutates or reads the
// room's topology
func (c *Client) requiresProcessing(msgType MessageType) bool {
	switch msgType {
	case MessageTypeNodeAdd, MessageTypeNodeRemove,
		MessageTypeConnectionCreate, MessageTypeConnectionRemove,
		MessageTypeTopologyReset, MessageTypeTopologyLoad,
		MessageTypeTopologySave, MessageTypeTopologySync:
		return true
	default:
		return false
	}
}

// generateUserColor generates a consistent color for a user based on their ID
func generateUserColor(userID uint) string {
	colors := []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
		"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
		"#F8B739", "#52B788", "#E76F51", "#2A9D8F",
	}
	return colors[userID%uint(len(colors))]
}
