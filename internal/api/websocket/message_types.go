package websocket

import (
	"time"
)

// Message is the base message structure
// Data field uses 'any' to allow different types through channels
type Message struct {
	Type      MessageType `json:"type"`
	DiagramID uint        `json:"diagramId,omitempty"`
	UserID    uint        `json:"userId"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Topology mutations, processed sequentially per room
	MessageTypeNodeAdd          MessageType = "node_add"
	MessageTypeNodeRemove       MessageType = "node_remove"
	MessageTypeConnectionCreate MessageType = "connection_create"
	MessageTypeConnectionRemove MessageType = "connection_remove"
	MessageTypeTopologyReset    MessageType = "topology_reset"
	MessageTypeTopologyLoad     MessageType = "topology_load"
	MessageTypeTopologySave     MessageType = "topology_save"

	// Full-document sync for late joiners, answered to the requester only
	MessageTypeTopologySync MessageType = "topology_sync"

	// User interactions
	MessageTypeCursorMove MessageType = "cursor_move"
	MessageTypeChat       MessageType = "chat"
	MessageTypeUserJoin   MessageType = "user_join"
	MessageTypeUserLeave  MessageType = "user_leave"

	// System messages
	MessageTypeError MessageType = "error"
	MessageTypePing  MessageType = "ping"
	MessageTypePong  MessageType = "pong"
)
