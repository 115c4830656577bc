package websocket

import (
	errors2 "errors"
	"time"

	"netmap/internal/topology"
)

// NodeAdd creates a node on the canvas. When TemplateKey is set and no
// endpoints are given, the processor fills them in from the device
// catalogue before handing the spec to the topology manager.
type NodeAdd struct {
	topology.NodeSpec
	TemplateKey string `json:"templateKey,omitempty"`
}

// NodeRemove deletes a node and, transitively, its connections.
type NodeRemove struct {
	NodeID string `json:"nodeId"`
}

// ConnectionCreate wires two endpoints together.
type ConnectionCreate struct {
	Source topology.EndpointRef `json:"source"`
	Target topology.EndpointRef `json:"target"`
}

// ConnectionRemove deletes a single wire.
type ConnectionRemove struct {
	ConnectionID string `json:"connectionId"`
}

// DiagramRef names a stored diagram for load/save operations.
type DiagramRef struct {
	Name string `json:"name"`
}

// UserInfo represents user information in the room
type UserInfo struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Error         error  `json:"error"`
	Reason        string `json:"reason,omitempty"`
	CustomMessage string `json:"customMessage"`
}

// NewErrorMessage creates a new error message
func NewErrorMessage(diagramID uint, userID uint, username string, errorText string, errors ...error) Message {
	return Message{
		Type:      MessageTypeError,
		DiagramID: diagramID,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
		Data: ErrorMessage{
			Error:         errors2.Join(errors...),
			CustomMessage: errorText,
		},
	}
}

// NewRejectionMessage wraps a topology rule violation so the UI can show
// the reason as a toast.
func NewRejectionMessage(diagramID uint, userID uint, username string, ve *topology.ValidationError) Message {
	return Message{
		Type:      MessageTypeError,
		DiagramID: diagramID,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
		Data: ErrorMessage{
			Reason:        string(ve.Reason),
			CustomMessage: ve.Message,
		},
	}
}

// NewUserJoinMessage creates a new user join message
func NewUserJoinMessage(diagramID uint, userID uint, username string, userInfo UserInfo) Message {
	return Message{
		Type:      MessageTypeUserJoin,
		DiagramID: diagramID,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
		Data:      userInfo,
	}
}

// NewUserLeaveMessage creates a new user leave message
func NewUserLeaveMessage(diagramID uint, userID uint, username string, userInfo UserInfo) Message {
	return Message{
		Type:      MessageTypeUserLeave,
		DiagramID: diagramID,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
		Data:      userInfo,
	}
}
