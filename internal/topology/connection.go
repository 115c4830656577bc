package topology

import "time"

// ConnectionEnd identifies one side of a wire: a node plus the interface
// name on that node. Which side is "source" only matters for display.
type ConnectionEnd struct {
	ID            string `json:"id"`
	Interface     string `json:"interface"`
	InterfaceType string `json:"interfaceType,omitempty"`
}

// Connection is a wire between two endpoints on two different nodes.
type Connection struct {
	ID         string        `json:"id"`
	SourceNode ConnectionEnd `json:"sourceNode"`
	TargetNode ConnectionEnd `json:"targetNode"`
	Style      Properties    `json:"connectionStyle,omitempty"`
	Properties Properties    `json:"properties,omitempty"`
	CreatedAt  time.Time     `json:"timestamp"`
}

// Key returns the canonical identity of the wiring, independent of which
// side was called source at creation time.
func (c *Connection) Key() string {
	return ConnectionKey(c.SourceNode.ID, c.TargetNode.ID, c.SourceNode.Interface, c.TargetNode.Interface)
}

// References reports whether the connection touches the given node.
func (c *Connection) References(nodeID string) bool {
	return c.SourceNode.ID == nodeID || c.TargetNode.ID == nodeID
}

// Clone returns a deep copy of the connection.
func (c *Connection) Clone() *Connection {
	cp := *c
	if c.Style != nil {
		cp.Style = make(Properties, len(c.Style))
		for k, v := range c.Style {
			cp.Style[k] = v
		}
	}
	if c.Properties != nil {
		cp.Properties = make(Properties, len(c.Properties))
		for k, v := range c.Properties {
			cp.Properties[k] = v
		}
	}
	return &cp
}

// EndpointRef is the caller-supplied reference to an endpoint when
// attempting a connection. Type and InterfaceType are optional hints;
// the validator resolves the effective family through its fallback chain.
type EndpointRef struct {
	NodeID        string `json:"nodeId"`
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	InterfaceType string `json:"interfaceType,omitempty"`
}
