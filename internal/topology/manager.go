package topology

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Statistics is the derived state shown by dashboard widgets.
type Statistics struct {
	TotalNodes       int `json:"totalNodes"`
	TotalConnections int `json:"totalConnections"`
	TotalEndpoints   int `json:"totalEndpoints"`
}

// NodeSpec is the caller's description of a node to create. ID and endpoint
// ids are assigned when absent; Name and Type are required.
type NodeSpec struct {
	ID         string      `json:"id,omitempty"`
	Type       string      `json:"type"`
	Name       string      `json:"name"`
	Position   Position    `json:"position"`
	Size       Size        `json:"size"`
	Icon       string      `json:"icon,omitempty"`
	Endpoints  []Endpoint  `json:"endpoints,omitempty"`
	Properties Properties  `json:"properties,omitempty"`
	Interfaces []Interface `json:"interfaces,omitempty"`
}

var (
	// ErrMissingName, ErrMissingType and ErrDuplicateEndpoint are
	// caller-contract violations on node creation; a correct caller never
	// triggers them.
	ErrMissingName       = errors.New("node name is required")
	ErrMissingType       = errors.New("node type is required")
	ErrDuplicateEndpoint = errors.New("endpoint names must be unique within a node")
)

// Manager is the façade the rest of the application talks to. It owns the
// store, orchestrates validation, mutation, event emission and
// serialization. It assumes a single logical writer at a time: callers that
// span goroutines must funnel mutations through one worker.
type Manager struct {
	store     *Store
	validator *Validator
	bus       *Bus
	uiState   *UIState
	logger    zerolog.Logger
	now       func() time.Time
}

func NewManager(logger zerolog.Logger) *Manager {
	store := NewStore()
	return &Manager{
		store:     store,
		validator: NewValidator(store),
		bus:       NewBus(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Events exposes the change-notification bus for observers.
func (m *Manager) Events() *Bus {
	return m.bus
}

// AddNode validates the spec, assigns missing identifiers, inserts the node
// and emits nodeAdded.
func (m *Manager) AddNode(spec NodeSpec) (*Node, error) {
	if spec.Name == "" {
		return nil, ErrMissingName
	}
	if spec.Type == "" {
		return nil, ErrMissingType
	}
	names := make(map[string]struct{}, len(spec.Endpoints))
	for _, ep := range spec.Endpoints {
		if _, dup := names[ep.Name]; dup {
			return nil, ErrDuplicateEndpoint
		}
		names[ep.Name] = struct{}{}
	}

	// Endpoints and interfaces are copied: the store must not alias
	// caller-owned slices it is about to mutate.
	node := &Node{
		ID:         spec.ID,
		Type:       spec.Type,
		Name:       spec.Name,
		Position:   spec.Position,
		Size:       spec.Size,
		Icon:       spec.Icon,
		Endpoints:  append([]Endpoint(nil), spec.Endpoints...),
		Properties: spec.Properties,
		Interfaces: append([]Interface(nil), spec.Interfaces...),
	}
	if node.ID == "" {
		node.ID = NewNodeID()
	}
	if node.Size == (Size{}) {
		node.Size = DefaultSize
	}
	if node.Endpoints == nil {
		node.Endpoints = []Endpoint{}
	}
	for i := range node.Endpoints {
		ep := &node.Endpoints[i]
		if ep.ID == "" {
			ep.ID = NewEndpointID()
		}
		ep.NodeID = node.ID
		if ep.OriginalName == "" {
			ep.OriginalName = ep.Name
		}
	}

	m.store.PutNode(node)
	m.logger.Debug().
		Str("nodeId", node.ID).
		Str("name", node.Name).
		Str("type", node.Type).
		Msg("Node added")
	m.bus.publish(Event{Topic: TopicNodeAdded, Node: node, At: m.now()})
	return node, nil
}

// RemoveNode deletes a node and every connection referencing it, emitting
// connectionRemoved per cascaded connection and then nodeRemoved. Returns
// nil and leaves state unchanged when the node does not exist.
func (m *Manager) RemoveNode(nodeID string) *Node {
	node, cascaded := m.store.DeleteNode(nodeID)
	if node == nil {
		return nil
	}
	for _, c := range cascaded {
		m.logger.Debug().
			Str("connectionId", c.ID).
			Str("nodeId", nodeID).
			Msg("Connection removed with node")
		m.bus.publish(Event{Topic: TopicConnectionRemoved, Connection: c, At: m.now()})
	}
	m.logger.Debug().Str("nodeId", nodeID).Msg("Node removed")
	m.bus.publish(Event{Topic: TopicNodeRemoved, Node: node, At: m.now()})
	return node
}

// Node returns a node by id.
func (m *Manager) Node(id string) (*Node, bool) {
	return m.store.Node(id)
}

// Nodes returns all nodes.
func (m *Manager) Nodes() []*Node {
	return m.store.Nodes()
}

// Connection returns a connection by id.
func (m *Manager) Connection(id string) (*Connection, bool) {
	return m.store.Connection(id)
}

// Connections returns all connections.
func (m *Manager) Connections() []*Connection {
	return m.store.Connections()
}

// CanConnect runs the validator without mutating anything, for UI
// pre-flight checks while the user is dragging a wire.
func (m *Manager) CanConnect(src, dst EndpointRef) error {
	return m.validator.CanConnect(src, dst)
}

// CreateConnection validates and commits a new wire. A *ValidationError
// return is a user-correctable rejection and guarantees no mutation took
// place; the connection id is the canonical key of the endpoint pair.
func (m *Manager) CreateConnection(src, dst EndpointRef) (*Connection, error) {
	if err := m.validator.CanConnect(src, dst); err != nil {
		if IsRejection(err) {
			m.logger.Warn().
				Str("sourceNode", src.NodeID).
				Str("targetNode", dst.NodeID).
				Err(err).
				Msg("Connection rejected")
		}
		return nil, err
	}

	srcType, _ := m.validator.ResolveType(src)
	dstType, _ := m.validator.ResolveType(dst)

	conn := &Connection{
		ID: ConnectionKey(src.NodeID, dst.NodeID, src.Name, dst.Name),
		SourceNode: ConnectionEnd{
			ID:            src.NodeID,
			Interface:     src.Name,
			InterfaceType: string(srcType),
		},
		TargetNode: ConnectionEnd{
			ID:            dst.NodeID,
			Interface:     dst.Name,
			InterfaceType: string(dstType),
		},
		CreatedAt: m.now(),
	}

	m.store.PutConnection(conn)
	m.logger.Debug().
		Str("connectionId", conn.ID).
		Str("sourceNode", src.NodeID).
		Str("targetNode", dst.NodeID).
		Msg("Connection created")
	m.bus.publish(Event{Topic: TopicConnectionAdded, Connection: conn, At: m.now()})
	return conn, nil
}

// RemoveConnection deletes a connection and emits connectionRemoved.
// Returns nil when the connection does not exist.
func (m *Manager) RemoveConnection(connectionID string) *Connection {
	conn, ok := m.store.DeleteConnection(connectionID)
	if !ok {
		return nil
	}
	m.logger.Debug().Str("connectionId", connectionID).Msg("Connection removed")
	m.bus.publish(Event{Topic: TopicConnectionRemoved, Connection: conn, At: m.now()})
	return conn
}

// ResetTopology clears all nodes and connections, emitting a single
// topologyReset instead of per-item events.
func (m *Manager) ResetTopology() {
	m.store.Reset()
	m.uiState = nil
	m.logger.Debug().Msg("Topology reset")
	m.bus.publish(Event{Topic: TopicTopologyReset, At: m.now()})
}

// Statistics counts nodes, connections and endpoints.
func (m *Manager) Statistics() Statistics {
	stats := Statistics{
		TotalNodes:       m.store.NodeCount(),
		TotalConnections: m.store.ConnectionCount(),
	}
	for _, n := range m.store.Nodes() {
		stats.TotalEndpoints += len(n.Endpoints)
	}
	return stats
}

// UIState returns the pass-through UI state carried with the topology.
func (m *Manager) UIState() *UIState {
	return m.uiState
}

// SetUIState stores UI state for the next serialization. Opaque to the
// core's invariants.
func (m *Manager) SetUIState(state *UIState) {
	m.uiState = state
}
