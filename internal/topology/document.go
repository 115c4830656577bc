package topology

import "errors"

// DocumentVersion is the serialization format version.
const DocumentVersion = "1.0"

// UIState travels with the document for the renderer's convenience. The
// core never interprets it.
type UIState struct {
	Theme       string   `json:"theme,omitempty"`
	ZoomLevel   float64  `json:"zoomLevel,omitempty"`
	PanPosition Position `json:"panPosition"`
}

// Document is the versioned, lossless serialization of a topology.
type Document struct {
	Version     string                 `json:"version"`
	Timestamp   string                 `json:"timestamp"`
	Nodes       map[string]*Node       `json:"nodes"`
	Connections map[string]*Connection `json:"connections"`
	UIState     *UIState               `json:"uiState,omitempty"`
}

// ErrMalformedDocument rejects documents missing the nodes or connections
// maps entirely. Loading such a document leaves the current topology
// untouched.
var ErrMalformedDocument = errors.New("topology document is missing nodes or connections")

// Serialize snapshots the current topology into a document. Nodes and
// connections are deep-copied so the document never aliases live state.
func (m *Manager) Serialize() *Document {
	doc := &Document{
		Version:     DocumentVersion,
		Timestamp:   m.now().UTC().Format(timestampLayout),
		Nodes:       make(map[string]*Node),
		Connections: make(map[string]*Connection),
		UIState:     m.uiState,
	}
	for _, n := range m.store.Nodes() {
		cp := n.Clone()
		if cp.Size == (Size{}) {
			cp.Size = DefaultSize
		}
		doc.Nodes[cp.ID] = cp
	}
	for _, c := range m.store.Connections() {
		doc.Connections[c.ID] = c.Clone()
	}
	return doc
}

// Deserialize replaces the current topology with the document's contents.
// A document without nodes or connections maps is rejected outright and the
// current topology is left as it was. Connections referencing nodes that
// are not part of the document are skipped with a warning rather than
// failing the whole load, which tolerates partially corrupt files. Emits a
// single topologyLoaded on success.
func (m *Manager) Deserialize(doc *Document) error {
	if doc == nil || doc.Nodes == nil || doc.Connections == nil {
		return ErrMalformedDocument
	}

	m.store.Reset()
	m.uiState = doc.UIState

	for id, n := range doc.Nodes {
		node := n.Clone()
		if node.ID == "" {
			node.ID = id
		}
		if node.Size == (Size{}) {
			node.Size = DefaultSize
		}
		if node.Endpoints == nil {
			node.Endpoints = []Endpoint{}
		}
		for i := range node.Endpoints {
			node.Endpoints[i].NodeID = node.ID
		}
		m.store.PutNode(node)
	}

	skipped := 0
	for id, c := range doc.Connections {
		conn := c.Clone()
		if conn.ID == "" {
			conn.ID = id
		}
		if _, ok := m.store.Node(conn.SourceNode.ID); !ok {
			m.logger.Warn().
				Str("connectionId", conn.ID).
				Str("nodeId", conn.SourceNode.ID).
				Msg("Skipping connection: source node not in document")
			skipped++
			continue
		}
		if _, ok := m.store.Node(conn.TargetNode.ID); !ok {
			m.logger.Warn().
				Str("connectionId", conn.ID).
				Str("nodeId", conn.TargetNode.ID).
				Msg("Skipping connection: target node not in document")
			skipped++
			continue
		}
		m.store.PutConnection(conn)
	}

	m.logger.Info().
		Int("nodes", m.store.NodeCount()).
		Int("connections", m.store.ConnectionCount()).
		Int("skipped", skipped).
		Msg("Topology loaded")
	m.bus.publish(Event{Topic: TopicTopologyLoaded, At: m.now()})
	return nil
}

// timestampLayout is ISO-8601 with milliseconds, matching what the browser
// editor writes.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"
