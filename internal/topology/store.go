package topology

// Store holds the canonical in-memory topology. It performs no validation
// of its own: the Manager is the only caller and validates before writing.
type Store struct {
	nodes       map[string]*Node
	connections map[string]*Connection

	// endpoint key -> connection id, for O(1) endpoint-in-use checks.
	byEndpoint map[string]string

	// canonical connection key -> connection id. Loaded documents may use
	// an id scheme other than the canonical key, so duplicates are tracked
	// by key rather than by id.
	byKey map[string]string
}

func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// PutNode inserts or replaces a node.
func (s *Store) PutNode(n *Node) {
	s.nodes[n.ID] = n
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// DeleteNode removes a node and every connection referencing it, returning
// the removed node and the cascaded connections. Returns nil when the node
// does not exist; nothing is touched in that case.
func (s *Store) DeleteNode(id string) (*Node, []*Connection) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	removed := s.ConnectionsForNode(id)
	for _, c := range removed {
		s.dropConnection(c)
	}
	delete(s.nodes, id)
	return n, removed
}

// PutConnection inserts a connection and marks both endpoints as in use.
func (s *Store) PutConnection(c *Connection) {
	s.connections[c.ID] = c
	s.byEndpoint[endpointKey(c.SourceNode.ID, c.SourceNode.Interface)] = c.ID
	s.byEndpoint[endpointKey(c.TargetNode.ID, c.TargetNode.Interface)] = c.ID
	s.byKey[c.Key()] = c.ID
}

// Connection returns the connection with the given id.
func (s *Store) Connection(id string) (*Connection, bool) {
	c, ok := s.connections[id]
	return c, ok
}

// DeleteConnection removes a connection, freeing both endpoints.
func (s *Store) DeleteConnection(id string) (*Connection, bool) {
	c, ok := s.connections[id]
	if !ok {
		return nil, false
	}
	s.dropConnection(c)
	return c, true
}

func (s *Store) dropConnection(c *Connection) {
	delete(s.connections, c.ID)
	delete(s.byEndpoint, endpointKey(c.SourceNode.ID, c.SourceNode.Interface))
	delete(s.byEndpoint, endpointKey(c.TargetNode.ID, c.TargetNode.Interface))
	delete(s.byKey, c.Key())
}

// HasConnectionKey reports whether a connection with the given canonical
// key already exists.
func (s *Store) HasConnectionKey(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// EndpointInUse reports whether the (node, interface) pair is already
// wired into an existing connection.
func (s *Store) EndpointInUse(nodeID, iface string) bool {
	_, ok := s.byEndpoint[endpointKey(nodeID, iface)]
	return ok
}

// ConnectionsForNode returns every connection touching the given node.
func (s *Store) ConnectionsForNode(nodeID string) []*Connection {
	var out []*Connection
	for _, c := range s.connections {
		if c.References(nodeID) {
			out = append(out, c)
		}
	}
	return out
}

// Nodes returns all nodes. Order is unspecified.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}

// Connections returns all connections. Order is unspecified.
func (s *Store) Connections() []*Connection {
	out := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		out = append(out, c)
	}
	return out
}

func (s *Store) NodeCount() int       { return len(s.nodes) }
func (s *Store) ConnectionCount() int { return len(s.connections) }

// Reset clears everything.
func (s *Store) Reset() {
	s.nodes = make(map[string]*Node)
	s.connections = make(map[string]*Connection)
	s.byEndpoint = make(map[string]string)
	s.byKey = make(map[string]string)
}
