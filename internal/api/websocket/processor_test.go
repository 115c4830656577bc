package websocket

import (
	"testing"

	"netmap/internal/topology"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The processor only touches its services for template and diagram
// messages, so node/connection flows can be tested against the in-memory
// core alone.
func newTestProcessor() (*MessageProcessor, *topology.Manager) {
	logger := zerolog.Nop()
	return NewMessageProcessor(nil, nil, logger), topology.NewManager(logger)
}

func mutation(msgType MessageType, data any) *Message {
	return &Message{
		Type:      msgType,
		DiagramID: 1,
		UserID:    42,
		Username:  "alice",
		Data:      data,
	}
}

func addNode(t *testing.T, p *MessageProcessor, mgr *topology.Manager, name string) *topology.Node {
	msg := mutation(MessageTypeNodeAdd, NodeAdd{
		NodeSpec: topology.NodeSpec{
			Type: "router",
			Name: name,
			Endpoints: []topology.Endpoint{
				{Name: "Gig0/0", Type: "ethernet"},
				{Name: "Gig0/1", Type: "ethernet"},
			},
		},
	})

	out, err := p.Process(mgr, msg)
	require.NoError(t, err)

	node, ok := out.Data.(*topology.Node)
	require.True(t, ok, "node_add should broadcast the created node")
	return node
}

func TestProcessor_NodeAdd(t *testing.T) {
	p, mgr := newTestProcessor()

	node := addNode(t, p, mgr, "R1")

	assert.NotEmpty(t, node.ID)
	assert.Equal(t, "R1", node.Name)
	assert.Len(t, node.Endpoints, 2)

	_, found := mgr.Node(node.ID)
	assert.True(t, found)
}

func TestProcessor_NodeAdd_InvalidSpec(t *testing.T) {
	p, mgr := newTestProcessor()

	msg := mutation(MessageTypeNodeAdd, NodeAdd{
		NodeSpec: topology.NodeSpec{Type: "router"},
	})

	_, err := p.Process(mgr, msg)
	require.ErrorIs(t, err, topology.ErrMissingName)
	assert.Empty(t, mgr.Nodes())
}

func TestProcessor_ConnectionCreate(t *testing.T) {
	p, mgr := newTestProcessor()

	r1 := addNode(t, p, mgr, "R1")
	r2 := addNode(t, p, mgr, "R2")

	msg := mutation(MessageTypeConnectionCreate, ConnectionCreate{
		Source: topology.EndpointRef{NodeID: r1.ID, Name: "Gig0/0"},
		Target: topology.EndpointRef{NodeID: r2.ID, Name: "Gig0/0"},
	})

	out, err := p.Process(mgr, msg)
	require.NoError(t, err)

	conn, ok := out.Data.(*topology.Connection)
	require.True(t, ok, "connection_create should broadcast the created connection")
	assert.Equal(t, r1.ID, conn.SourceNode.ID)
	assert.Equal(t, r2.ID, conn.TargetNode.ID)
}

func TestProcessor_ConnectionCreate_RejectionSurfacesReason(t *testing.T) {
	p, mgr := newTestProcessor()

	r1 := addNode(t, p, mgr, "R1")

	msg := mutation(MessageTypeConnectionCreate, ConnectionCreate{
		Source: topology.EndpointRef{NodeID: r1.ID, Name: "Gig0/0"},
		Target: topology.EndpointRef{NodeID: r1.ID, Name: "Gig0/1"},
	})

	_, err := p.Process(mgr, msg)
	require.Error(t, err)
	require.True(t, topology.IsRejection(err), "self-connection should be a rule violation, not a fault")
	assert.Empty(t, mgr.Connections())
}

func TestProcessor_NodeRemove(t *testing.T) {
	p, mgr := newTestProcessor()

	node := addNode(t, p, mgr, "R1")

	out, err := p.Process(mgr, mutation(MessageTypeNodeRemove, NodeRemove{NodeID: node.ID}))
	require.NoError(t, err)
	assert.NotNil(t, out.Data)
	assert.Empty(t, mgr.Nodes())

	_, err = p.Process(mgr, mutation(MessageTypeNodeRemove, NodeRemove{NodeID: node.ID}))
	require.Error(t, err, "removing a missing node should fail")
}

func TestProcessor_TopologyReset(t *testing.T) {
	p, mgr := newTestProcessor()

	addNode(t, p, mgr, "R1")
	addNode(t, p, mgr, "R2")

	out, err := p.Process(mgr, mutation(MessageTypeTopologyReset, nil))
	require.NoError(t, err)

	stats, ok := out.Data.(topology.Statistics)
	require.True(t, ok, "topology_reset should broadcast fresh statistics")
	assert.Equal(t, 0, stats.TotalNodes)
	assert.Empty(t, mgr.Nodes())
}

func TestProcessor_TopologySync(t *testing.T) {
	p, mgr := newTestProcessor()

	addNode(t, p, mgr, "R1")

	out, err := p.Process(mgr, mutation(MessageTypeTopologySync, nil))
	require.NoError(t, err)

	doc, ok := out.Data.(*topology.Document)
	require.True(t, ok, "topology_sync should answer with the full document")
	assert.Len(t, doc.Nodes, 1)
}

func TestProcessor_PassesThroughPresenceMessages(t *testing.T) {
	p, mgr := newTestProcessor()

	msg := mutation(MessageTypeChat, map[string]any{"text": "hello"})
	out, err := p.Process(mgr, msg)
	require.NoError(t, err)
	assert.Equal(t, msg, out)
}
