package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTopology(t *testing.T) *Manager {
	t.Helper()
	m := newTestManager()
	r1 := addRouter(t, m, "R1", Endpoint{Name: "Gig0/0", Type: "ethernet"}, Endpoint{Name: "Serial0/0", Type: "serial"})
	r2 := addRouter(t, m, "R2", Endpoint{Name: "Gig0/0", Type: "ethernet"})
	_, err := m.CreateConnection(ethernetRef(r1, "Gig0/0"), ethernetRef(r2, "Gig0/0"))
	require.NoError(t, err)
	m.SetUIState(&UIState{Theme: "dark", ZoomLevel: 1.25, PanPosition: Position{X: -40, Y: 12}})
	return m
}

func TestSerialize_ProducesVersionedDocument(t *testing.T) {
	m := buildSampleTopology(t)

	doc := m.Serialize()
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.NotEmpty(t, doc.Timestamp)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Connections, 1)
	require.NotNil(t, doc.UIState)
	assert.Equal(t, "dark", doc.UIState.Theme)

	for _, n := range doc.Nodes {
		assert.Equal(t, DefaultSize, n.Size)
	}
}

func TestSerialize_DoesNotAliasLiveState(t *testing.T) {
	m := buildSampleTopology(t)

	doc := m.Serialize()
	for _, n := range doc.Nodes {
		n.Name = "mutated"
		n.Endpoints[0].Name = "mutated"
	}

	for _, n := range m.Nodes() {
		assert.NotEqual(t, "mutated", n.Name)
		assert.NotEqual(t, "mutated", n.Endpoints[0].Name)
	}
}

func TestRoundTrip(t *testing.T) {
	m := buildSampleTopology(t)
	doc := m.Serialize()

	// Through JSON, the way the persistence gateway stores it.
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded Document
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored := newTestManager()
	require.NoError(t, restored.Deserialize(&decoded))

	assert.Equal(t, m.Statistics(), restored.Statistics())

	for _, want := range m.Nodes() {
		got, ok := restored.Node(want.ID)
		require.True(t, ok, "node %s missing after round-trip", want.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.Position, got.Position)
		assert.Equal(t, want.Endpoints, got.Endpoints)
	}
	for _, want := range m.Connections() {
		got, ok := restored.Connection(want.ID)
		require.True(t, ok, "connection %s missing after round-trip", want.ID)
		assert.Equal(t, want.SourceNode, got.SourceNode)
		assert.Equal(t, want.TargetNode, got.TargetNode)
	}
	require.NotNil(t, restored.UIState())
	assert.Equal(t, 1.25, restored.UIState().ZoomLevel)
}

func TestDeserialize_RejectsMalformedDocument(t *testing.T) {
	m := buildSampleTopology(t)
	before := m.Statistics()

	err := m.Deserialize(&Document{Version: DocumentVersion})
	assert.ErrorIs(t, err, ErrMalformedDocument)

	err = m.Deserialize(&Document{Nodes: map[string]*Node{}})
	assert.ErrorIs(t, err, ErrMalformedDocument)

	err = m.Deserialize(nil)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	// Current topology untouched.
	assert.Equal(t, before, m.Statistics())
}

func TestDeserialize_SkipsDanglingConnections(t *testing.T) {
	source := buildSampleTopology(t)
	doc := source.Serialize()

	// Corrupt the document: add a connection to a node that is not there.
	doc.Connections["connection:ghost"] = &Connection{
		ID:         "connection:ghost",
		SourceNode: ConnectionEnd{ID: "node-ghost", Interface: "eth0"},
		TargetNode: ConnectionEnd{ID: "node-ghost-2", Interface: "eth0"},
	}

	m := newTestManager()
	require.NoError(t, m.Deserialize(doc))

	stats := m.Statistics()
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, 1, stats.TotalConnections)
	_, ok := m.Connection("connection:ghost")
	assert.False(t, ok)
}

func TestDeserialize_EmitsSingleTopologyLoaded(t *testing.T) {
	source := buildSampleTopology(t)
	doc := source.Serialize()

	m := newTestManager()
	var topics []Topic
	for _, topic := range []Topic{TopicNodeAdded, TopicConnectionAdded, TopicTopologyLoaded, TopicTopologyReset} {
		m.Events().Subscribe(topic, func(evt Event) { topics = append(topics, evt.Topic) })
	}

	require.NoError(t, m.Deserialize(doc))
	assert.Equal(t, []Topic{TopicTopologyLoaded}, topics)
}

func TestDeserialize_LoadedEndpointsAreWireable(t *testing.T) {
	source := buildSampleTopology(t)
	doc := source.Serialize()

	m := newTestManager()
	require.NoError(t, m.Deserialize(doc))

	// The loaded connection occupies its endpoints.
	var r1, r2 *Node
	for _, n := range m.Nodes() {
		if n.Name == "R1" {
			r1 = n
		} else {
			r2 = n
		}
	}
	require.NotNil(t, r1)
	require.NotNil(t, r2)

	_, err := m.CreateConnection(ethernetRef(r1, "Gig0/0"), ethernetRef(r2, "Gig0/0"))
	assert.Equal(t, ReasonEndpointInUse, reasonOf(t, err))
}
