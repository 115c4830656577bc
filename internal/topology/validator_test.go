package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Reason
}

func TestValidator_MissingNodeID(t *testing.T) {
	v := NewValidator(NewStore())

	err := v.CanConnect(
		EndpointRef{Name: "Gig0/0", Type: "ethernet"},
		EndpointRef{NodeID: "node-b", Name: "Gig0/0", Type: "ethernet"},
	)
	assert.ErrorIs(t, err, ErrMissingNodeID)
	assert.False(t, IsRejection(err))
}

func TestValidator_EndpointInUse(t *testing.T) {
	store := NewStore()
	store.PutNode(&Node{ID: "node-a", Name: "A", Type: "router", Endpoints: []Endpoint{{Name: "eth0", Type: "ethernet", NodeID: "node-a"}}})
	store.PutNode(&Node{ID: "node-b", Name: "B", Type: "router", Endpoints: []Endpoint{{Name: "eth0", Type: "ethernet", NodeID: "node-b"}}})
	store.PutNode(&Node{ID: "node-c", Name: "C", Type: "router", Endpoints: []Endpoint{{Name: "eth0", Type: "ethernet", NodeID: "node-c"}}})
	store.PutConnection(&Connection{
		ID:         ConnectionKey("node-a", "node-b", "eth0", "eth0"),
		SourceNode: ConnectionEnd{ID: "node-a", Interface: "eth0"},
		TargetNode: ConnectionEnd{ID: "node-b", Interface: "eth0"},
	})
	v := NewValidator(store)

	err := v.CanConnect(
		EndpointRef{NodeID: "node-a", Name: "eth0", Type: "ethernet"},
		EndpointRef{NodeID: "node-c", Name: "eth0", Type: "ethernet"},
	)
	assert.Equal(t, ReasonEndpointInUse, reasonOf(t, err))
}

func TestValidator_SelfConnection(t *testing.T) {
	store := NewStore()
	store.PutNode(&Node{ID: "node-a", Name: "A", Type: "router", Endpoints: []Endpoint{
		{Name: "eth0", Type: "ethernet", NodeID: "node-a"},
		{Name: "eth1", Type: "ethernet", NodeID: "node-a"},
	}})
	v := NewValidator(store)

	err := v.CanConnect(
		EndpointRef{NodeID: "node-a", Name: "eth0", Type: "ethernet"},
		EndpointRef{NodeID: "node-a", Name: "eth1", Type: "ethernet"},
	)
	assert.Equal(t, ReasonSelfConnection, reasonOf(t, err))
}

func TestValidator_IncompatibleTypes(t *testing.T) {
	v := NewValidator(NewStore())

	// Regardless of which side is source.
	err := v.CanConnect(
		EndpointRef{NodeID: "node-a", Name: "Serial0/0", Type: "serial"},
		EndpointRef{NodeID: "node-b", Name: "Gig0/0", Type: "ethernet"},
	)
	assert.Equal(t, ReasonIncompatibleTypes, reasonOf(t, err))

	err = v.CanConnect(
		EndpointRef{NodeID: "node-a", Name: "Gig0/0", Type: "ethernet"},
		EndpointRef{NodeID: "node-b", Name: "Serial0/0", Type: "serial"},
	)
	assert.Equal(t, ReasonIncompatibleTypes, reasonOf(t, err))
}

func TestValidator_UnknownType(t *testing.T) {
	v := NewValidator(NewStore())

	err := v.CanConnect(
		EndpointRef{NodeID: "node-a", Name: "Gig0/0"},
		EndpointRef{NodeID: "node-b", Name: "GigabitEthernet0/0"},
	)
	assert.Equal(t, ReasonUnknownType, reasonOf(t, err))
}

func TestValidator_Accepts(t *testing.T) {
	v := NewValidator(NewStore())

	err := v.CanConnect(
		EndpointRef{NodeID: "node-a", Name: "Gig0/0", Type: "ethernet"},
		EndpointRef{NodeID: "node-b", Name: "Gig0/0", Type: "ethernet"},
	)
	assert.NoError(t, err)
}

// Same inputs against unchanged state must keep yielding the same verdict.
func TestValidator_IsIdempotent(t *testing.T) {
	store := NewStore()
	store.PutConnection(&Connection{
		ID:         ConnectionKey("node-a", "node-b", "eth0", "eth0"),
		SourceNode: ConnectionEnd{ID: "node-a", Interface: "eth0"},
		TargetNode: ConnectionEnd{ID: "node-b", Interface: "eth0"},
	})
	v := NewValidator(store)

	src := EndpointRef{NodeID: "node-a", Name: "eth0", Type: "ethernet"}
	dst := EndpointRef{NodeID: "node-c", Name: "eth0", Type: "ethernet"}

	first := v.CanConnect(src, dst)
	second := v.CanConnect(src, dst)
	require.Error(t, first)
	require.Error(t, second)
	assert.Equal(t, reasonOf(t, first), reasonOf(t, second))
}

// ============ Type resolution fallback chain ============

func TestValidator_ResolveType_Precedence(t *testing.T) {
	store := NewStore()
	store.PutNode(&Node{
		ID:   "node-a",
		Name: "A",
		Type: "router",
		Endpoints: []Endpoint{
			{Name: "Gig0/0", Type: "serial", NodeID: "node-a"},
		},
		Interfaces: []Interface{
			{Name: "Gig0/0", Type: "ethernet"},
			{Name: "S0/0", Type: "serial"},
		},
	})
	v := NewValidator(store)

	tests := []struct {
		name string
		ref  EndpointRef
		want InterfaceType
		ok   bool
	}{
		{
			name: "explicit type field wins over everything",
			ref:  EndpointRef{NodeID: "node-a", Name: "Gig0/0", Type: "ethernet", InterfaceType: "serial"},
			want: InterfaceEthernet,
			ok:   true,
		},
		{
			name: "interfaceType field beats name inference",
			ref:  EndpointRef{NodeID: "node-a", Name: "GigabitEthernet0/0", InterfaceType: "serial"},
			want: InterfaceSerial,
			ok:   true,
		},
		{
			name: "name substring inference",
			ref:  EndpointRef{NodeID: "node-a", Name: "FastEthernet0/1"},
			want: InterfaceEthernet,
			ok:   true,
		},
		{
			name: "serial name substring inference",
			ref:  EndpointRef{NodeID: "node-b", Name: "Serial0/1"},
			want: InterfaceSerial,
			ok:   true,
		},
		{
			name: "falls back to the owning endpoint's stored type",
			ref:  EndpointRef{NodeID: "node-a", Name: "Gig0/0"},
			want: InterfaceSerial,
			ok:   true,
		},
		{
			name: "falls back to the declared template interface",
			ref:  EndpointRef{NodeID: "node-a", Name: "S0/0"},
			want: InterfaceSerial,
			ok:   true,
		},
		{
			name: "undeterminable",
			ref:  EndpointRef{NodeID: "node-a", Name: "Console"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.ResolveType(tt.ref)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw  string
		want InterfaceType
		ok   bool
	}{
		{"ethernet", InterfaceEthernet, true},
		{"Ethernet", InterfaceEthernet, true},
		{"eth", InterfaceEthernet, true},
		{"GigabitEthernet0/0", InterfaceEthernet, true},
		{"serial", InterfaceSerial, true},
		{"Serial0/0", InterfaceSerial, true},
		{"", "", false},
		{"console", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeType(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}
