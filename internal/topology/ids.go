package topology

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// NewNodeID returns a collision-resistant node identifier.
func NewNodeID() string {
	return "node-" + uuid.NewString()
}

// NewEndpointID returns a collision-resistant endpoint identifier.
func NewEndpointID() string {
	return "endpoint-" + uuid.NewString()
}

// ConnectionKey builds the canonical identity of a wire between two
// (node, interface) pairs. Node ids and interface names are each sorted
// lexicographically so a source→target attempt produces the same key as
// the reverse, which is what makes duplicate wiring detectable.
func ConnectionKey(aNode, bNode, aIface, bIface string) string {
	nodes := []string{aNode, bNode}
	sort.Strings(nodes)
	ifaces := []string{aIface, bIface}
	sort.Strings(ifaces)
	return fmt.Sprintf("connection:%s:%s:%s:%s", nodes[0], nodes[1], ifaces[0], ifaces[1])
}

// endpointKey indexes an endpoint inside the store's in-use table.
func endpointKey(nodeID, iface string) string {
	return nodeID + "/" + iface
}
