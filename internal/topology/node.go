package topology

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the rendered footprint of a node on the canvas.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultSize is applied when a node is created or loaded without one.
var DefaultSize = Size{Width: 100, Height: 100}

// Properties is an opaque key/value bag attached to nodes and connections.
// The core passes it through unchanged.
type Properties map[string]any

// InterfaceType is a normalized interface family.
type InterfaceType string

const (
	InterfaceEthernet InterfaceType = "ethernet"
	InterfaceSerial   InterfaceType = "serial"
)

// Interface is a declared device-template interface, carried on the node
// so endpoint types can be resolved against the template when an endpoint
// itself does not name one.
type Interface struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Endpoint is a wiring point owned by exactly one node. An endpoint cannot
// outlive its node and participates in at most one connection at a time.
type Endpoint struct {
	ID           string `json:"id"`
	NodeID       string `json:"nodeId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	OriginalName string `json:"originalName,omitempty"`
}

// Node is a device on the canvas: routers, switches, servers and friends.
type Node struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Name       string      `json:"name"`
	Position   Position    `json:"position"`
	Size       Size        `json:"size"`
	Icon       string      `json:"icon,omitempty"`
	Endpoints  []Endpoint  `json:"endpoints"`
	Properties Properties  `json:"properties,omitempty"`
	Interfaces []Interface `json:"interfaces,omitempty"`
}

// Endpoint returns the node's endpoint with the given interface name.
func (n *Node) Endpoint(name string) (Endpoint, bool) {
	for _, ep := range n.Endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// DeclaredInterface returns the template interface with the given name.
func (n *Node) DeclaredInterface(name string) (Interface, bool) {
	for _, iface := range n.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return Interface{}, false
}

// Clone returns a deep copy so serialized documents never alias live state.
func (n *Node) Clone() *Node {
	cp := *n
	cp.Endpoints = make([]Endpoint, len(n.Endpoints))
	copy(cp.Endpoints, n.Endpoints)
	cp.Interfaces = make([]Interface, len(n.Interfaces))
	copy(cp.Interfaces, n.Interfaces)
	if n.Properties != nil {
		cp.Properties = make(Properties, len(n.Properties))
		for k, v := range n.Properties {
			cp.Properties[k] = v
		}
	}
	return &cp
}
