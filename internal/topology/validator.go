package topology

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifies a user-correctable rejection. The UI surfaces these as
// toasts; none of them indicate a defect in the calling code.
type Reason string

const (
	ReasonEndpointInUse     Reason = "endpoint_in_use"
	ReasonUnknownType       Reason = "unknown_type"
	ReasonSelfConnection    Reason = "self_connection"
	ReasonIncompatibleTypes Reason = "incompatible_types"
	ReasonDuplicate         Reason = "duplicate_connection"
)

// ValidationError is a rejected connection attempt. It is a business
// outcome, not a fault: callers check for it with errors.As and report the
// Reason to the user.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func rejected(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a user-correctable rule violation as
// opposed to a caller-contract fault.
func IsRejection(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrMissingNodeID is a caller-contract violation: connection attempts must
// always name the owning node of each endpoint.
var ErrMissingNodeID = errors.New("endpoint reference is missing a node id")

// compatibility maps each interface family to the families it may be wired
// to. Current policy is strictly intra-family.
var compatibility = map[InterfaceType]map[InterfaceType]bool{
	InterfaceEthernet: {InterfaceEthernet: true},
	InterfaceSerial:   {InterfaceSerial: true},
}

// typeResolver attempts to derive the normalized interface family of an
// endpoint reference. Resolvers are pure and run in a fixed precedence
// order; the first one that yields a family wins.
type typeResolver func(ref EndpointRef, node *Node) (InterfaceType, bool)

// typeResolvers is the ordered fallback chain: explicit type field, explicit
// interfaceType field, inference from the interface name, then the owning
// node's declared template interfaces. Downstream compatibility checks
// depend on this exact precedence.
var typeResolvers = []typeResolver{
	func(ref EndpointRef, _ *Node) (InterfaceType, bool) {
		return normalizeType(ref.Type)
	},
	func(ref EndpointRef, _ *Node) (InterfaceType, bool) {
		return normalizeType(ref.InterfaceType)
	},
	func(ref EndpointRef, _ *Node) (InterfaceType, bool) {
		return normalizeType(ref.Name)
	},
	func(ref EndpointRef, node *Node) (InterfaceType, bool) {
		if node == nil {
			return "", false
		}
		if ep, ok := node.Endpoint(ref.Name); ok {
			if t, ok := normalizeType(ep.Type); ok {
				return t, true
			}
		}
		if iface, ok := node.DeclaredInterface(ref.Name); ok {
			return normalizeType(iface.Type)
		}
		return "", false
	},
}

// normalizeType maps a raw type string or interface name to a family.
func normalizeType(raw string) (InterfaceType, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "ethernet") || s == "eth":
		return InterfaceEthernet, true
	case strings.Contains(s, "serial"):
		return InterfaceSerial, true
	default:
		return "", false
	}
}

// Validator decides whether a connection between two endpoints is
// permitted. It reads the store but never mutates it, so identical calls
// against identical topology state always return the same verdict.
type Validator struct {
	store *Store
}

func NewValidator(store *Store) *Validator {
	return &Validator{store: store}
}

// CanConnect runs the full rule chain for a proposed wire. A nil return
// means the connection is permitted. A *ValidationError return is a
// user-correctable rejection; any other error is a caller-contract fault.
func (v *Validator) CanConnect(src, dst EndpointRef) error {
	if src.NodeID == "" || dst.NodeID == "" {
		return ErrMissingNodeID
	}

	if v.store.EndpointInUse(src.NodeID, src.Name) {
		return rejected(ReasonEndpointInUse, "endpoint %s on node %s is already connected", src.Name, src.NodeID)
	}
	if v.store.EndpointInUse(dst.NodeID, dst.Name) {
		return rejected(ReasonEndpointInUse, "endpoint %s on node %s is already connected", dst.Name, dst.NodeID)
	}

	srcType, ok := v.ResolveType(src)
	if !ok {
		return rejected(ReasonUnknownType, "cannot determine interface type of %s on node %s", src.Name, src.NodeID)
	}
	dstType, ok := v.ResolveType(dst)
	if !ok {
		return rejected(ReasonUnknownType, "cannot determine interface type of %s on node %s", dst.Name, dst.NodeID)
	}

	if src.NodeID == dst.NodeID {
		return rejected(ReasonSelfConnection, "cannot connect node %s to itself", src.NodeID)
	}

	if !compatibility[srcType][dstType] {
		return rejected(ReasonIncompatibleTypes, "cannot connect %s interface to %s interface", srcType, dstType)
	}

	key := ConnectionKey(src.NodeID, dst.NodeID, src.Name, dst.Name)
	if v.store.HasConnectionKey(key) {
		return rejected(ReasonDuplicate, "these endpoints are already connected")
	}

	return nil
}

// ResolveType walks the fallback chain for a single endpoint reference.
func (v *Validator) ResolveType(ref EndpointRef) (InterfaceType, bool) {
	node, _ := v.store.Node(ref.NodeID)
	for _, resolve := range typeResolvers {
		if t, ok := resolve(ref, node); ok {
			return t, true
		}
	}
	return "", false
}
