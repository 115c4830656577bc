package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"netmap/internal/api/service"
	"netmap/internal/topology"

	"github.com/rs/zerolog"
)

// MessageProcessor turns room messages into topology mutations. It never
// touches a manager concurrently: each room runs it from a single worker
// goroutine, which is what keeps the in-memory core single-writer.
type MessageProcessor struct {
	diagramService  *service.DiagramService
	templateService *service.TemplateService
	logger          zerolog.Logger
}

// NewMessageProcessor creates a new message processor
func NewMessageProcessor(diagramService *service.DiagramService, templateService *service.TemplateService, logger zerolog.Logger) *MessageProcessor {
	return &MessageProcessor{
		diagramService:  diagramService,
		templateService: templateService,
		logger:          logger,
	}
}

// Process applies a mutation message to the room's topology manager.
// Returns the message to broadcast, or an error delivered only to the
// sender. Topology rule violations come back as *topology.ValidationError
// so the caller can surface the reason.
func (p *MessageProcessor) Process(mgr *topology.Manager, msg *Message) (*Message, error) {
	switch msg.Type {
	case MessageTypeNodeAdd:
		return p.processNodeAdd(mgr, msg)
	case MessageTypeNodeRemove:
		return p.processNodeRemove(mgr, msg)
	case MessageTypeConnectionCreate:
		return p.processConnectionCreate(mgr, msg)
	case MessageTypeConnectionRemove:
		return p.processConnectionRemove(mgr, msg)
	case MessageTypeTopologyReset:
		return p.processTopologyReset(mgr, msg)
	case MessageTypeTopologyLoad:
		return p.processTopologyLoad(mgr, msg)
	case MessageTypeTopologySave:
		return p.processTopologySave(mgr, msg)
	case MessageTypeTopologySync:
		return p.processTopologySync(mgr, msg)

	default:
		// Other message types don't require processing (chat, cursor, etc.)
		return msg, nil
	}
}

func (p *MessageProcessor) decodeData(msg *Message, out any) error {
	dataBytes, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal message data: %w", err)
	}

	if err := json.Unmarshal(dataBytes, out); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}

	return nil
}

func (p *MessageProcessor) processNodeAdd(mgr *topology.Manager, msg *Message) (*Message, error) {
	var payload NodeAdd
	if err := p.decodeData(msg, &payload); err != nil {
		return nil, err
	}

	// The caller resolves device-template endpoints at creation time; the
	// core never consults the catalogue itself.
	if payload.TemplateKey != "" && len(payload.Endpoints) == 0 {
		endpoints, err := p.templateService.LoadDeviceEndpoints(payload.TemplateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load device template: %w", err)
		}
		if endpoints == nil {
			return nil, fmt.Errorf("unknown device template %q", payload.TemplateKey)
		}
		for _, iface := range endpoints.Interfaces {
			payload.Endpoints = append(payload.Endpoints, topology.Endpoint{
				Name:         iface.Name,
				Type:         iface.Type,
				OriginalName: iface.Name,
			})
			payload.Interfaces = append(payload.Interfaces, topology.Interface{
				Name: iface.Name,
				Type: iface.Type,
			})
		}
		if payload.Type == "" {
			payload.Type = payload.TemplateKey
		}
	}

	node, err := mgr.AddNode(payload.NodeSpec)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Uint("diagramId", msg.DiagramID).
		Str("nodeId", node.ID).
		Str("name", node.Name).
		Msg("Node added via WebSocket")

	out := *msg
	out.Data = node
	return &out, nil
}

func (p *MessageProcessor) processNodeRemove(mgr *topology.Manager, msg *Message) (*Message, error) {
	var payload NodeRemove
	if err := p.decodeData(msg, &payload); err != nil {
		return nil, err
	}

	node := mgr.RemoveNode(payload.NodeID)
	if node == nil {
		return nil, fmt.Errorf("node %q not found", payload.NodeID)
	}

	out := *msg
	out.Data = node
	return &out, nil
}

func (p *MessageProcessor) processConnectionCreate(mgr *topology.Manager, msg *Message) (*Message, error) {
	var payload ConnectionCreate
	if err := p.decodeData(msg, &payload); err != nil {
		return nil, err
	}

	conn, err := mgr.CreateConnection(payload.Source, payload.Target)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Uint("diagramId", msg.DiagramID).
		Str("connectionId", conn.ID).
		Msg("Connection created via WebSocket")

	out := *msg
	out.Data = conn
	return &out, nil
}

func (p *MessageProcessor) processConnectionRemove(mgr *topology.Manager, msg *Message) (*Message, error) {
	var payload ConnectionRemove
	if err := p.decodeData(msg, &payload); err != nil {
		return nil, err
	}

	conn := mgr.RemoveConnection(payload.ConnectionID)
	if conn == nil {
		return nil, fmt.Errorf("connection %q not found", payload.ConnectionID)
	}

	out := *msg
	out.Data = conn
	return &out, nil
}

func (p *MessageProcessor) processTopologyReset(mgr *topology.Manager, msg *Message) (*Message, error) {
	mgr.ResetTopology()
	out := *msg
	out.Data = mgr.Statistics()
	return &out, nil
}

func (p *MessageProcessor) processTopologyLoad(mgr *topology.Manager, msg *Message) (*Message, error) {
	var payload DiagramRef
	if err := p.decodeData(msg, &payload); err != nil {
		return nil, err
	}

	doc, err := p.diagramService.Load(payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrDiagramNotFound) {
			return nil, fmt.Errorf("diagram %q not found", payload.Name)
		}
		return nil, err
	}

	if err := mgr.Deserialize(doc); err != nil {
		return nil, err
	}

	p.logger.Info().
		Uint("diagramId", msg.DiagramID).
		Str("name", payload.Name).
		Msg("Diagram loaded via WebSocket")

	// Broadcast the loaded state so every client re-renders from the same
	// document.
	out := *msg
	out.Data = mgr.Serialize()
	return &out, nil
}

func (p *MessageProcessor) processTopologySave(mgr *topology.Manager, msg *Message) (*Message, error) {
	var payload DiagramRef
	if err := p.decodeData(msg, &payload); err != nil {
		return nil, err
	}

	doc := mgr.Serialize()
	diagram, err := p.diagramService.Save(payload.Name, doc, msg.UserID)
	if err != nil {
		return nil, err
	}

	out := *msg
	out.Data = map[string]any{
		"name":            diagram.Name,
		"size":            diagram.Size,
		"nodeCount":       diagram.NodeCount,
		"connectionCount": diagram.ConnectionCount,
	}
	return &out, nil
}

func (p *MessageProcessor) processTopologySync(mgr *topology.Manager, msg *Message) (*Message, error) {
	out := *msg
	out.Data = mgr.Serialize()
	return &out, nil
}
