package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"netmap/internal/topology"
)

// Publisher mirrors topology events onto NATS subjects so external
// consumers (audit trails, dashboards) can follow diagram changes
// without holding a WebSocket connection.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

func NewPublisher(natsURL string, logger zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

type eventEnvelope struct {
	Topic      topology.Topic       `json:"topic"`
	DiagramID  uint                 `json:"diagramId"`
	Node       *topology.Node       `json:"node,omitempty"`
	Connection *topology.Connection `json:"connection,omitempty"`
	At         string               `json:"at"`
}

// Attach subscribes to every topic on the diagram's event bus and
// republishes each event to diagram.<id>.events.<topic>.
func (p *Publisher) Attach(diagramID uint, bus *topology.Bus) {
	topics := []topology.Topic{
		topology.TopicNodeAdded,
		topology.TopicNodeRemoved,
		topology.TopicConnectionAdded,
		topology.TopicConnectionRemoved,
		topology.TopicTopologyReset,
		topology.TopicTopologyLoaded,
	}
	for _, topic := range topics {
		topic := topic
		bus.Subscribe(topic, func(ev topology.Event) {
			p.publish(diagramID, topic, ev)
		})
	}
	p.logger.Info().Uint("diagramId", diagramID).Msg("NATS mirror attached")
}

func (p *Publisher) publish(diagramID uint, topic topology.Topic, ev topology.Event) {
	envelope := eventEnvelope{
		Topic:      topic,
		DiagramID:  diagramID,
		Node:       ev.Node,
		Connection: ev.Connection,
		At:         ev.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to marshal event envelope")
		return
	}

	subject := fmt.Sprintf("diagram.%d.events.%s", diagramID, topic)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Error().Err(err).Msg("nats drain")
	}
}
