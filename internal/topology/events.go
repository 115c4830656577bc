package topology

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Topic identifies a class of topology change event.
type Topic string

const (
	TopicNodeAdded         Topic = "nodeAdded"
	TopicNodeRemoved       Topic = "nodeRemoved"
	TopicConnectionAdded   Topic = "connectionAdded"
	TopicConnectionRemoved Topic = "connectionRemoved"
	TopicTopologyReset     Topic = "topologyReset"
	TopicTopologyLoaded    Topic = "topologyLoaded"
)

// Event is delivered to subscribers after a mutation has committed. Node
// and Connection are set when relevant to the topic.
type Event struct {
	Topic      Topic       `json:"topic"`
	Node       *Node       `json:"node,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
	At         time.Time   `json:"at"`
}

// Handler receives events for one topic.
type Handler func(Event)

// SubscriptionID identifies a subscription for later removal. Handlers are
// function values and cannot be compared, so unsubscription goes through
// the id returned at subscribe time; the same function subscribed twice is
// two distinct subscriptions.
type SubscriptionID uint64

// Bus is the change-notification channel between the topology manager and
// its observers (UI panels, statistics widgets, the realtime mirror).
type Bus struct {
	mu       sync.RWMutex
	nextID   SubscriptionID
	handlers map[Topic]map[SubscriptionID]Handler
	logger   zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Topic]map[SubscriptionID]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, fn Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[SubscriptionID]Handler)
	}
	b.handlers[topic][id] = fn
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(topic Topic, id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.handlers[topic]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.handlers, topic)
		}
	}
}

// publish delivers an event to a snapshot of the topic's current
// subscribers. A panicking handler is recovered and logged so sibling
// handlers still run and the mutation caller never sees the failure.
func (b *Bus) publish(evt Event) {
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.handlers[evt.Topic]))
	for _, fn := range b.handlers[evt.Topic] {
		snapshot = append(snapshot, fn)
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		b.dispatch(evt, fn)
	}
}

func (b *Bus) dispatch(evt Event, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("topic", string(evt.Topic)).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	fn(evt)
}
