package topology

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAndUnsubscribe(t *testing.T) {
	b := NewBus(zerolog.Nop())

	var calls int
	id := b.Subscribe(TopicNodeAdded, func(Event) { calls++ })

	b.publish(Event{Topic: TopicNodeAdded})
	assert.Equal(t, 1, calls)

	// Other topics do not reach the handler.
	b.publish(Event{Topic: TopicNodeRemoved})
	assert.Equal(t, 1, calls)

	b.Unsubscribe(TopicNodeAdded, id)
	b.publish(Event{Topic: TopicNodeAdded})
	assert.Equal(t, 1, calls)

	// Unsubscribing twice is harmless.
	b.Unsubscribe(TopicNodeAdded, id)
}

func TestBus_PanickingHandlerDoesNotStopSiblings(t *testing.T) {
	b := NewBus(zerolog.Nop())

	var survived int
	b.Subscribe(TopicConnectionAdded, func(Event) { panic("broken widget") })
	b.Subscribe(TopicConnectionAdded, func(Event) { survived++ })

	require.NotPanics(t, func() {
		b.publish(Event{Topic: TopicConnectionAdded})
	})
	assert.Equal(t, 1, survived)
}

func TestManager_EmitsEventSequenceOnCascadingDelete(t *testing.T) {
	m := newTestManager()
	r1 := addRouter(t, m, "R1", Endpoint{Name: "Gig0/0", Type: "ethernet"})
	r2 := addRouter(t, m, "R2", Endpoint{Name: "Gig0/0", Type: "ethernet"})

	_, err := m.CreateConnection(ethernetRef(r1, "Gig0/0"), ethernetRef(r2, "Gig0/0"))
	require.NoError(t, err)

	var sequence []Topic
	record := func(evt Event) { sequence = append(sequence, evt.Topic) }
	m.Events().Subscribe(TopicConnectionRemoved, record)
	m.Events().Subscribe(TopicNodeRemoved, record)

	m.RemoveNode(r1.ID)

	// Dependent connections are announced before the node itself.
	assert.Equal(t, []Topic{TopicConnectionRemoved, TopicNodeRemoved}, sequence)
}
