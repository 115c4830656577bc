package websocket

import (
	"errors"
	"sync"

	"netmap/internal/topology"

	"github.com/rs/zerolog"
)

// processRequest is a mutation command queued by one client.
type processRequest struct {
	client *Client
	msg    Message
}

// Room is one collaborative editing session: the set of connected clients
// plus the in-memory topology they are editing. All mutations go through
// the room's command queue and are applied by a single worker goroutine,
// so the topology manager never sees concurrent writers.
type Room struct {
	DiagramID uint
	Clients   map[string]*Client
	mu        sync.RWMutex

	manager   *topology.Manager
	processor *MessageProcessor
	commands  chan processRequest

	// stats is refreshed by the worker after every committed mutation so
	// readers never touch the manager directly.
	stats topology.Statistics

	// closed guards commands: the hub may close a room it created for a
	// Dispatch whose client never finished registering.
	closed bool

	Logger zerolog.Logger
}

func NewRoom(diagramID uint, processor *MessageProcessor, logger zerolog.Logger) *Room {
	r := &Room{
		DiagramID: diagramID,
		Clients:   make(map[string]*Client),
		manager:   topology.NewManager(logger),
		processor: processor,
		commands:  make(chan processRequest, 256),
		Logger:    logger,
	}
	go r.run()
	return r
}

// Events exposes the topology's change-notification bus so observers
// (like the NATS mirror) can attach. Subscription is safe from any
// goroutine; events are delivered from the room worker.
func (r *Room) Events() *topology.Bus {
	return r.manager.Events()
}

// Stats returns the topology counters as of the last committed mutation.
func (r *Room) Stats() topology.Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

func (r *Room) setStats(stats topology.Statistics) {
	r.mu.Lock()
	r.stats = stats
	r.mu.Unlock()
}

// Enqueue hands a mutation to the room's worker. Returns false when the
// queue is full or the room has been closed. The lock is held across the
// send so Close can never slip in between the check and the enqueue.
func (r *Room) Enqueue(client *Client, msg Message) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.commands <- processRequest{client: client, msg: msg}:
		return true
	default:
		return false
	}
}

// Close stops the room's worker once the queue drains. Idempotent; later
// Enqueue calls return false.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.commands)
}

// run applies queued mutations in arrival order. Rule violations go back
// to the sender only; accepted mutations are broadcast to the whole room.
func (r *Room) run() {
	for req := range r.commands {
		processed, err := r.processor.Process(r.manager, &req.msg)
		if err != nil {
			var ve *topology.ValidationError
			if errors.As(err, &ve) {
				req.client.Deliver(NewRejectionMessage(r.DiagramID, req.client.UserID, req.client.Username, ve))
			} else {
				r.Logger.Error().
					Err(err).
					Str("type", string(req.msg.Type)).
					Uint("diagramId", r.DiagramID).
					Msg("Failed to process message")
				req.client.Deliver(NewErrorMessage(r.DiagramID, req.client.UserID, req.client.Username, err.Error()))
			}
			continue
		}

		r.setStats(r.manager.Statistics())

		// Sync responses go only to the requester; everything else is a
		// committed change the whole room needs.
		if processed.Type == MessageTypeTopologySync {
			req.client.Deliver(*processed)
			continue
		}
		r.Broadcast(*processed)
	}

	r.Logger.Debug().Uint("diagramId", r.DiagramID).Msg("Room worker stopped")
}

// AddClient adds a client to the room
func (r *Room) AddClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Clients[client.ID] = client
	r.Logger.Info().
		Uint("diagramId", r.DiagramID).
		Str("clientId", client.ID).
		Uint("userId", client.UserID).
		Int("totalClients", len(r.Clients)).
		Msg("Client joined room")

	r.broadcastUserJoinLocked(client)
}

// RemoveClient removes a client from the room
func (r *Room) RemoveClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Clients[client.ID]; exists {
		delete(r.Clients, client.ID)
		r.Logger.Info().
			Uint("diagramId", r.DiagramID).
			Str("clientId", client.ID).
			Uint("userId", client.UserID).
			Int("remainingClients", len(r.Clients)).
			Msg("Client left room")

		r.broadcastUserLeaveLocked(client)
	}
}

// Broadcast sends a message to all clients in the room
func (r *Room) Broadcast(message Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.Clients {
		client.Deliver(message)
	}
}

// BroadcastExcept sends a message to all clients in the room except the sender
func (r *Room) BroadcastExcept(message Message, senderID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.Clients {
		if client.ID == senderID {
			continue
		}
		client.Deliver(message)
	}
}

func (r *Room) broadcastUserJoinLocked(joined *Client) {
	msg := NewUserJoinMessage(r.DiagramID, joined.UserID, joined.Username, UserInfo{
		UserID:   joined.UserID,
		Username: joined.Username,
		Color:    joined.Color,
	})
	for _, client := range r.Clients {
		if client.ID == joined.ID {
			continue
		}
		client.Deliver(msg)
	}
}

func (r *Room) broadcastUserLeaveLocked(left *Client) {
	msg := NewUserLeaveMessage(r.DiagramID, left.UserID, left.Username, UserInfo{
		UserID:   left.UserID,
		Username: left.Username,
		Color:    left.Color,
	})
	for _, client := range r.Clients {
		client.Deliver(msg)
	}
}

// GetActiveUsers returns a list of active users in the room
func (r *Room) GetActiveUsers() []UserInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]UserInfo, 0, len(r.Clients))
	seen := make(map[uint]bool) // Track unique user IDs

	for _, client := range r.Clients {
		if !seen[client.UserID] {
			users = append(users, UserInfo{
				UserID:   client.UserID,
				Username: client.Username,
				Color:    client.Color,
			})
			seen[client.UserID] = true
		}
	}

	return users
}

// IsEmpty returns true if the room has no clients
func (r *Room) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients) == 0
}

// ClientCount returns the number of clients in the room
func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}
