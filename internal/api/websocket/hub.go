package websocket

import (
	"sync"
	"time"

	"netmap/internal/topology"

	"github.com/rs/zerolog"
)

// RoomStats pairs a room's connection count with its topology counters.
type RoomStats struct {
	Clients  int                 `json:"clients"`
	Topology topology.Statistics `json:"topology"`
}

// Hub maintains the set of active clients and routes messages to rooms
type Hub struct {
	// Rooms indexed by diagram ID
	Rooms map[uint]*Room

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Broadcast messages to clients in a specific room
	Broadcast chan Message

	// Shared processor handed to each room's worker
	processor *MessageProcessor

	// Called once per room creation so external observers (the NATS
	// mirror) can subscribe to the room's topology events
	roomObserver func(diagramID uint, events *topology.Bus)

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	Logger zerolog.Logger
}

func NewHub(processor *MessageProcessor, logger zerolog.Logger) *Hub {
	return &Hub{
		Rooms:      make(map[uint]*Room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 256),
		processor:  processor,
		Logger:     logger,
	}
}

// OnRoomCreated registers a callback invoked for every new room. Set it
// before Run.
func (h *Hub) OnRoomCreated(fn func(diagramID uint, events *topology.Bus)) {
	h.roomObserver = fn
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	// Cleanup ticker for removing empty rooms
	cleanupTicker := time.NewTicker(5 * time.Minute)
	defer cleanupTicker.Stop()

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)

		case <-cleanupTicker.C:
			h.cleanupEmptyRooms()
		}
	}
}

// getOrCreateRoom returns the room for a diagram, creating it (and its
// worker) on first use. Callers must hold h.mu.
func (h *Hub) getOrCreateRoom(diagramID uint) *Room {
	room, exists := h.Rooms[diagramID]
	if !exists {
		room = NewRoom(diagramID, h.processor, h.Logger)
		h.Rooms[diagramID] = room
		if h.roomObserver != nil {
			h.roomObserver(diagramID, room.Events())
		}
		h.Logger.Info().Uint("diagramId", diagramID).Msg("Created new room")
	}
	return room
}

// registerClient registers a new client to a room
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.getOrCreateRoom(client.DiagramID)
	room.AddClient(client)
}

// unregisterClient unregisters a client from a room
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.Rooms[client.DiagramID]
	if !exists {
		return
	}

	// Remove client from room
	room.RemoveClient(client)
	client.Close()

	// Remove room (and stop its worker) if empty
	if room.IsEmpty() {
		room.Close()
		delete(h.Rooms, client.DiagramID)
		h.Logger.Info().Uint("diagramId", client.DiagramID).Msg("Removed empty room")
	}
}

// Dispatch queues a mutation on the sender's room worker. Returns false
// when the room's command queue is full.
func (h *Hub) Dispatch(client *Client, message Message) bool {
	h.mu.Lock()
	room := h.getOrCreateRoom(client.DiagramID)
	h.mu.Unlock()

	return room.Enqueue(client, message)
}

// broadcastMessage broadcasts a message to the appropriate room.
// Note: mutation messages never come through here; they are committed and
// broadcast by the room worker itself.
func (h *Hub) broadcastMessage(message Message) {
	h.mu.RLock()
	room, exists := h.Rooms[message.DiagramID]
	h.mu.RUnlock()

	if !exists {
		h.Logger.Warn().
			Uint("diagramId", message.DiagramID).
			Str("type", string(message.Type)).
			Msg("Room not found for broadcast")
		return
	}

	room.Broadcast(message)

	h.Logger.Debug().
		Str("type", string(message.Type)).
		Uint("diagramId", message.DiagramID).
		Uint("userId", message.UserID).
		Msg("Broadcasted message")
}

// cleanupEmptyRooms removes empty rooms
func (h *Hub) cleanupEmptyRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	emptyRooms := make([]uint, 0)
	for diagramID, room := range h.Rooms {
		if room.IsEmpty() {
			emptyRooms = append(emptyRooms, diagramID)
		}
	}

	for _, diagramID := range emptyRooms {
		h.Rooms[diagramID].Close()
		delete(h.Rooms, diagramID)
		h.Logger.Info().Uint("diagramId", diagramID).Msg("Cleaned up empty room")
	}

	if len(emptyRooms) > 0 {
		h.Logger.Info().
			Int("cleanedRooms", len(emptyRooms)).
			Int("activeRooms", len(h.Rooms)).
			Msg("Room cleanup completed")
	}
}

// GetRoomStats returns per-room client counts and topology statistics
func (h *Hub) GetRoomStats() map[uint]RoomStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[uint]RoomStats)
	for diagramID, room := range h.Rooms {
		stats[diagramID] = RoomStats{
			Clients:  room.ClientCount(),
			Topology: room.Stats(),
		}
	}
	return stats
}

// GetActiveUsersInRoom returns active users in a specific room
func (h *Hub) GetActiveUsersInRoom(diagramID uint) []UserInfo {
	h.mu.RLock()
	room, exists := h.Rooms[diagramID]
	h.mu.RUnlock()

	if !exists {
		return []UserInfo{}
	}

	return room.GetActiveUsers()
}
