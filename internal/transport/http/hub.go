package http

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"live-quiz-service/internal/domain"
)

const sendBuffer = 64

// client is one websocket connection as seen by the hub. Frames queue on send and are written by
// the connection's writer goroutine.
type client struct {
	id   string
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// enqueue never blocks. It reports false when the queue is full, in which case the caller drops
// the connection.
func (c *client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub fans events out to connections, directly or through rooms keyed by game code.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]struct{}
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// Register adds a connection and returns its outbound queue.
func (h *Hub) Register(connID string) <-chan []byte {
	c := &client{id: connID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[connID] = c
	h.mu.Unlock()
	return c.send
}

// Unregister removes the connection from the hub and every room and closes its queue. It is safe to
// call more than once.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, connID)
	for room, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) Send(connID string, event domain.Event) {
	frame, ok := h.encode(event)
	if !ok {
		return
	}
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c != nil {
		h.deliver(c, event.Type, frame)
	}
}

func (h *Hub) Broadcast(room string, event domain.Event) {
	frame, ok := h.encode(event)
	if !ok {
		return
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		if c := h.clients[id]; c != nil {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		h.deliver(c, event.Type, frame)
	}
}

func (h *Hub) JoinRoom(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) LeaveRoom(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// CloseRoom forgets the room. Member connections stay open.
func (h *Hub) CloseRoom(room string) {
	h.mu.Lock()
	delete(h.rooms, room)
	h.mu.Unlock()
}

// RoomSize is the number of connections in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) encode(event domain.Event) ([]byte, bool) {
	frame, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(event.Type)).Msg("encode event")
		return nil, false
	}
	return frame, true
}

// deliver disconnects a connection whose queue is full. Closing the queue makes its writer close
// the socket, and the read loop then runs the normal disconnect path.
func (h *Hub) deliver(c *client, typ domain.EventType, frame []byte) {
	if c.enqueue(frame) {
		return
	}
	h.log.Warn().Str("conn_id", c.id).Str("type", string(typ)).Msg("slow connection, closing")
	h.Unregister(c.id)
}
