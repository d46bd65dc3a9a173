// Package websocket carries the player-facing protocol: one message-oriented
// connection per player, scoped to at most one room, with room-wide fan-out
// of game events.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ludoarena/game/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub tracks the connected clients of every room and fans events out to
// them. Delivery is best-effort per recipient: a client whose send buffer is
// full gets dropped instead of ever stalling the room.
type Hub struct {
	service service.GameService
	log     zerolog.Logger

	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

// NewHub creates a hub over the given game service.
func NewHub(svc service.GameService, log zerolog.Logger) *Hub {
	return &Hub{
		service: svc,
		log:     log,
		rooms:   make(map[string]map[*Client]bool),
	}
}

// ServeWS upgrades the request and starts the client's pumps. The client is
// not a member of any room until its join message is accepted.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
		log:     h.log,
	}

	go client.writePump()
	go client.readPump()
}

// subscribe adds the client to a room's recipient set.
func (h *Hub) subscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
}

// unsubscribe removes the client and closes its send channel exactly once.
func (h *Hub) unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c.closed {
		return
	}

	if c.roomID != "" {
		if clients, ok := h.rooms[c.roomID]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.rooms, c.roomID)
			}
		}
	}
	c.closed = true
	close(c.send)
}

// BroadcastRoom serializes the event once and delivers it to every client in
// the room. A recipient with a full buffer is detached; delivery to the rest
// continues.
func (h *Hub) BroadcastRoom(roomID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal broadcast event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			h.log.Warn().Str("room", roomID).Str("player", client.playerID).
				Msg("client send buffer full, dropping connection")
			h.detachLocked(client)
		}
	}
}

// sendTo delivers an event to a single client, with the same buffer-full
// policy as a broadcast.
func (h *Hub) sendTo(c *Client, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		h.detachLocked(c)
	}
}

// claimDeparture takes ownership of the client's player identity, clearing
// it so a second departure is a no-op. Broadcast paths read playerID under
// the hub mutex, so the clear must happen under it too. Returns "" when the
// client already departed.
func (h *Hub) claimDeparture(c *Client) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := c.playerID
	c.playerID = ""
	return id
}

// roomClientCount reports how many clients are subscribed to a room.
func (h *Hub) roomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
