package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Presence is notified synchronously with connection lifecycle so a
// player's liveness flag never disagrees with the connection registry.
type Presence interface {
	SetPlayerActive(teamID, playerID string, active bool) error
}

type client struct {
	id   string
	conn *websocket.Conn
}

// Hub tracks live connections keyed by (team, player) and fans events out
// to them. One identity holds at most one connection: registering over an
// existing one closes the old connection (last writer wins). All sends run
// under the hub lock, so each recipient observes events in the order they
// were generated.
type Hub struct {
	mu       sync.Mutex
	teams    map[string]map[string]*client
	presence Presence
}

func NewHub(presence Presence) *Hub {
	return &Hub{
		teams:    make(map[string]map[string]*client),
		presence: presence,
	}
}

// Register adds a connection for (team, player) and returns its id. The id
// lets the connection's deferred cleanup skip unregistering a replacement
// that arrived in the meantime.
func (h *Hub) Register(teamID, playerID string, conn *websocket.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.teams[teamID] == nil {
		h.teams[teamID] = make(map[string]*client)
	}
	if prev, ok := h.teams[teamID][playerID]; ok {
		log.Printf("ws: duplicate connection for %s/%s, closing previous", teamID, playerID)
		prev.conn.Close()
	}

	id := uuid.NewString()
	h.teams[teamID][playerID] = &client{id: id, conn: conn}

	if err := h.presence.SetPlayerActive(teamID, playerID, true); err != nil {
		log.Printf("ws: failed to mark %s/%s active: %v", teamID, playerID, err)
	}
	log.Printf("ws: client connected %s/%s (team total: %d)", teamID, playerID, len(h.teams[teamID]))
	return id
}

// Unregister removes the connection if it is still the registered one for
// its identity. Idempotent.
func (h *Hub) Unregister(teamID, playerID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.teams[teamID][playerID]
	if !ok || current.id != connID {
		return
	}
	current.conn.Close()
	delete(h.teams[teamID], playerID)
	if len(h.teams[teamID]) == 0 {
		delete(h.teams, teamID)
	}

	if err := h.presence.SetPlayerActive(teamID, playerID, false); err != nil {
		log.Printf("ws: failed to mark %s/%s inactive: %v", teamID, playerID, err)
	}
	log.Printf("ws: client disconnected %s/%s", teamID, playerID)
}

// LivePlayers returns the players of a team with a registered connection.
func (h *Hub) LivePlayers(teamID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]string, 0, len(h.teams[teamID]))
	for id := range h.teams[teamID] {
		players = append(players, id)
	}
	return players
}

// SendTo delivers an event to a single player. Dropped silently if the
// player is not live; the next connect pushes a fresh snapshot anyway.
func (h *Hub) SendTo(teamID, playerID string, event interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.teams[teamID][playerID]
	if !ok {
		return
	}
	h.write(teamID, playerID, c, event)
}

// BroadcastTeam delivers an event to every live player of one team, and
// only that team.
func (h *Hub) BroadcastTeam(teamID string, event interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for playerID, c := range h.teams[teamID] {
		h.write(teamID, playerID, c, event)
	}
}

// write sends one marshaled event. Caller holds h.mu.
func (h *Hub) write(teamID, playerID string, c *client, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("ws: write error for %s/%s: %v", teamID, playerID, err)
		c.conn.Close()
	}
}
