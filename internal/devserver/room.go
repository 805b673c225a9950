package devserver

import (
	"cmp"
	"slices"

	"github.com/vovakirdan/wirechat-room/internal/proto"
)

// Room groups the clients connected to one room id.
type Room struct {
	Name      string
	clients   map[*Client]struct{}
	positions map[string]proto.Position
	history   []proto.ChatItem
	limit     int
}

// NewRoom constructs an empty room keeping up to historySize chat lines.
func NewRoom(name string, historySize int) *Room {
	if historySize <= 0 {
		historySize = 200
	}
	return &Room{
		Name:      name,
		clients:   make(map[*Client]struct{}),
		positions: make(map[string]proto.Position),
		limit:     historySize,
	}
}

// AddClient inserts a client at (x, y). Returns true if newly added.
func (r *Room) AddClient(c *Client, x, y float64) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	r.positions[c.ID] = proto.Position{
		PlayerID: c.ID,
		X:        proto.Ptr(x),
		Y:        proto.Ptr(y),
		Name:     proto.Ptr(c.Name),
		Color:    proto.Ptr(c.Color),
	}
	return true
}

// RemoveClient deletes a client. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	delete(r.positions, c.ID)
	return true
}

// Has reports whether c is in the room.
func (r *Room) Has(c *Client) bool {
	_, ok := r.clients[c]
	return ok
}

// Move records a client position and returns it.
func (r *Room) Move(c *Client, x, y float64) proto.Position {
	p := r.positions[c.ID]
	p.PlayerID = c.ID
	p.X, p.Y = proto.Ptr(x), proto.Ptr(y)
	r.positions[c.ID] = p
	return p
}

// Snapshot lists every position ordered by id.
func (r *Room) Snapshot() []proto.Position {
	out := make([]proto.Position, 0, len(r.positions))
	for _, p := range r.positions {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b proto.Position) int {
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out
}

// AppendHistory stores a chat line, dropping the oldest past the limit.
func (r *Room) AppendHistory(item proto.ChatItem) {
	r.history = append(r.history, item)
	if over := len(r.history) - r.limit; over > 0 {
		r.history = slices.Delete(r.history, 0, over)
	}
}

// History returns a copy of the stored chat lines.
func (r *Room) History() []proto.ChatItem {
	return slices.Clone(r.history)
}

// Broadcast sends msg to every client except skip (which may be nil).
func (r *Room) Broadcast(msg any, skip *Client) {
	for client := range r.clients {
		if client == skip {
			continue
		}
		// Drop if slow consumer.
		client.deliver(msg)
	}
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
