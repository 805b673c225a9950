package core

import (
	"maps"
	"slices"
)

// Player is a participant as drawn by the client, including self.
type Player struct {
	ID    string
	X     float64
	Y     float64
	Name  string
	Color string
}

// Pos returns the player's position.
func (p Player) Pos() Vec {
	return Vec{X: p.X, Y: p.Y}
}

// Entities is the participant map plus the interpolation targets of remote
// participants. The players map is published copy-on-write: a map returned
// by Players is never mutated afterwards, and every change goes through
// Update, which starts from the latest published map.
type Entities struct {
	players map[string]Player
	targets map[string]Vec
}

// NewEntities creates an empty store.
func NewEntities() *Entities {
	return &Entities{
		players: make(map[string]Player),
		targets: make(map[string]Vec),
	}
}

// Players returns the latest published map. Callers must not modify it.
func (s *Entities) Players() map[string]Player {
	return s.players
}

// Get returns a single player.
func (s *Entities) Get(id string) (Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// Len returns the number of players.
func (s *Entities) Len() int {
	return len(s.players)
}

// IDs returns player ids in ascending order.
func (s *Entities) IDs() []string {
	return slices.Sorted(maps.Keys(s.players))
}

// Update applies fn to a copy of the latest map and publishes the result.
func (s *Entities) Update(fn func(m map[string]Player)) {
	next := maps.Clone(s.players)
	if next == nil {
		next = make(map[string]Player)
	}
	fn(next)
	s.players = next
	for id := range s.targets {
		if _, ok := next[id]; !ok {
			delete(s.targets, id)
		}
	}
}

// Upsert stores p under p.ID.
func (s *Entities) Upsert(p Player) {
	s.Update(func(m map[string]Player) { m[p.ID] = p })
}

// Remove deletes a player and its interpolation target.
func (s *Entities) Remove(id string) {
	if _, ok := s.players[id]; !ok {
		delete(s.targets, id)
		return
	}
	s.Update(func(m map[string]Player) { delete(m, id) })
}

// SetTarget records the latest authoritative position for a remote player.
func (s *Entities) SetTarget(id string, v Vec) {
	s.targets[id] = v
}

// Target returns the interpolation target of a player.
func (s *Entities) Target(id string) (Vec, bool) {
	v, ok := s.targets[id]
	return v, ok
}

// DropTarget forgets the interpolation target of a player.
func (s *Entities) DropTarget(id string) {
	delete(s.targets, id)
}

// Targets returns the live targets map. Callers must not modify it.
func (s *Entities) Targets() map[string]Vec {
	return s.targets
}

// Clear removes every player and target.
func (s *Entities) Clear() {
	s.players = make(map[string]Player)
	s.targets = make(map[string]Vec)
}
