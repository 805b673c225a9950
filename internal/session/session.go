// Package session holds the identity handed to the room client by the
// surrounding application: an opaque access token and a display identity.
package session

import "sync"

// Identity is what the identity provider exposes. Empty strings mean "none".
type Identity struct {
	AccessToken  string
	DisplayEmail string
}

// Session is an explicitly passed identity context with change notification.
// The room engine only reads it.
type Session struct {
	mu   sync.Mutex
	id   Identity
	subs map[int]func(Identity)
	next int
}

// New creates a session seeded with id.
func New(id Identity) *Session {
	return &Session{id: id, subs: make(map[int]func(Identity))}
}

// Current returns the latest identity.
func (s *Session) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Set replaces the identity and notifies subscribers when it changed.
func (s *Session) Set(id Identity) {
	s.mu.Lock()
	if s.id == id {
		s.mu.Unlock()
		return
	}
	s.id = id
	subs := make([]func(Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}

// Subscribe registers fn for identity changes. The returned func cancels
// the subscription and is safe to call more than once.
func (s *Session) Subscribe(fn func(Identity)) (cancel func()) {
	s.mu.Lock()
	key := s.next
	s.next++
	s.subs[key] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, key)
			s.mu.Unlock()
		})
	}
}
