package core

import (
	"context"
	"net/url"
	"strings"
)

// Conn is one open room socket. Implementations deliver inbound text
// frames in arrival order on Frames and close that channel when the
// connection ends; Err then reports why.
type Conn interface {
	// Send queues an outbound message without blocking.
	Send(msg any) error
	// Frames yields inbound text frames.
	Frames() <-chan []byte
	// Err returns the terminal error once Frames is closed.
	Err() error
	// Close flushes queued messages and closes the socket.
	Close() error
}

// Dialer opens room sockets.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// NormalizeBase turns a user-supplied base address into a socket base:
// one trailing slash is stripped, ws:// and wss:// pass through, http(s)
// becomes ws(s), and anything else is assumed to be wss://.
func NormalizeBase(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "ws://"), strings.HasPrefix(lower, "wss://"):
		return s
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return "ws" + s[len("http"):]
	default:
		return "wss://" + s
	}
}

// RoomURL builds <base>/room/<roomID>[?token=...].
func RoomURL(base, roomID, token string) (string, error) {
	b := NormalizeBase(base)
	if b == "" {
		return "", ErrNoBaseURL
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return "", ErrNoRoom
	}

	u := b + "/room/" + url.PathEscape(roomID)
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u, nil
}

// redactURL strips the query so tokens never reach logs.
func redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
