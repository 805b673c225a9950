package devserver

import "golang.org/x/time/rate"

const clientEventBuffer = 64

// Client is one connected participant.
type Client struct {
	ID    string
	Name  string
	Color string
	// Events carries outbound frames for the client's writer.
	Events chan any

	say *rate.Limiter
}

// NewClient constructs a client with an initialized outbound queue.
func NewClient(id, name, color string) *Client {
	if name == "" {
		name = id
	}
	return &Client{
		ID:     id,
		Name:   name,
		Color:  color,
		Events: make(chan any, clientEventBuffer),
	}
}

// deliver queues msg, dropping it for a slow consumer.
func (c *Client) deliver(msg any) bool {
	select {
	case c.Events <- msg:
		return true
	default:
		return false
	}
}
