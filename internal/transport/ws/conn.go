// Package ws implements the room socket on top of github.com/coder/websocket.
package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-room/internal/core"
)

var (
	// ErrSendBufferFull is returned by Send when the writer is not keeping up.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("connection closed")
)

const (
	defaultSendBuffer = 64
	defaultReadLimit  = 1 << 20
	frameBuffer       = 256
	writeTimeout      = 5 * time.Second
	flushTimeout      = 2 * time.Second
)

// Dialer opens room sockets.
type Dialer struct {
	log        *zerolog.Logger
	sendBuffer int
	readLimit  int64
}

// NewDialer builds a dialer. sendBuffer <= 0 uses the default.
func NewDialer(logger *zerolog.Logger, sendBuffer int) *Dialer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Dialer{log: logger, sendBuffer: sendBuffer, readLimit: defaultReadLimit}
}

// Dial connects to url and starts the read and write goroutines.
func (d *Dialer) Dial(ctx context.Context, url string) (core.Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial room socket: %w", err)
	}
	ws.SetReadLimit(d.readLimit)
	return newConn(ws, d.sendBuffer, d.log), nil
}

// Conn is an open room socket. Frames are read on one goroutine and
// queued messages are written on another.
type Conn struct {
	ws     *websocket.Conn
	log    *zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	out    chan any
	frames chan []byte

	mu      sync.Mutex
	closing bool
	err     error

	readDone  chan struct{}
	writeDone chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, sendBuffer int, logger *zerolog.Logger) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ws:        ws,
		log:       logger,
		ctx:       ctx,
		cancel:    cancel,
		out:       make(chan any, sendBuffer),
		frames:    make(chan []byte, frameBuffer),
		readDone:  make(chan struct{}),
		writeDone: make(chan struct{}),
	}
	go c.readLoop()
	go c.writeLoop()
	return c
}

// Send queues msg for the writer. It never blocks.
func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return ErrClosed
	}
	select {
	case c.out <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Frames yields inbound text frames and is closed when reading stops.
func (c *Conn) Frames() <-chan []byte {
	return c.frames
}

// Err reports why the connection ended.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close flushes queued messages, then performs a normal close handshake.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closing = true
		close(c.out)
		c.mu.Unlock()

		select {
		case <-c.writeDone:
		case <-time.After(flushTimeout):
			c.log.Warn().Msg("ws flush timed out")
		}

		err = c.ws.Close(websocket.StatusNormalClosure, "leaving")
		c.cancel()
		<-c.readDone
		if isNormalClose(err) {
			err = nil
		}
	})
	return err
}

func (c *Conn) readLoop() {
	defer close(c.readDone)
	defer close(c.frames)
	for {
		typ, data, err := c.ws.Read(c.ctx)
		if err != nil {
			c.fail(err)
			return
		}
		if typ != websocket.MessageText {
			c.log.Debug().Msg("ignore binary frame")
			continue
		}
		select {
		case c.frames <- data:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Conn) writeLoop() {
	defer close(c.writeDone)
	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := wsjson.Write(ctx, c.ws, msg)
			cancel()
			if err != nil {
				c.log.Warn().Err(err).Msg("write ws message")
				c.fail(err)
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func isNormalClose(err error) bool {
	if err == nil {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
