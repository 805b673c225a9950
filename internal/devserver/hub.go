package devserver

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-room/internal/proto"
)

const (
	spawnX = 400
	spawnY = 300

	commandBuffer = 256
)

type commandKind int

const (
	commandJoin commandKind = iota
	commandInbound
	commandLeave
)

type command struct {
	kind   commandKind
	room   string
	client *Client
	msg    any
}

// Hub owns every room. All room state is touched only by Run.
type Hub struct {
	log      *zerolog.Logger
	cfg      Config
	now      func() time.Time
	commands chan command
	rooms    map[string]*Room
}

// NewHub creates a hub. Call Run to start processing.
func NewHub(cfg Config, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:      logger,
		cfg:      cfg,
		now:      time.Now,
		commands: make(chan command, commandBuffer),
		rooms:    make(map[string]*Room),
	}
}

// Run processes commands until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case cmd := <-h.commands:
			h.handle(cmd)
		case <-ctx.Done():
			return
		}
	}
}

// Join adds c to room; c receives welcome and the room sees join.
func (h *Hub) Join(room string, c *Client) {
	h.commands <- command{kind: commandJoin, room: room, client: c}
}

// Inbound forwards a decoded client frame.
func (h *Hub) Inbound(room string, c *Client, msg any) {
	h.commands <- command{kind: commandInbound, room: room, client: c, msg: msg}
}

// Leave removes c from room. Repeated calls are harmless.
func (h *Hub) Leave(room string, c *Client) {
	h.commands <- command{kind: commandLeave, room: room, client: c}
}

func (h *Hub) handle(cmd command) {
	switch cmd.kind {
	case commandJoin:
		h.join(cmd.room, cmd.client)
	case commandLeave:
		h.leave(cmd.room, cmd.client)
	case commandInbound:
		h.inbound(cmd.room, cmd.client, cmd.msg)
	}
}

func (h *Hub) join(name string, c *Client) {
	room, ok := h.rooms[name]
	if !ok {
		room = NewRoom(name, h.cfg.HistorySize)
		h.rooms[name] = room
	}
	if !room.AddClient(c, spawnX, spawnY) {
		return
	}
	c.say = newSayLimiter(h.cfg.SayRate, h.cfg.SayBurst)

	c.deliver(proto.Welcome{Type: proto.TypeWelcome, UserID: c.ID, Name: c.Name, Color: c.Color})
	room.Broadcast(proto.Join{Type: proto.TypeJoin, PlayerID: c.ID, Name: proto.Ptr(c.Name), Color: proto.Ptr(c.Color)}, c)
	h.log.Info().Str("room", name).Str("client_id", c.ID).Str("user", c.Name).Msg("joined")
}

func (h *Hub) leave(name string, c *Client) {
	room, ok := h.rooms[name]
	if !ok || !room.RemoveClient(c) {
		return
	}
	room.Broadcast(proto.Leave{Type: proto.TypeLeave, PlayerID: c.ID, Name: proto.Ptr(c.Name)}, nil)
	if room.Empty() {
		delete(h.rooms, name)
	}
	h.log.Info().Str("room", name).Str("client_id", c.ID).Msg("left")
}

func (h *Hub) inbound(name string, c *Client, msg any) {
	room, ok := h.rooms[name]
	if !ok || !room.Has(c) {
		return
	}

	switch m := msg.(type) {
	case proto.Hello:
		c.deliver(proto.Snapshot{Type: proto.TypeSnapshot, Positions: room.Snapshot()})
		c.deliver(proto.History{Type: proto.TypeHistory, Messages: room.History()})
	case proto.Move:
		p := room.Move(c, m.X, m.Y)
		room.Broadcast(proto.Pos{Type: proto.TypePos, Position: p}, nil)
	case proto.Say:
		text := strings.TrimSpace(m.Text)
		if text == "" {
			return
		}
		now := h.now()
		if !allow(c.say, now) {
			h.log.Debug().Str("room", name).Str("client_id", c.ID).Msg("say rate limited")
			return
		}
		item := proto.ChatItem{
			PlayerID: c.ID,
			Name:     proto.Ptr(c.Name),
			Color:    proto.Ptr(c.Color),
			Text:     proto.Ptr(text),
			T:        proto.Ptr(now.UnixMilli()),
		}
		room.AppendHistory(item)
		room.Broadcast(proto.Chat{Type: proto.TypeChat, ChatItem: item}, nil)
	case proto.Leave:
		h.leave(name, c)
	default:
		h.log.Debug().Str("room", name).Str("client_id", c.ID).Msgf("ignore %T", msg)
	}
}
