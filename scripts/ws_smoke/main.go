// Command ws_smoke joins a room, says one line and waits for the relay to
// echo it back as chat.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-room/internal/core"
	"github.com/vovakirdan/wirechat-room/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("base", "ws://localhost:8080", "WebSocket base address")
	room := flag.String("room", "room-1", "room id")
	token := flag.String("token", "", "access token")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	url, err := core.RoomURL(*base, *room, *token)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	for _, msg := range []any{proto.NewHello(), proto.NewSay(*text)} {
		if err := wsjson.Write(ctx, conn, msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}

	var self string
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		msg, err := proto.Decode(data)
		if err != nil {
			fmt.Printf("skip frame: %v\n", err)
			continue
		}

		switch m := msg.(type) {
		case proto.Welcome:
			self = m.UserID
			fmt.Printf("welcome: id=%s name=%s color=%s\n", m.UserID, m.Name, m.Color)
		case proto.Snapshot:
			fmt.Printf("snapshot: %d participants\n", len(m.Positions))
		case proto.History:
			fmt.Printf("history: %d messages\n", len(m.Messages))
		case proto.Chat:
			fmt.Printf("chat: from=%s text=%q\n", m.PlayerID, deref(m.Text))
			if m.PlayerID == self && deref(m.Text) == *text {
				fmt.Println("smoke test passed")
				return wsjson.Write(ctx, conn, proto.NewLeave())
			}
		default:
			fmt.Printf("received %T\n", m)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
