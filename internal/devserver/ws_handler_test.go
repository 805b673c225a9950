package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-room/internal/core"
	"github.com/vovakirdan/wirechat-room/internal/proto"
	"github.com/vovakirdan/wirechat-room/internal/session"
	"github.com/vovakirdan/wirechat-room/internal/transport/ws"
)

func startRelay(t *testing.T, cfg Config) string {
	t.Helper()
	nop := zerolog.Nop()
	hub := startHub(t, cfg)
	srv := httptest.NewServer(NewRouter(hub, cfg, &nop))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newEngine(t *testing.T, base, email string) *core.Engine {
	t.Helper()
	opts := core.DefaultOptions()
	opts.BaseURL = base
	e := core.New(opts, ws.NewDialer(nil, 0), nil, session.New(session.Identity{DisplayEmail: email}), nil)
	t.Cleanup(e.Close)
	return e
}

// pumpUntil drives every engine on the test goroutine until cond holds.
func pumpUntil(t *testing.T, what string, cond func() bool, engines ...*core.Engine) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		now := time.Now()
		for _, e := range engines {
			e.Pump(now)
			e.Frame(now)
		}
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hasText(msgs []core.ChatMessage, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

func TestRelayEndToEnd(t *testing.T) {
	base := startRelay(t, Default())
	alice := newEngine(t, base, "alice@example.com")
	bob := newEngine(t, base, "bob@example.com")

	if err := alice.Connect("lobby"); err != nil {
		t.Fatalf("alice connect: %v", err)
	}
	pumpUntil(t, "alice welcome", func() bool { return alice.SelfID() != "" }, alice)

	if err := bob.Connect("lobby"); err != nil {
		t.Fatalf("bob connect: %v", err)
	}
	pumpUntil(t, "bob snapshot", func() bool {
		return bob.SelfID() != "" && len(bob.Players()) == 2
	}, alice, bob)

	bobID := bob.SelfID()
	pumpUntil(t, "join notice", func() bool {
		_, ok := alice.Players()[bobID]
		return ok && hasText(alice.Messages(), "加入房间")
	}, alice, bob)

	if err := bob.Say("hello there"); err != nil {
		t.Fatalf("say: %v", err)
	}
	pumpUntil(t, "chat relay", func() bool {
		return hasText(alice.Messages(), "hello there") && hasText(bob.Messages(), "hello there")
	}, alice, bob)

	aliceID := alice.SelfID()
	alice.Input().SetKey(core.DirRight, true)
	pumpUntil(t, "remote movement", func() bool {
		return bob.Players()[aliceID].X > 420
	}, alice, bob)
	alice.Input().SetKey(core.DirRight, false)

	if self, _ := alice.Self(); self.ID != aliceID {
		t.Fatalf("echoed pos must not replace alice's self entity, got %+v", self)
	}

	bob.Disconnect()
	pumpUntil(t, "leave", func() bool {
		_, ok := alice.Players()[bobID]
		return !ok
	}, alice)
}

func TestRelayTokenValidation(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = "relay-secret"
	base := startRelay(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	dialer := ws.NewDialer(nil, 0)

	url, _ := core.RoomURL(base, "lobby", "")
	if _, err := dialer.Dial(ctx, url); err == nil {
		t.Fatalf("expected rejection without token")
	}

	token, err := GenerateToken([]byte(cfg.JWTSecret), "", "u-1", "carol@example.com", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	url, _ = core.RoomURL(base, "lobby", token)
	conn, err := dialer.Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	defer conn.Close()

	select {
	case frame := <-conn.Frames():
		msg, err := proto.Decode(frame)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w, ok := msg.(proto.Welcome); !ok || w.Name != "carol@example.com" {
			t.Fatalf("unexpected welcome %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no welcome")
	}
}

func TestHealth(t *testing.T) {
	nop := zerolog.Nop()
	router := NewRouter(NewHub(Default(), nil), Default(), &nop)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}
