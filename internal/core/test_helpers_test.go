package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-room/internal/proto"
	"github.com/vovakirdan/wirechat-room/internal/session"
	"github.com/vovakirdan/wirechat-room/internal/store"
)

var errRemoteClosed = errors.New("remote closed")

type fakeConn struct {
	mu     sync.Mutex
	sent   []any
	frames chan []byte
	err    error
	closed bool
	once   sync.Once
	// hold, when set, keeps Close from returning until it is closed.
	hold chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 64)}
}

func (c *fakeConn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Frames() <-chan []byte { return c.frames }

func (c *fakeConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	hold := c.hold
	c.mu.Unlock()
	if hold != nil {
		<-hold
	}
	return nil
}

// waitClosed polls until Close has been called on c.
func waitClosed(t *testing.T, c *fakeConn) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !c.isClosed() {
		if time.Now().After(deadline) {
			t.Fatalf("connection was not closed")
		}
		time.Sleep(time.Millisecond)
	}
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// push queues v as an inbound JSON frame.
func (c *fakeConn) push(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	c.frames <- data
}

func (c *fakeConn) pushRaw(data string) {
	c.frames <- []byte(data)
}

// drop simulates the server going away.
func (c *fakeConn) drop(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.frames)
	})
}

func (c *fakeConn) sentMessages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

func (c *fakeConn) moves() []proto.Move {
	var out []proto.Move
	for _, m := range c.sentMessages() {
		if mv, ok := m.(proto.Move); ok {
			out = append(out, mv)
		}
	}
	return out
}

func (c *fakeConn) countType(typ string) int {
	n := 0
	for _, m := range c.sentMessages() {
		data, err := json.Marshal(m)
		if err != nil {
			continue
		}
		var env proto.Envelope
		if json.Unmarshal(data, &env) == nil && env.Type == typ {
			n++
		}
	}
	return n
}

type fakeDialer struct {
	mu    sync.Mutex
	conn  *fakeConn
	err   error
	urls  []string
	block chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	conn, err, block := d.conn, d.err, d.block
	d.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (d *fakeDialer) lastURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.urls) == 0 {
		return ""
	}
	return d.urls[len(d.urls)-1]
}

type memCache struct {
	mu      sync.Mutex
	records map[string][]store.ChatRecord
	prefs   map[string]string
	failPut bool
}

func newMemCache() *memCache {
	return &memCache{records: make(map[string][]store.ChatRecord), prefs: make(map[string]string)}
}

func (m *memCache) PutMany(_ context.Context, records []store.ChatRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("disk full")
	}
	for _, r := range records {
		m.records[r.RoomID] = append(m.records[r.RoomID], r)
	}
	return nil
}

func (m *memCache) GetRoom(_ context.Context, roomID string, limit int) ([]store.ChatRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := append([]store.ChatRecord(nil), m.records[roomID]...)
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return recs, nil
}

func (m *memCache) ClearRoom(_ context.Context, roomID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.records[roomID]))
	delete(m.records, roomID)
	return n, nil
}

func (m *memCache) GetPref(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.prefs[key]
	if !ok {
		return "", store.ErrPrefNotFound
	}
	return v, nil
}

func (m *memCache) SetPref(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = value
	return nil
}

func (m *memCache) count(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[roomID])
}

type canvasOp struct {
	kind  string
	x, y  float64
	r     float64
	color string
	text  string
}

type recCanvas struct {
	ops []canvasOp
}

func (c *recCanvas) Clear() { c.ops = append(c.ops, canvasOp{kind: "clear"}) }

func (c *recCanvas) Line(x0, y0, _, _ float64) {
	c.ops = append(c.ops, canvasOp{kind: "line", x: x0, y: y0})
}

func (c *recCanvas) Circle(x, y, r float64, color string) {
	c.ops = append(c.ops, canvasOp{kind: "circle", x: x, y: y, r: r, color: color})
}

func (c *recCanvas) Label(text string, x, y float64) {
	c.ops = append(c.ops, canvasOp{kind: "label", x: x, y: y, text: text})
}

func (c *recCanvas) of(kind string) []canvasOp {
	var out []canvasOp
	for _, op := range c.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// fakeClock is advanced manually by tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

type harness struct {
	engine *Engine
	conn   *fakeConn
	dialer *fakeDialer
	cache  *memCache
	clock  *fakeClock
	sess   *session.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		conn:  newFakeConn(),
		cache: newMemCache(),
		clock: newFakeClock(),
		sess:  session.New(session.Identity{AccessToken: "tok", DisplayEmail: "me@example.com"}),
	}
	h.dialer = &fakeDialer{conn: h.conn}
	opts := DefaultOptions()
	opts.BaseURL = "ws://relay.test"
	opts.Clock = h.clock.Now
	h.engine = New(opts, h.dialer, h.cache, h.sess, nil)
	t.Cleanup(h.engine.Close)
	return h
}

// connect dials room-1 and pumps until the engine is open.
func (h *harness) connect(t *testing.T) {
	t.Helper()
	if err := h.engine.Connect("room-1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	h.pumpUntil(t, func() bool { return h.engine.State() == StateOpen })
}

// pumpUntil pumps at the fake clock's time until cond holds.
func (h *harness) pumpUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.engine.Pump(h.clock.Now())
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached (state %s)", h.engine.State())
}

// deliver pushes frames and pumps them through the engine.
func (h *harness) deliver(t *testing.T, frames ...any) {
	t.Helper()
	for _, f := range frames {
		h.conn.push(t, f)
	}
	h.engine.Pump(h.clock.Now())
}

func welcome(id string) proto.Welcome {
	return proto.Welcome{Type: proto.TypeWelcome, UserID: id, Name: "me@example.com", Color: "#0af"}
}

func pos(id string, x, y float64) proto.Pos {
	return proto.Pos{Type: proto.TypePos, Position: proto.Position{PlayerID: id, X: proto.Ptr(x), Y: proto.Ptr(y)}}
}
