package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wirechat-room/internal/proto"
	"github.com/vovakirdan/wirechat-room/internal/session"
	"github.com/vovakirdan/wirechat-room/internal/store"
	"github.com/vovakirdan/wirechat-room/internal/utils"
)

// State is the connection lifecycle: idle → connecting → open → closed.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	placeholderID      = "self"
	defaultSpawnX      = 400
	defaultSpawnY      = 300
	moveReportInterval = 50 * time.Millisecond
	maxFramesPerPump   = 512
	closeWait          = 2 * time.Second
	historyLoadTimeout = 5 * time.Second
)

// Options tune the engine.
type Options struct {
	BaseURL      string
	World        Size
	Speed        float64 // world units per second
	HistoryLimit int
	DialTimeout  time.Duration
	// Clock stamps notices and chat lines for calls without an explicit time.
	Clock func() time.Time
	// OnMessage is called on the host goroutine for every new transcript row.
	OnMessage func(ChatMessage)
}

// DefaultOptions returns an 800x600 world at 180 units/s.
func DefaultOptions() Options {
	return Options{
		World:        Size{W: 800, H: 600},
		Speed:        180,
		HistoryLimit: MaxTranscript,
		DialTimeout:  10 * time.Second,
	}
}

type dialResult struct {
	seq  int
	conn Conn
	err  error
}

// Engine is the room-synchronization core. All methods must be called from
// one host goroutine; socket, dial and cache work happens on helper
// goroutines and is handed back through Pump.
type Engine struct {
	log     *zerolog.Logger
	opts    Options
	dialer  Dialer
	cache   store.ChatStore
	session *session.Session

	state   State
	baseURL string
	roomID  string
	notice  string
	lastErr error

	conn       Conn
	connID     string
	dials      chan dialResult
	dialSeq    int
	cancelDial context.CancelFunc

	entities   *Entities
	selfID     string
	input      *Input
	transcript *Transcript
	notices    *Notices

	moveLimiter *rate.Limiter
	moveDirty   bool
	looping     bool
	lastFrame   time.Time

	writer      *cacheWriter
	history     chan historyResult
	historySeq  int
	identityCh  chan struct{}
	unsubscribe func()
	closing     sync.WaitGroup
}

// New builds an engine. cache may be nil to run without a local transcript
// cache; sess may be nil for an anonymous session.
func New(opts Options, dialer Dialer, cache store.ChatStore, sess *session.Session, logger *zerolog.Logger) *Engine {
	def := DefaultOptions()
	if opts.World.W <= 0 || opts.World.H <= 0 {
		opts.World = def.World
	}
	if opts.Speed <= 0 {
		opts.Speed = def.Speed
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = def.HistoryLimit
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if sess == nil {
		sess = session.New(session.Identity{})
	}

	e := &Engine{
		log:         logger,
		opts:        opts,
		dialer:      dialer,
		cache:       cache,
		session:     sess,
		dials:       make(chan dialResult, 4),
		entities:    NewEntities(),
		input:       NewInput(),
		transcript:  NewTranscript(MaxTranscript),
		notices:     NewNotices(NoticeWindow),
		moveLimiter: newMoveLimiter(),
		history:     make(chan historyResult, 4),
		identityCh:  make(chan struct{}, 1),
	}
	if cache != nil {
		e.writer = newCacheWriter(logger)
	}
	e.unsubscribe = sess.Subscribe(func(session.Identity) {
		select {
		case e.identityCh <- struct{}{}:
		default:
		}
	})
	e.SetBaseURL(opts.BaseURL)
	return e
}

func newMoveLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(moveReportInterval), 1)
}

// SetBaseURL sets the socket base address. An empty value leaves a standing
// configuration notice until a non-empty one is supplied.
func (e *Engine) SetBaseURL(base string) {
	e.baseURL = strings.TrimSpace(base)
	if e.baseURL == "" {
		e.notice = textMissingBase
		return
	}
	e.notice = ""
}

// SetRoom switches the current room. The transcript is reset and the
// room's cached history is loaded in the background.
func (e *Engine) SetRoom(roomID string) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" || roomID == e.roomID {
		return
	}
	e.roomID = roomID
	e.transcript.Reset()
	e.loadHistory(roomID)
}

func (e *Engine) loadHistory(roomID string) {
	e.historySeq++
	if e.cache == nil {
		return
	}
	seq, cache, limit, out := e.historySeq, e.cache, e.opts.HistoryLimit, e.history
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), historyLoadTimeout)
		defer cancel()
		records, err := cache.GetRoom(ctx, roomID, limit)
		out <- historyResult{seq: seq, roomID: roomID, records: records, err: err}
	}()
}

// Connect opens the room socket. Any existing connection is closed first
// and the participant model restarts empty. A missing base address is
// reported as a system message and a *CoreError wrapping ErrNoBaseURL.
func (e *Engine) Connect(roomID string) error {
	now := e.opts.Clock()
	e.dropConn()
	e.resetModel()
	e.state = StateIdle

	if roomID = strings.TrimSpace(roomID); roomID != "" {
		e.SetRoom(roomID)
	}

	if e.baseURL == "" {
		e.notice = textMissingBase
		e.addSystem(textNoBaseURL, now)
		e.lastErr = coreError(ErrCodeConfig, textNoBaseURL, ErrNoBaseURL)
		e.log.Warn().Str("code", ErrCodeConfig).Msg("connect without base address")
		return e.lastErr
	}

	token := e.session.Current().AccessToken
	target, err := RoomURL(e.baseURL, e.roomID, token)
	if err != nil {
		e.addSystem(textDialFailed+err.Error(), now)
		e.lastErr = coreError(ErrCodeConfig, err.Error(), err)
		return e.lastErr
	}
	if e.dialer == nil {
		e.lastErr = coreError(ErrCodeConfig, "no dialer", errors.New("no dialer configured"))
		return e.lastErr
	}

	e.state = StateConnecting
	e.lastErr = nil
	e.dialSeq++
	seq, dialer, out := e.dialSeq, e.dialer, e.dials

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.DialTimeout)
	e.cancelDial = cancel
	go func() {
		defer cancel()
		conn, err := dialer.Dial(ctx, target)
		out <- dialResult{seq: seq, conn: conn, err: err}
	}()

	e.log.Info().Str("room", e.roomID).Str("url", redactURL(target)).Msg("connecting")
	return nil
}

// Disconnect notifies the server, closes the socket, stops the frame loop
// and clears participants and held input. Calling it without a connection
// only clears state.
func (e *Engine) Disconnect() {
	had := e.conn != nil || e.state == StateConnecting
	if e.conn != nil {
		if err := e.conn.Send(proto.NewLeave()); err != nil {
			e.log.Debug().Err(err).Str("conn_id", e.connID).Msg("leave notice not sent")
		}
	}
	e.dropConn()
	e.resetModel()
	e.input.Reset()

	if e.state == StateConnecting || e.state == StateOpen {
		e.state = StateClosed
	}
	if had {
		e.addSystem(textLeftRoom, e.opts.Clock())
		e.log.Info().Str("room", e.roomID).Msg("left room")
	}
}

// Close disconnects, gives socket closes up to closeWait to finish and
// waits for pending cache writes.
func (e *Engine) Close() {
	e.Disconnect()
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	e.waitClosing(closeWait)
	if e.writer != nil {
		e.writer.close()
		e.writer = nil
	}
}

// dropConn invalidates any in-flight dial, closes the socket and stops the loop.
func (e *Engine) dropConn() {
	e.dialSeq++
	if e.cancelDial != nil {
		e.cancelDial()
		e.cancelDial = nil
	}
	if e.conn != nil {
		e.closeConn(e.conn, e.connID)
		e.conn = nil
		e.connID = ""
	}
	e.looping = false
}

// closeConn runs the socket close handshake off the host goroutine.
func (e *Engine) closeConn(c Conn, connID string) {
	e.closing.Add(1)
	go func() {
		defer e.closing.Done()
		if err := c.Close(); err != nil {
			e.log.Debug().Err(err).Str("conn_id", connID).Msg("close socket")
		}
	}()
}

func (e *Engine) waitClosing(limit time.Duration) {
	done := make(chan struct{})
	go func() {
		e.closing.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(limit):
		e.log.Warn().Dur("wait", limit).Msg("socket close still pending")
	}
}

func (e *Engine) resetModel() {
	e.entities.Clear()
	e.selfID = ""
	e.moveDirty = false
}

// Say sends a trimmed, non-empty chat line. The line shows up in the
// transcript when the server relays it back.
func (e *Engine) Say(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if e.conn == nil || e.state != StateOpen {
		return ErrNotConnected
	}
	if err := e.conn.Send(proto.NewSay(text)); err != nil {
		return coreError(ErrCodeTransport, "send chat", err)
	}
	return nil
}

// Pump delivers everything that arrived since the previous call: dial
// results, inbound frames in order, cached history, identity changes and
// due join/leave notices.
func (e *Engine) Pump(now time.Time) {
	e.drainDials(now)
	e.drainFrames(now)
	e.drainHistory()
	e.drainIdentity()
	if e.notices.Due(now) {
		e.merge(e.notices.Flush(now)...)
	}
}

func (e *Engine) drainDials(now time.Time) {
	for {
		select {
		case res := <-e.dials:
			if res.seq != e.dialSeq || e.state != StateConnecting {
				if res.conn != nil {
					e.closeConn(res.conn, "")
				}
				continue
			}
			e.cancelDial = nil
			if res.err != nil {
				e.state = StateClosed
				e.lastErr = coreError(ErrCodeTransport, "dial room", res.err)
				e.addSystem(textDialFailed+res.err.Error(), now)
				e.log.Warn().Err(res.err).Str("room", e.roomID).Msg("dial failed")
				continue
			}
			e.open(res.conn, now)
		default:
			return
		}
	}
}

func (e *Engine) open(conn Conn, now time.Time) {
	e.conn = conn
	e.connID = utils.NewID()
	e.state = StateOpen
	e.ensureSelf()
	if err := conn.Send(proto.NewHello()); err != nil {
		e.log.Warn().Err(err).Str("conn_id", e.connID).Msg("send hello")
	}
	e.moveLimiter = newMoveLimiter()
	e.looping = true
	e.lastFrame = now
	e.savePref(store.PrefLastRoom, e.roomID)
	e.savePref(store.PrefLastBase, e.baseURL)
	e.log.Info().Str("room", e.roomID).Str("conn_id", e.connID).Msg("connected")
}

func (e *Engine) ensureSelf() {
	id := e.selfID
	if id == "" {
		id = placeholderID
	}
	if _, ok := e.entities.Get(id); ok {
		return
	}
	name := e.session.Current().DisplayEmail
	if name == "" {
		name = id
	}
	e.entities.Upsert(Player{ID: id, X: defaultSpawnX, Y: defaultSpawnY, Name: name, Color: placeholderColor})
}

func (e *Engine) drainFrames(now time.Time) {
	if e.conn == nil {
		return
	}
	frames := e.conn.Frames()
	for i := 0; i < maxFramesPerPump; i++ {
		select {
		case data, ok := <-frames:
			if !ok {
				e.transportClosed(now)
				return
			}
			e.handleFrame(data, now)
			if e.conn == nil {
				return
			}
		default:
			return
		}
	}
}

func (e *Engine) transportClosed(now time.Time) {
	err := e.conn.Err()
	e.lastErr = coreError(ErrCodeTransport, textDisconnected, err)
	e.log.Warn().Err(err).Str("room", e.roomID).Str("conn_id", e.connID).Msg("connection closed")
	e.dropConn()
	e.state = StateClosed
	e.addSystem(textDisconnected, now)
}

func (e *Engine) drainHistory() {
	for {
		select {
		case res := <-e.history:
			if res.seq != e.historySeq || res.roomID != e.roomID {
				continue
			}
			if res.err != nil {
				e.log.Warn().Err(res.err).Str("code", ErrCodePersistence).Str("room", res.roomID).Msg("load cached history")
				continue
			}
			msgs := make([]ChatMessage, 0, len(res.records))
			for _, r := range res.records {
				msgs = append(msgs, messageFromRecord(r))
			}
			e.merge(msgs...)
		default:
			return
		}
	}
}

func (e *Engine) drainIdentity() {
	select {
	case <-e.identityCh:
	default:
		return
	}
	p, ok := e.entities.Get(placeholderID)
	if !ok {
		return
	}
	if name := e.session.Current().DisplayEmail; name != "" && name != p.Name {
		p.Name = name
		e.entities.Upsert(p)
	}
}

func (e *Engine) merge(msgs ...ChatMessage) {
	added := e.transcript.Merge(msgs...)
	if e.opts.OnMessage == nil {
		return
	}
	for _, m := range added {
		e.opts.OnMessage(m)
	}
}

func (e *Engine) addSystem(text string, now time.Time) {
	e.merge(systemMessage(text, now))
}

func (e *Engine) persist(msgs []ChatMessage) {
	if e.writer == nil || len(msgs) == 0 {
		return
	}
	records := make([]store.ChatRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, m.Record(e.roomID))
	}
	cache := e.cache
	e.writer.enqueue(persistJob{what: "put_many", run: func(ctx context.Context) error {
		return cache.PutMany(ctx, records)
	}})
}

func (e *Engine) savePref(key, value string) {
	prefs, ok := e.cache.(store.PrefStore)
	if !ok || e.writer == nil || value == "" {
		return
	}
	e.writer.enqueue(persistJob{what: "set_pref", run: func(ctx context.Context) error {
		return prefs.SetPref(ctx, key, value)
	}})
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// RoomID returns the current room.
func (e *Engine) RoomID() string { return e.roomID }

// BaseURL returns the configured base address as entered.
func (e *Engine) BaseURL() string { return e.baseURL }

// Notice returns the standing configuration notice, if any.
func (e *Engine) Notice() string { return e.notice }

// LastError returns the most recent connection-level error.
func (e *Engine) LastError() error { return e.lastErr }

// SelfID returns the server-assigned id, empty before welcome.
func (e *Engine) SelfID() string { return e.selfID }

// Self returns the local participant, falling back to the placeholder.
func (e *Engine) Self() (Player, bool) {
	if e.selfID != "" {
		if p, ok := e.entities.Get(e.selfID); ok {
			return p, true
		}
	}
	return e.entities.Get(placeholderID)
}

// Players returns the latest published participant map. Do not modify it.
func (e *Engine) Players() map[string]Player { return e.entities.Players() }

// PlayerIDs returns participant ids in ascending order.
func (e *Engine) PlayerIDs() []string { return e.entities.IDs() }

// Messages returns a copy of the transcript, oldest first.
func (e *Engine) Messages() []ChatMessage { return e.transcript.Messages() }

// Input exposes the input controller to the host.
func (e *Engine) Input() *Input { return e.input }

// World returns the world size.
func (e *Engine) World() Size { return e.opts.World }
