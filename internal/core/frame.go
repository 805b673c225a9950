package core

import (
	"math"
	"time"

	"github.com/vovakirdan/wirechat-room/internal/mask"
	"github.com/vovakirdan/wirechat-room/internal/proto"
)

const (
	maxFrameStep  = 50 * time.Millisecond
	worldMargin   = 10
	moveEpsilon   = 0.5
	smoothRate    = 10
	smoothEpsilon = 0.01

	PlayerRadius = 8
	hoverSlack   = 4
	gridStep     = 40
	labelOffset  = 14
)

// Looping reports whether the frame loop is armed.
func (e *Engine) Looping() bool { return e.looping }

// Frame advances local prediction, reports movement and smooths remote
// participants toward their targets. It does nothing unless the
// connection is open.
func (e *Engine) Frame(now time.Time) {
	if !e.looping || e.state != StateOpen {
		return
	}

	dt := now.Sub(e.lastFrame)
	e.lastFrame = now
	dt = max(0, min(dt, maxFrameStep))
	secs := dt.Seconds()

	e.stepSelf(secs)
	e.reportMove(now)
	e.stepRemotes(secs)
}

func (e *Engine) stepSelf(dt float64) {
	if dt <= 0 || !e.input.CanMove() {
		return
	}
	self, ok := e.Self()
	if !ok {
		return
	}
	axis := e.input.Axis()
	if axis.X == 0 && axis.Y == 0 {
		return
	}

	w, h := e.opts.World.W, e.opts.World.H
	step := e.opts.Speed * dt
	nx := clamp(self.X+axis.X*step, worldMargin, w-worldMargin)
	ny := clamp(self.Y+axis.Y*step, worldMargin, h-worldMargin)
	if math.Abs(nx-self.X) <= moveEpsilon && math.Abs(ny-self.Y) <= moveEpsilon {
		return
	}

	self.X, self.Y = nx, ny
	e.entities.Upsert(self)
	e.moveDirty = true
}

// reportMove sends the latest self position at most once per limiter slot.
// A pending position stays pending until a slot frees up.
func (e *Engine) reportMove(now time.Time) {
	if !e.moveDirty || e.conn == nil {
		return
	}
	if !e.moveLimiter.AllowN(now, 1) {
		return
	}
	self, ok := e.Self()
	if !ok {
		e.moveDirty = false
		return
	}
	if err := e.conn.Send(proto.NewMove(self.X, self.Y, now.UnixMilli())); err != nil {
		e.log.Debug().Err(err).Str("conn_id", e.connID).Msg("move not sent")
		return
	}
	e.moveDirty = false
}

func (e *Engine) stepRemotes(dt float64) {
	if dt <= 0 || len(e.entities.Targets()) == 0 {
		return
	}
	alpha := 1 - math.Exp(-smoothRate*dt)

	var moved []Player
	for id, target := range e.entities.Targets() {
		if id == e.selfID {
			continue
		}
		p, ok := e.entities.Get(id)
		if !ok {
			continue
		}
		dx, dy := target.X-p.X, target.Y-p.Y
		if math.Abs(dx) <= smoothEpsilon && math.Abs(dy) <= smoothEpsilon {
			continue
		}
		p.X += dx * alpha
		p.Y += dy * alpha
		moved = append(moved, p)
	}
	if len(moved) == 0 {
		return
	}
	e.entities.Update(func(players map[string]Player) {
		for _, p := range moved {
			players[p.ID] = p
		}
	})
}

// Draw paints the grid, one circle per participant in id order and the
// masked name of the hovered participant.
func (e *Engine) Draw(c Canvas) {
	c.Clear()

	w, h := e.opts.World.W, e.opts.World.H
	for x := 0.0; x <= w; x += gridStep {
		c.Line(x, 0, x, h)
	}
	for y := 0.0; y <= h; y += gridStep {
		c.Line(0, y, w, y)
	}

	players := e.entities.Players()
	pointer := e.input.Pointer()
	var hovered *Player
	for _, id := range e.entities.IDs() {
		p := players[id]
		c.Circle(p.X, p.Y, PlayerRadius, firstNonEmpty(p.Color, defaultColor))
		if math.Hypot(p.X-pointer.X, p.Y-pointer.Y) <= PlayerRadius+hoverSlack {
			hovered = &p
		}
	}
	if hovered != nil {
		c.Label(mask.Display(hovered.Name), hovered.X, hovered.Y-labelOffset)
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
