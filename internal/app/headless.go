package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/vovakirdan/wirechat-room/internal/core"
)

const (
	headlessTick    = time.Second / 60
	maxPendingLines = 32
)

// HeadlessOptions configure the terminal host.
type HeadlessOptions struct {
	// Input supplies chat lines, one per line; "/quit" leaves.
	Input io.Reader
	// Wander lists directions walked in turn, one per Leg.
	Wander   []core.Direction
	Leg      time.Duration
	Duration time.Duration
}

// ParseWander turns "right,down,left,up" into directions.
func ParseWander(list string) ([]core.Direction, error) {
	var out []core.Direction
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, ok := core.ParseDirection(part)
		if !ok {
			return nil, fmt.Errorf("unknown direction %q", strings.TrimSpace(part))
		}
		out = append(out, d)
	}
	return out, nil
}

// RunHeadless drives the engine from a ticker on the calling goroutine.
// It returns when ctx is done, the duration elapses, input asks to quit or
// the connection closes.
func (a *App) RunHeadless(ctx context.Context, opts HeadlessOptions) error {
	defer a.Close()
	start := time.Now()
	defer func() {
		a.log.Info().
			Str("room", a.cfg.RoomID).
			Str("session", durafmt.Parse(time.Since(start).Round(time.Second)).LimitFirstN(2).String()).
			Msg("bot finished")
	}()

	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}
	if opts.Leg <= 0 {
		opts.Leg = time.Second
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	var lines <-chan string
	if opts.Input != nil {
		lines = readLines(ctx, opts.Input)
	}

	if err := a.engine.Connect(a.cfg.RoomID); err != nil {
		return err
	}

	ticker := time.NewTicker(headlessTick)
	defer ticker.Stop()

	// Lines typed before the room opens wait here.
	var pending []string
	wander := newWanderer(opts.Wander, opts.Leg, start)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if line == "/quit" {
				return nil
			}
			if a.engine.State() != core.StateOpen {
				pending = queueLine(pending, line)
				continue
			}
			a.say(line)
		case now := <-ticker.C:
			wander.apply(a.engine.Input(), now)
			a.engine.Pump(now)
			if a.engine.State() == core.StateOpen {
				for _, line := range pending {
					a.say(line)
				}
				pending = nil
			}
			a.engine.Frame(now)
			if a.engine.State() == core.StateClosed {
				return a.engine.LastError()
			}
		}
	}
}

func (a *App) say(line string) {
	if err := a.engine.Say(line); err != nil {
		a.log.Warn().Err(err).Msg("say")
	}
}

// queueLine keeps at most maxPendingLines, dropping the oldest.
func queueLine(pending []string, line string) []string {
	pending = append(pending, line)
	if len(pending) > maxPendingLines {
		pending = pending[len(pending)-maxPendingLines:]
	}
	return pending
}

// readLines forwards non-empty input lines until r ends or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// wanderer holds one direction per leg, cycling through the pattern.
type wanderer struct {
	pattern []core.Direction
	leg     time.Duration
	start   time.Time
	current core.Direction
}

func newWanderer(pattern []core.Direction, leg time.Duration, start time.Time) *wanderer {
	return &wanderer{pattern: pattern, leg: leg, start: start}
}

func (w *wanderer) at(now time.Time) core.Direction {
	if len(w.pattern) == 0 {
		return 0
	}
	i := int(now.Sub(w.start)/w.leg) % len(w.pattern)
	return w.pattern[i]
}

func (w *wanderer) apply(in *core.Input, now time.Time) {
	next := w.at(now)
	if next == w.current {
		return
	}
	if w.current != 0 {
		in.SetKey(w.current, false)
	}
	if next != 0 {
		in.SetKey(next, true)
	}
	w.current = next
}

// PrintMessage writes one transcript row with identities masked.
func PrintMessage(w io.Writer, m core.ChatMessage) {
	stamp := time.UnixMilli(m.T).Format("15:04:05")
	_, _ = fmt.Fprintf(w, "[%s] %s\n", stamp, m.DisplayLine())
}
