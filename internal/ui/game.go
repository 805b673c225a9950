// Package ui hosts the room engine in an ebiten window: it samples the
// keyboard, pointer and focus each tick, pumps the engine and paints the
// world next to a participant list and chat panel.
package ui

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/vovakirdan/wirechat-room/internal/core"
	"github.com/vovakirdan/wirechat-room/internal/mask"
	"github.com/vovakirdan/wirechat-room/internal/palette"
)

const (
	panelWidth      = 280
	lineHeight      = 18
	panelPadding    = 10
	fontSize        = 13
	transcriptWidth = 34
)

var (
	panelColor  = color.RGBA{R: 0x1c, G: 0x1f, B: 0x27, A: 0xff}
	mutedColor  = color.RGBA{R: 0x88, G: 0x8c, B: 0x96, A: 0xff}
	noticeColor = color.RGBA{R: 0xf5, G: 0xa6, B: 0x23, A: 0xff}
	inputColor  = color.RGBA{R: 0x26, G: 0x2a, B: 0x34, A: 0xff}
)

var directionKeys = map[core.Direction][]ebiten.Key{
	core.DirUp:    {ebiten.KeyW, ebiten.KeyArrowUp},
	core.DirDown:  {ebiten.KeyS, ebiten.KeyArrowDown},
	core.DirLeft:  {ebiten.KeyA, ebiten.KeyArrowLeft},
	core.DirRight: {ebiten.KeyD, ebiten.KeyArrowRight},
}

// Game implements ebiten.Game around one engine. Update and Draw run on the
// ebiten goroutine, which is the engine's host goroutine.
type Game struct {
	ctx    context.Context
	engine *core.Engine
	room   string
	log    *zerolog.Logger
	face   text.Face
	world  *ebiten.Image

	chat    *ChatBox
	lastErr error
}

// NewGame prepares the window host for engine.
func NewGame(ctx context.Context, engine *core.Engine, room string, logger *zerolog.Logger) (*Game, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	w := engine.World()
	return &Game{
		ctx:    ctx,
		engine: engine,
		room:   room,
		log:    logger,
		face:   &text.GoTextFace{Source: src, Size: fontSize},
		world:  ebiten.NewImage(int(w.W), int(w.H)),
		chat:   NewChatBox(),
	}, nil
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, engine *core.Engine, room string, logger *zerolog.Logger) error {
	game, err := NewGame(ctx, engine, room, logger)
	if err != nil {
		return err
	}
	w := engine.World()
	ebiten.SetWindowSize(int(w.W)+panelWidth, int(w.H))
	ebiten.SetWindowTitle("wirechat room: " + room)
	ebiten.SetTPS(60)

	if err := engine.Connect(room); err != nil {
		logger.Warn().Err(err).Msg("connect")
	}
	return ebiten.RunGame(game)
}

// Update samples input and advances the engine by one tick.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.updateChat()
	g.updateControls()

	in := g.engine.Input()
	in.SetWindowFocused(ebiten.IsFocused())
	in.SetPageVisible(!ebiten.IsWindowMinimized())
	in.SetEditFocused(g.chat.Active())
	for dir, keys := range directionKeys {
		in.SetKey(dir, anyPressed(keys))
	}

	w := g.engine.World()
	mx, my := ebiten.CursorPosition()
	in.SetPointer(core.MapPointer(float64(mx), float64(my), core.Rect{W: w.W, H: w.H}, w))

	now := time.Now()
	g.engine.Pump(now)
	g.engine.Frame(now)
	return nil
}

func (g *Game) updateChat() {
	if !g.chat.Active() {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyT) {
			g.chat.Open()
		}
		return
	}

	g.chat.Type(ebiten.AppendInputChars(nil))
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.chat.Backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.chat.Cancel()
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if line := g.chat.Submit(); line != "" {
			if err := g.engine.Say(line); err != nil {
				g.lastErr = err
				g.log.Debug().Err(err).Msg("say")
			}
		}
	}
}

func (g *Game) updateControls() {
	if g.chat.Active() {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.lastErr = g.engine.Connect(g.room)
	case inpututil.IsKeyJustPressed(ebiten.KeyF6):
		g.engine.Disconnect()
	}
}

// Draw paints the world and the side panel.
func (g *Game) Draw(screen *ebiten.Image) {
	g.engine.Draw(screenCanvas{dst: g.world, face: g.face})
	screen.DrawImage(g.world, nil)

	w := g.engine.World()
	x0 := float32(w.W)
	vector.DrawFilledRect(screen, x0, 0, panelWidth, float32(w.H), panelColor, false)

	y := float64(panelPadding)
	px := float64(x0) + panelPadding
	g.text(screen, fmt.Sprintf("room %s  [%s]", g.room, g.engine.State()), px, y, labelColor)
	y += lineHeight
	if notice := g.engine.Notice(); notice != "" {
		for _, line := range wrap(notice, 34) {
			g.text(screen, line, px, y, noticeColor)
			y += lineHeight
		}
	}

	y += lineHeight / 2
	players := g.engine.Players()
	for _, id := range g.engine.PlayerIDs() {
		p := players[id]
		vector.DrawFilledCircle(screen, float32(px)+4, float32(y)+lineHeight/2, 4, palette.MustParse(p.Color), true)
		name := mask.Display(p.Name)
		if id == g.engine.SelfID() {
			name += " (you)"
		}
		g.text(screen, name, px+14, y, labelColor)
		y += lineHeight
	}

	inputY := w.H - lineHeight - panelPadding
	g.drawTranscript(screen, px, y+lineHeight/2, inputY-lineHeight/2)

	vector.DrawFilledRect(screen, float32(px)-4, float32(inputY)-2, panelWidth-2*panelPadding+8, lineHeight+4, inputColor, false)
	prompt := "Enter: chat  F5: connect  F6: leave"
	clr := mutedColor
	if g.chat.Active() {
		prompt, clr = "> "+g.chat.Text()+"_", labelColor
	}
	g.text(screen, prompt, px, inputY, clr)
}

func (g *Game) drawTranscript(screen *ebiten.Image, x, top, bottom float64) {
	rows := int((bottom - top) / lineHeight)
	if rows <= 0 {
		return
	}
	lines := transcriptLines(g.engine.Messages(), transcriptWidth)
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, line := range lines {
		g.text(screen, line, x, top+float64(i)*lineHeight, mutedColor)
	}
}

// transcriptLines renders each row as "15:04:05 name: text", wrapped to width runes.
func transcriptLines(msgs []core.ChatMessage, width int) []string {
	var lines []string
	for _, m := range msgs {
		stamp := time.UnixMilli(m.T).Format("15:04:05")
		lines = append(lines, wrap(stamp+" "+m.DisplayLine(), width)...)
	}
	return lines
}

func (g *Game) text(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, g.face, op)
}

// Layout keeps a fixed logical size: the world plus the side panel.
func (g *Game) Layout(_, _ int) (int, int) {
	w := g.engine.World()
	return int(w.W) + panelWidth, int(w.H)
}

func anyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
