// Package gui draws a local game in a desktop window using Ebitengine.
package gui

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/amalg/go-tetris/internal/game"
)

const (
	CellSize   = 20
	PanelWidth = 160
	padding    = 8
)

var (
	background = color.RGBA{0x10, 0x10, 0x18, 0xff}
	gridLine   = color.RGBA{0xe0, 0xe0, 0xe0, 0x40}
)

// DefaultKeys maps window keys to actions.
var DefaultKeys = map[ebiten.Key]game.Action{
	ebiten.KeyArrowLeft:  game.ActionMoveLeft,
	ebiten.KeyArrowRight: game.ActionMoveRight,
	ebiten.KeyArrowDown:  game.ActionDrop,
	ebiten.KeyQ:          game.ActionRotateCCW,
	ebiten.KeyW:          game.ActionRotateCW,
	ebiten.KeyArrowUp:    game.ActionRotateCW,
}

// Palette converts game.Palette into drawable colors. Entries that fail to
// parse fall back to white.
func Palette() []color.Color {
	out := make([]color.Color, len(game.Palette))
	for i, hex := range game.Palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			out[i] = color.White
			continue
		}
		out[i] = c
	}
	return out
}

// Game implements ebiten.Game for one local player.
type Game struct {
	engine *game.Engine
	loop   *game.Loop
	keys   map[ebiten.Key]game.Action
	colors []color.Color
	cells  [][]game.Cell
}

// NewGame wraps engine. The game starts paused; Space or Enter starts it.
func NewGame(engine *game.Engine) *Game {
	g := &Game{
		engine: engine,
		keys:   DefaultKeys,
		colors: Palette(),
	}
	g.loop = game.NewLoop(engine, game.RenderFunc(g.render))
	g.render(engine.Board, engine.Piece)
	return g
}

func (g *Game) render(b *game.Board, p *game.Piece) {
	g.cells = game.Compose(b, p)
}

// Update handles input and advances the loop. Ebitengine calls it at a
// fixed tick rate.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.loop.Stop()
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.loop.Toggle()
	}

	for key, action := range g.keys {
		if inpututil.IsKeyJustPressed(key) {
			g.loop.Apply(action)
		}
	}

	g.loop.Tick(time.Now())
	return nil
}

// Draw paints the last rendered board and the stats panel.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	for y, row := range g.cells {
		for x, c := range row {
			px := float32(padding + x*CellSize)
			py := float32(padding + y*CellSize)
			if c != game.Empty && int(c) < len(g.colors) {
				vector.DrawFilledRect(screen, px, py, CellSize, CellSize, g.colors[c], false)
			}
			vector.StrokeRect(screen, px, py, CellSize, CellSize, 1, gridLine, false)
		}
	}

	stats := g.engine.Stats()
	hud := fmt.Sprintf("Score: %d\nLines: %d\nLevel: %d\n\n[%s]\n\narrows move/drop\nQ/W rotate\nspace start/pause\nesc quit",
		stats.Score, stats.Lines, stats.Level, g.loop.Label())
	ebitenutil.DebugPrintAt(screen, hud, 2*padding+game.BoardWidth*CellSize, padding)
}

// Layout returns the fixed logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenSize()
}

// ScreenSize is the logical window size in pixels.
func ScreenSize() (int, int) {
	return game.BoardWidth*CellSize + PanelWidth + 3*padding, game.BoardHeight*CellSize + 2*padding
}
