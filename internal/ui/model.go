package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-tetris/internal/game"
)

// frameMsg asks the loop to process one frame. gen ties it to the run
// that scheduled it so a pause/resume never leaves two frame chains alive.
type frameMsg struct {
	gen int
	at  time.Time
}

// screen is the loop's render target. It keeps the last drawn board so
// View can return it without touching game state.
type screen struct {
	board string
}

func (s *screen) Render(b *game.Board, p *game.Piece) {
	s.board = RenderBoard(b, p)
}

// Model is the Bubbletea model for a local game.
type Model struct {
	engine   *game.Engine
	loop     *game.Loop
	screen   *screen
	keys     map[string]game.Action
	frame    time.Duration
	gen      int
	status   func() string
	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithStatus adds a line to the HUD, refreshed on every render.
func WithStatus(fn func() string) ModelOption {
	return func(m *Model) {
		m.status = fn
	}
}

// NewModel creates a TUI model driving engine. keys maps key names as
// reported by Bubbletea to actions; fps sets the frame rate.
func NewModel(engine *game.Engine, keys map[string]game.Action, fps int, opts ...ModelOption) Model {
	scr := &screen{}
	scr.Render(engine.Board, engine.Piece)

	m := Model{
		engine: engine,
		loop:   game.NewLoop(engine, scr),
		screen: scr,
		keys:   keys,
		frame:  time.Second / time.Duration(fps),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init does nothing; the game waits for the start key.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.loop.Tick(msg.at) {
			return m, m.nextFrame()
		}
	}

	return m, nil
}

// View renders the last frame and the HUD.
func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var extra []string
	if m.status != nil {
		if s := m.status(); s != "" {
			extra = append(extra, s, "")
		}
	}
	extra = append(extra, helpStyle.Render("←/→ move  ↓ drop\nQ/W ↑ rotate\nenter start/pause\nesc quit"))

	return layout(m.screen.board, RenderHUD(m.engine.Stats(), m.loop.Label(), extra...))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "esc":
		m.loop.Stop()
		m.quitting = true
		return m, tea.Quit

	case "enter", " ", "space":
		if !m.loop.Toggle() {
			return m, nil
		}
		m.gen++
		return m, m.frameNow()

	default:
		if a, ok := m.keys[key]; ok {
			m.loop.Apply(a)
		}
	}

	return m, nil
}

func (m Model) frameNow() tea.Cmd {
	gen := m.gen
	return func() tea.Msg {
		return frameMsg{gen: gen, at: time.Now()}
	}
}

func (m Model) nextFrame() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}
