package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-tetris/internal/game"
)

// FrameSource yields snapshots of a remote game.
type FrameSource interface {
	Frames() <-chan game.Snapshot
}

// snapshotMsg carries a new snapshot from the feed.
type snapshotMsg game.Snapshot

// feedClosedMsg reports the end of the feed.
type feedClosedMsg struct{}

// WatchModel is a read-only Bubbletea model showing a spectator feed.
type WatchModel struct {
	source   FrameSource
	player   string
	snap     *game.Snapshot
	closed   bool
	quitting bool
}

// NewWatchModel creates a model that renders frames from source.
func NewWatchModel(source FrameSource, player string) WatchModel {
	return WatchModel{
		source: source,
		player: player,
	}
}

// Init starts listening for frames.
func (m WatchModel) Init() tea.Cmd {
	return waitForFrame(m.source)
}

// Update handles incoming frames and the quit keys.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case snapshotMsg:
		snap := game.Snapshot(msg)
		m.snap = &snap
		return m, waitForFrame(m.source)

	case feedClosedMsg:
		m.closed = true
	}

	return m, nil
}

// View renders the latest snapshot.
func (m WatchModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	if m.snap == nil {
		return "Waiting for the first frame...\n"
	}

	board, piece := m.snap.Restore()
	status := fmt.Sprintf("Watching %s", m.player)
	if m.closed {
		status = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render("Feed closed")
	}

	hud := RenderHUD(m.snap.Stats, "", status, "", helpStyle.Render("q quit"))
	return layout(RenderBoard(board, piece), hud)
}

func waitForFrame(source FrameSource) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-source.Frames()
		if !ok {
			return feedClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}
