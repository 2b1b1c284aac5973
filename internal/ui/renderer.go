package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-tetris/internal/game"
)

var (
	emptyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#000000"))

	boardBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("#444466"))

	// Piece cells get a light foreground so each block reads as outlined.
	cellStyles = func() [len(game.Palette)]lipgloss.Style {
		var styles [len(game.Palette)]lipgloss.Style
		styles[0] = emptyStyle
		for i := 1; i < len(game.Palette); i++ {
			styles[i] = lipgloss.NewStyle().
				Background(lipgloss.Color(game.Palette[i])).
				Foreground(lipgloss.Color("#EEEEEE"))
		}
		return styles
	}()

	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0D72")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#0DC2FF")).
			Padding(0, 1).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))
)

// RenderBoard draws the board with the piece on top. Each cell is two
// characters wide for a square-ish appearance.
func RenderBoard(b *game.Board, p *game.Piece) string {
	rows := game.Compose(b, p)

	lines := make([]string, len(rows))
	for y, row := range rows {
		var sb strings.Builder
		for _, c := range row {
			sb.WriteString(renderCell(c))
		}
		lines[y] = sb.String()
	}

	return boardBorderStyle.Render(strings.Join(lines, "\n"))
}

func renderCell(c game.Cell) string {
	if c <= game.Empty || int(c) >= len(cellStyles) {
		return emptyStyle.Render("  ")
	}
	return cellStyles[c].Render("[]")
}

// RenderHUD renders score, level and lines plus the start/pause label.
// Extra lines are appended below the numbers.
func RenderHUD(stats game.Stats, label string, extra ...string) string {
	parts := []string{
		titleStyle.Render("TETRIS"),
		"",
		labelStyle.Render("Score"),
		fmt.Sprintf("%d", stats.Score),
		labelStyle.Render("Level"),
		fmt.Sprintf("%d", stats.Level),
		labelStyle.Render("Lines"),
		fmt.Sprintf("%d", stats.Lines),
		"",
	}
	if label != "" {
		parts = append(parts, buttonStyle.Render(label), "")
	}
	parts = append(parts, extra...)

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}

func layout(board, hud string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", hud) + "\n"
}
