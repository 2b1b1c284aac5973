package game

import (
	"fmt"
	"time"
)

// Cell is the value of one board or shape cell.
// Zero is empty; 1-7 are piece color indices.
type Cell int

// Empty is the value of an unoccupied cell.
const Empty Cell = 0

// Board dimensions and timing for the reference game.
const (
	BoardWidth  = 12
	BoardHeight = 20

	BaseDropInterval = 1000 * time.Millisecond
	MinDropInterval  = 100 * time.Millisecond
	DropIntervalStep = 100 * time.Millisecond

	LinesPerLevel = 10
	LineScore     = 10
)

// Position represents a coordinate on the board. Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Action is a discrete player command produced by an input device.
type Action int

const (
	ActionMoveLeft Action = iota
	ActionMoveRight
	ActionDrop
	ActionRotateCCW
	ActionRotateCW
)

var actionNames = map[Action]string{
	ActionMoveLeft:  "left",
	ActionMoveRight: "right",
	ActionDrop:      "drop",
	ActionRotateCCW: "rotate_ccw",
	ActionRotateCW:  "rotate_cw",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction returns the action with the given name, as used in key binding files.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Phase is the engine's position in the spawn/fall/lock cycle.
type Phase int

const (
	PhaseIdle    Phase = iota // No active piece yet
	PhaseFalling              // A piece is falling and accepting input
	PhaseLocking              // A piece is being merged into the board
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFalling:
		return "falling"
	case PhaseLocking:
		return "locking"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stats is the score/lines/level triple shown to the player.
type Stats struct {
	Score int `json:"score"`
	Lines int `json:"lines"`
	Level int `json:"level"`
}

// NewStats returns the stats of a fresh game.
func NewStats() Stats {
	return Stats{Level: 1}
}

// Snapshot is a deep copy of the engine state, safe to hand to other goroutines.
type Snapshot struct {
	Board [][]Cell `json:"board"`
	Piece *Piece   `json:"piece,omitempty"`
	Stats Stats    `json:"stats"`
	Phase Phase    `json:"phase"`
}

// Restore rebuilds a board and piece from the snapshot for rendering.
func (s Snapshot) Restore() (*Board, *Piece) {
	return BoardFromRows(s.Board), s.Piece.Clone()
}
