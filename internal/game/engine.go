package game

import (
	"io"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Engine owns one game session: the board, the falling piece and the stats.
// It is not safe for concurrent use; every call must come from the single
// goroutine that drives the game.
type Engine struct {
	Board *Board
	Piece *Piece

	stats     Stats
	phase     Phase
	intN      func(n int) int
	observers []func(Snapshot)
	log       logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand draws spawned pieces from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.intN = r.IntN
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = l.WithField("component", "engine")
	}
}

// NewEngine creates an idle engine with an empty reference-size board.
func NewEngine(opts ...Option) *Engine {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	e := &Engine{
		Board: NewBoard(BoardWidth, BoardHeight),
		stats: NewStats(),
		phase: PhaseIdle,
		intN:  rand.IntN,
		log:   quiet,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// OnChange registers an observer that receives a snapshot after every
// spawn, move, drop and rotate.
func (e *Engine) OnChange(fn func(Snapshot)) {
	e.observers = append(e.observers, fn)
}

// Stats returns the current score, lines and level.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Phase returns where the engine is in the spawn/fall/lock cycle.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Spawn replaces the active piece with a random one centered at the top.
// If it collides immediately the game is over: the board and stats are
// reset and play continues with the new piece.
func (e *Engine) Spawn() {
	e.spawn()
	e.notify()
}

// Move shifts the piece horizontally by delta unless that would collide.
func (e *Engine) Move(delta int) {
	if e.Piece == nil {
		return
	}

	e.Piece.Pos.X += delta
	if e.collides() {
		e.Piece.Pos.X -= delta
	}
	e.notify()
}

// Drop moves the piece down one row. If it cannot move, the piece is locked
// into the board, the next piece is spawned and full rows are swept.
// Drop reports whether the piece locked.
func (e *Engine) Drop() bool {
	if e.Piece == nil {
		return false
	}

	e.Piece.Pos.Y++
	if !e.collides() {
		e.notify()
		return false
	}

	e.Piece.Pos.Y--
	e.phase = PhaseLocking
	e.Board.Merge(e.Piece.Shape, e.Piece.Pos)
	e.log.WithFields(logrus.Fields{
		"piece": e.Piece.Type,
		"x":     e.Piece.Pos.X,
		"y":     e.Piece.Pos.Y,
	}).Debug("piece locked")

	e.spawn()
	e.sweep()
	e.notify()
	return true
}

// Rotate turns the piece clockwise (dir > 0) or counter-clockwise and, if
// the result collides, probes horizontal kicks of +1, -2, +3, -4, ...
// applied cumulatively. Once the next offset exceeds the shape width the
// rotation is undone and the original x restored.
//
// The probe is linear, so a valid kick outside the sequence is never found.
func (e *Engine) Rotate(dir int) {
	if e.Piece == nil {
		return
	}

	p := e.Piece
	x := p.Pos.X
	offset := 1
	p.Shape.Rotate(dir)
	for e.collides() {
		p.Pos.X += offset
		if offset > 0 {
			offset = -(offset + 1)
		} else {
			offset = -(offset - 1)
		}
		if offset > p.Shape.Width() {
			p.Shape.Rotate(undo(dir))
			p.Pos.X = x
			break
		}
	}
	e.notify()
}

func undo(dir int) int {
	if dir > 0 {
		return -1
	}
	return 1
}

// Snapshot returns a deep copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Board: e.Board.Rows(),
		Piece: e.Piece.Clone(),
		Stats: e.stats,
		Phase: e.phase,
	}
}

func (e *Engine) spawn() {
	t := PieceType(Catalog[e.intN(len(Catalog))])
	shape, err := NewShape(t)
	if err != nil {
		// Catalog only holds known types.
		panic(err)
	}

	e.Piece = &Piece{
		Type:  t,
		Shape: shape,
		Pos: Position{
			X: e.Board.Width()/2 - shape.Width()/2,
			Y: 0,
		},
	}
	e.phase = PhaseFalling
	e.log.WithField("piece", t).Debug("piece spawned")

	if e.collides() {
		e.gameOver()
	}
}

func (e *Engine) gameOver() {
	e.log.WithFields(logrus.Fields{
		"score": e.stats.Score,
		"lines": e.stats.Lines,
		"level": e.stats.Level,
	}).Info("game over, board reset")

	e.Board.Reset()
	e.stats = NewStats()
}

// sweep clears full rows from the bottom up. Row 0 is never cleared.
// Each row cleared in the same pass is worth twice the previous one.
func (e *Engine) sweep() int {
	rowScore := 1
	cleared := 0
	for y := e.Board.Height() - 1; y > 0; y-- {
		if !e.Board.IsRowFull(y) {
			continue
		}

		e.Board.ClearRow(y)
		y++ // re-check the row that slid down into y

		e.stats.Score += rowScore * LineScore
		e.stats.Lines++
		rowScore *= 2
		cleared++

		if e.stats.Lines%LinesPerLevel == 0 {
			e.stats.Level++
			e.log.WithField("level", e.stats.Level).Info("level up")
		}
	}
	return cleared
}

func (e *Engine) collides() bool {
	return Collides(e.Board, e.Piece.Shape, e.Piece.Pos)
}

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, fn := range e.observers {
		fn(snap)
	}
}
