package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	frames int
	last   [][]Cell
}

func (r *countingRenderer) Render(b *Board, p *Piece) {
	r.frames++
	r.last = Compose(b, p)
}

func TestDropInterval(t *testing.T) {
	assert.Equal(t, 1000*time.Millisecond, DropInterval(1))
	assert.Equal(t, 900*time.Millisecond, DropInterval(2))
	assert.Equal(t, 200*time.Millisecond, DropInterval(9))
	assert.Equal(t, 100*time.Millisecond, DropInterval(10))
	for level := 10; level < 30; level++ {
		assert.Equal(t, MinDropInterval, DropInterval(level), "level %d", level)
	}
}

func TestLoopStartsPaused(t *testing.T) {
	e := newTestEngine()
	r := &countingRenderer{}
	l := NewLoop(e, r)

	assert.True(t, l.Paused())
	assert.Equal(t, "Start", l.Label())
	assert.False(t, l.Tick(time.Now()))
	assert.Zero(t, r.frames)
	assert.False(t, l.Apply(ActionDrop))
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestLoopResumeSpawns(t *testing.T) {
	e := newTestEngine()
	l := NewLoop(e, nil)

	l.Resume()
	require.NotNil(t, e.Piece)
	assert.Equal(t, "Pause", l.Label())

	piece := e.Piece
	l.Pause()
	assert.Equal(t, "Resume", l.Label())
	l.Resume()
	assert.Same(t, piece, e.Piece, "resume must not respawn")
}

func TestLoopToggle(t *testing.T) {
	l := NewLoop(newTestEngine(), nil)

	assert.True(t, l.Toggle())
	assert.False(t, l.Paused())
	assert.False(t, l.Toggle())
	assert.True(t, l.Paused())
}

func TestLoopDropsAfterInterval(t *testing.T) {
	e := newTestEngine()
	r := &countingRenderer{}
	l := NewLoop(e, r)
	l.Resume()
	start := time.Unix(100, 0)

	require.True(t, l.Tick(start))
	assert.Equal(t, 0, e.Piece.Pos.Y)

	require.True(t, l.Tick(start.Add(time.Second)))
	assert.Equal(t, 0, e.Piece.Pos.Y, "drop needs strictly more than the interval")

	require.True(t, l.Tick(start.Add(time.Second+time.Millisecond)))
	assert.Equal(t, 1, e.Piece.Pos.Y)

	require.True(t, l.Tick(start.Add(1500*time.Millisecond)))
	assert.Equal(t, 1, e.Piece.Pos.Y, "timer restarts after a drop")

	assert.Equal(t, 4, r.frames)
	assert.Equal(t, Compose(e.Board, e.Piece), r.last)
}

func TestLoopManualDropResetsTimer(t *testing.T) {
	e := newTestEngine()
	l := NewLoop(e, nil)
	l.Resume()
	start := time.Unix(100, 0)

	l.Tick(start)
	l.Tick(start.Add(900 * time.Millisecond))
	require.True(t, l.Apply(ActionDrop))
	assert.Equal(t, 1, e.Piece.Pos.Y)

	l.Tick(start.Add(1500 * time.Millisecond))
	assert.Equal(t, 1, e.Piece.Pos.Y)
}

func TestLoopIgnoresTimeWhilePaused(t *testing.T) {
	e := newTestEngine()
	l := NewLoop(e, nil)
	l.Resume()
	start := time.Unix(100, 0)

	l.Tick(start)
	l.Pause()
	assert.False(t, l.Tick(start.Add(5*time.Second)))
	l.Resume()

	// The first frame after resuming only primes the clock.
	l.Tick(start.Add(10 * time.Second))
	assert.Equal(t, 0, e.Piece.Pos.Y)
	l.Tick(start.Add(10*time.Second + 500*time.Millisecond))
	assert.Equal(t, 0, e.Piece.Pos.Y)
}

func TestLoopFasterAtHigherLevels(t *testing.T) {
	e := newTestEngine()
	l := NewLoop(e, nil)
	l.Resume()
	e.stats.Level = 12
	start := time.Unix(100, 0)

	assert.Equal(t, MinDropInterval, l.Interval())
	l.Tick(start)
	l.Tick(start.Add(101 * time.Millisecond))
	assert.Equal(t, 1, e.Piece.Pos.Y)
}

func TestLoopApply(t *testing.T) {
	e := newTestEngine()
	l := NewLoop(e, nil)
	l.Resume()
	place(t, e, PieceT, 4, 4)

	require.True(t, l.Apply(ActionMoveLeft))
	assert.Equal(t, 3, e.Piece.Pos.X)
	require.True(t, l.Apply(ActionMoveRight))
	require.True(t, l.Apply(ActionMoveRight))
	assert.Equal(t, 5, e.Piece.Pos.X)

	require.True(t, l.Apply(ActionRotateCW))
	assert.Equal(t, Shape{{0, 1, 0}, {0, 1, 1}, {0, 1, 0}}, e.Piece.Shape)
	require.True(t, l.Apply(ActionRotateCCW))
	assert.Equal(t, mustShape(t, PieceT), e.Piece.Shape)

	assert.False(t, l.Apply(Action(42)))

	l.Pause()
	assert.False(t, l.Apply(ActionMoveLeft))
	assert.Equal(t, 5, e.Piece.Pos.X)
}

func TestLoopStop(t *testing.T) {
	e := newTestEngine()
	l := NewLoop(e, nil)
	l.Resume()
	l.Stop()

	assert.True(t, l.Stopped())
	assert.False(t, l.Tick(time.Now()))
	assert.False(t, l.Apply(ActionDrop))
	l.Resume()
	assert.False(t, l.Tick(time.Now()))
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{ActionMoveLeft, ActionMoveRight, ActionDrop, ActionRotateCCW, ActionRotateCW} {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := ParseAction("hold")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
