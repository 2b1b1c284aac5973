package game

import "time"

// Renderer draws one frame from the board and the active piece.
// It must treat both as read-only.
type Renderer interface {
	Render(b *Board, p *Piece)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(b *Board, p *Piece)

func (f RenderFunc) Render(b *Board, p *Piece) { f(b, p) }

// DropInterval returns the time between automatic drops at the given level.
func DropInterval(level int) time.Duration {
	d := BaseDropInterval - time.Duration(level-1)*DropIntervalStep
	return max(d, MinDropInterval)
}

// Loop drives an Engine from frame timestamps. It accumulates elapsed time
// and drops the piece once a level-dependent interval has passed. A Loop
// starts paused; the frontend schedules frames for as long as Tick reports
// true.
type Loop struct {
	engine   *Engine
	renderer Renderer

	elapsed time.Duration
	last    time.Time
	primed  bool
	paused  bool
	started bool
	stopped bool
}

// NewLoop creates a paused loop for engine. renderer may be nil.
func NewLoop(engine *Engine, renderer Renderer) *Loop {
	return &Loop{
		engine:   engine,
		renderer: renderer,
		paused:   true,
	}
}

// Tick processes one frame at time now and reports whether the next frame
// should be scheduled. Paused or stopped loops do nothing and return false.
func (l *Loop) Tick(now time.Time) bool {
	if l.stopped || l.paused {
		return false
	}

	// The first frame after a resume only sets the clock.
	if !l.primed {
		l.last = now
		l.primed = true
	}

	l.elapsed += now.Sub(l.last)
	l.last = now

	if l.elapsed > l.Interval() {
		l.Drop()
	}

	if l.renderer != nil {
		l.renderer.Render(l.engine.Board, l.engine.Piece)
	}
	return true
}

// Interval returns the drop interval for the engine's current level.
func (l *Loop) Interval() time.Duration {
	return DropInterval(l.engine.Stats().Level)
}

// Drop drops the piece one row and restarts the drop timer.
func (l *Loop) Drop() {
	l.engine.Drop()
	l.elapsed = 0
}

// Apply runs a player action. Actions are ignored while paused or stopped;
// Apply reports whether the action was run.
func (l *Loop) Apply(a Action) bool {
	if l.stopped || l.paused {
		return false
	}

	switch a {
	case ActionMoveLeft:
		l.engine.Move(-1)
	case ActionMoveRight:
		l.engine.Move(1)
	case ActionDrop:
		l.Drop()
	case ActionRotateCCW:
		l.engine.Rotate(-1)
	case ActionRotateCW:
		l.engine.Rotate(1)
	default:
		return false
	}
	return true
}

// Pause stops automatic drops and input until Resume.
func (l *Loop) Pause() {
	l.paused = true
}

// Resume unpauses the loop, spawning the first piece if none exists yet.
// The caller should schedule a frame afterwards.
func (l *Loop) Resume() {
	if l.stopped {
		return
	}
	l.paused = false
	l.started = true
	l.primed = false
	if l.engine.Piece == nil {
		l.engine.Spawn()
	}
}

// Toggle flips between paused and running and reports whether the loop
// is now running.
func (l *Loop) Toggle() bool {
	if l.paused {
		l.Resume()
	} else {
		l.Pause()
	}
	return !l.paused
}

// Stop ends the loop for good. Later ticks return false.
func (l *Loop) Stop() {
	l.stopped = true
}

func (l *Loop) Paused() bool  { return l.paused }
func (l *Loop) Stopped() bool { return l.stopped }

// Label is the caption for the start/pause control.
func (l *Loop) Label() string {
	switch {
	case !l.started:
		return "Start"
	case l.paused:
		return "Resume"
	default:
		return "Pause"
	}
}
