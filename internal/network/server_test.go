package network

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-tetris/internal/game"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func startServer(t *testing.T, opts ...func(*Server)) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", "Alice", quietLogger())
	for _, opt := range opts {
		opt(s)
	}
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

func nextFrame(t *testing.T, c *Client) game.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-c.Frames():
		require.True(t, ok, "feed closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return game.Snapshot{}
	}
}

func TestWatcherReceivesFrames(t *testing.T) {
	s := startServer(t)
	engine := game.NewEngine()
	engine.OnChange(s.Publish)
	engine.Spawn()
	first := engine.Snapshot()

	c, err := Dial(s.Addr().String(), "Bob")
	require.NoError(t, err)
	defer c.Close()

	assert.NotEmpty(t, c.WatcherID())
	assert.Equal(t, "Alice", c.Player())
	assert.Equal(t, first, nextFrame(t, c), "joining sends the latest frame")

	engine.Move(1)
	assert.Equal(t, engine.Snapshot(), nextFrame(t, c))
	assert.Equal(t, 1, s.WatcherCount())
}

func TestWatcherWithoutFramesYet(t *testing.T) {
	s := startServer(t)

	c, err := Dial(s.Addr().String(), "Bob")
	require.NoError(t, err)
	defer c.Close()

	engine := game.NewEngine()
	engine.Spawn()
	s.Publish(engine.Snapshot())
	assert.Equal(t, engine.Snapshot(), nextFrame(t, c))
}

func TestWatcherLeaves(t *testing.T) {
	s := startServer(t)

	c, err := Dial(s.Addr().String(), "Bob")
	require.NoError(t, err)
	require.Equal(t, 1, s.WatcherCount())

	c.Close()
	assert.Eventually(t, func() bool { return s.WatcherCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServerFull(t *testing.T) {
	s := startServer(t, func(s *Server) { s.maxWatchers = 1 })

	c, err := Dial(s.Addr().String(), "Bob")
	require.NoError(t, err)
	defer c.Close()

	_, err = Dial(s.Addr().String(), "Carol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed is full")
}

func TestServerRejectsMissingHello(t *testing.T) {
	s := startServer(t)

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Encode(conn, MsgFrame, FrameMsg{}))
	env, err := Decode(conn)
	require.NoError(t, err)
	assert.Equal(t, MsgError, env.Type)
}

func TestStopClosesFeed(t *testing.T) {
	s := startServer(t)

	c, err := Dial(s.Addr().String(), "Bob")
	require.NoError(t, err)
	defer c.Close()

	s.Stop()
	select {
	case _, ok := <-c.Frames():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("feed not closed after stop")
	}
}

func TestOfferKeepsLatest(t *testing.T) {
	ch := make(chan game.Snapshot, 1)
	offer(ch, game.Snapshot{Stats: game.Stats{Score: 10}})
	offer(ch, game.Snapshot{Stats: game.Stats{Score: 20}})

	assert.Equal(t, 20, (<-ch).Stats.Score)
	assert.Empty(t, ch)
}
