package network

import (
	"fmt"
	"net"
	"time"

	"github.com/amalg/go-tetris/internal/game"
)

// Client watches a spectator feed.
type Client struct {
	conn      net.Conn
	watcherID string
	player    string
	frames    chan game.Snapshot
	done      chan struct{}
}

// Dial connects to a spectator feed and completes the hello/welcome exchange.
func Dial(addr, name string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c, err := newClient(conn, name)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func newClient(conn net.Conn, name string) (*Client, error) {
	if err := Encode(conn, MsgHello, HelloMsg{Name: name}); err != nil {
		return nil, fmt.Errorf("send hello: %w", err)
	}

	env, err := Decode(conn)
	if err != nil {
		return nil, fmt.Errorf("read welcome: %w", err)
	}

	switch env.Type {
	case MsgWelcome:
	case MsgError:
		var errMsg ErrorMsg
		DecodePayload(env, &errMsg)
		return nil, fmt.Errorf("server error: %s", errMsg.Message)
	default:
		return nil, fmt.Errorf("expected welcome, got %s", env.Type)
	}

	var welcome WelcomeMsg
	if err := DecodePayload(env, &welcome); err != nil {
		return nil, fmt.Errorf("decode welcome: %w", err)
	}

	c := &Client{
		conn:      conn,
		watcherID: welcome.WatcherID,
		player:    welcome.Player,
		frames:    make(chan game.Snapshot, 1),
		done:      make(chan struct{}),
	}
	go c.receiveLoop()
	return c, nil
}

// WatcherID returns the id the server assigned to this watcher.
func (c *Client) WatcherID() string {
	return c.watcherID
}

// Player returns the name of the watched player.
func (c *Client) Player() string {
	return c.player
}

// Frames yields snapshots as they arrive. It is closed when the feed ends.
func (c *Client) Frames() <-chan game.Snapshot {
	return c.frames
}

// Close disconnects from the server.
func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.conn.Close()
}

func (c *Client) receiveLoop() {
	defer close(c.frames)

	for {
		select {
		case <-c.done:
			return
		default:
		}

		env, err := Decode(c.conn)
		if err != nil {
			return
		}

		if env.Type != MsgFrame {
			continue
		}

		var frame FrameMsg
		if err := DecodePayload(env, &frame); err != nil {
			continue
		}
		// Latest frame wins when the consumer is slow.
		offer(c.frames, frame.Snapshot)
	}
}
