package network

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amalg/go-tetris/internal/game"
)

// DefaultMaxWatchers caps the number of connected watchers.
const DefaultMaxWatchers = 16

// Server streams snapshots of a local game to read-only watchers.
// Publish never blocks the game: a slow watcher only ever gets the latest frame.
type Server struct {
	addr        string
	player      string
	maxWatchers int
	listener    net.Listener
	watchers    map[string]*watcher
	latest      *game.Snapshot
	mu          sync.RWMutex
	done        chan struct{}
	log         logrus.FieldLogger
}

// watcher is one connected spectator.
type watcher struct {
	id     string
	name   string
	conn   net.Conn
	frames chan game.Snapshot
	quit   chan struct{}
	once   sync.Once
}

func (w *watcher) close() {
	w.once.Do(func() {
		close(w.quit)
		w.conn.Close()
	})
}

// NewServer creates a spectator server for the named player.
func NewServer(addr, player string, log logrus.FieldLogger) *Server {
	return &Server{
		addr:        addr,
		player:      player,
		maxWatchers: DefaultMaxWatchers,
		watchers:    make(map[string]*watcher),
		done:        make(chan struct{}),
		log:         log.WithField("component", "spectate-server"),
	}
}

// Start begins accepting watchers.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.log.WithField("addr", s.listener.Addr().String()).Info("spectator feed listening")
	go s.acceptLoop()
	return nil
}

// Addr returns the listening address. Valid after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop closes the listener and disconnects every watcher.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for id, w := range s.watchers {
		w.close()
		delete(s.watchers, id)
	}
	s.mu.Unlock()
}

// WatcherCount returns the number of connected watchers.
func (s *Server) WatcherCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

// Publish records snap as the latest frame and queues it for every watcher.
// Its signature matches game.Engine.OnChange.
func (s *Server) Publish(snap game.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &snap
	for _, w := range s.watchers {
		offer(w.frames, snap)
	}
}

// offer puts snap on a one-slot channel, replacing any unsent frame.
func offer(ch chan game.Snapshot, snap game.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.log.WithError(err).Warn("accept failed")
				continue
			}
		}
		go s.handleWatcher(conn)
	}
}

func (s *Server) handleWatcher(conn net.Conn) {
	env, err := Decode(conn)
	if err != nil {
		s.log.WithError(err).Warn("reading hello")
		conn.Close()
		return
	}

	if env.Type != MsgHello {
		Encode(conn, MsgError, ErrorMsg{Message: "expected hello message"})
		conn.Close()
		return
	}

	var hello HelloMsg
	if err := DecodePayload(env, &hello); err != nil {
		s.log.WithError(err).Warn("decoding hello")
		conn.Close()
		return
	}

	w := &watcher{
		id:     uuid.NewString(),
		name:   hello.Name,
		conn:   conn,
		frames: make(chan game.Snapshot, 1),
		quit:   make(chan struct{}),
	}

	latest, err := s.register(w)
	if err != nil {
		Encode(conn, MsgError, ErrorMsg{Message: err.Error()})
		conn.Close()
		return
	}
	defer s.removeWatcher(w)

	log := s.log.WithFields(logrus.Fields{"watcher": w.id, "name": w.name})
	log.Info("watcher joined")

	welcome := WelcomeMsg{
		WatcherID: w.id,
		Player:    s.player,
		Width:     game.BoardWidth,
		Height:    game.BoardHeight,
	}
	if err := Encode(conn, MsgWelcome, welcome); err != nil {
		log.WithError(err).Warn("sending welcome")
		return
	}

	if latest != nil {
		if err := Encode(conn, MsgFrame, FrameMsg{Snapshot: *latest}); err != nil {
			log.WithError(err).Warn("sending frame")
			return
		}
	}

	// Watchers never send after hello; a read returning means they left.
	go func() {
		buf := make([]byte, 1)
		conn.Read(buf)
		w.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case <-w.quit:
			log.Info("watcher left")
			return
		case snap := <-w.frames:
			if err := Encode(conn, MsgFrame, FrameMsg{Snapshot: snap}); err != nil {
				log.WithError(err).Warn("sending frame")
				return
			}
		}
	}
}

// register adds w and returns the latest frame, read under the same lock
// so no published frame is missed or sent twice.
func (s *Server) register(w *watcher) (*game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return nil, fmt.Errorf("server stopped")
	default:
	}
	if len(s.watchers) >= s.maxWatchers {
		return nil, fmt.Errorf("feed is full (%d/%d watchers)", len(s.watchers), s.maxWatchers)
	}

	s.watchers[w.id] = w
	return s.latest, nil
}

func (s *Server) removeWatcher(w *watcher) {
	s.mu.Lock()
	delete(s.watchers, w.id)
	s.mu.Unlock()
	w.close()
}
