package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amalg/go-tetris/internal/game"
)

const (
	// BroadcastPort is the UDP port used for feed discovery.
	BroadcastPort = 9998
	// BroadcastInterval is how often hosts advertise their feed.
	BroadcastInterval = 1 * time.Second
	// FeedExpiry is how long a feed stays visible after its last broadcast.
	FeedExpiry = 4 * time.Second

	maxAdvert   = 4096
	readTimeout = 2 * time.Second
)

// FeedInfo describes a spectator feed on the network.
type FeedInfo struct {
	Room     string `json:"room"`
	Player   string `json:"player"`
	Score    int    `json:"score"`
	Level    int    `json:"level"`
	Watchers int    `json:"watchers"`
	Addr     string `json:"addr"` // TCP host:port of the feed
}

// --- Broadcaster ---

// Broadcaster periodically sends UDP broadcast packets describing a feed.
type Broadcaster struct {
	info FeedInfo
	done chan struct{}
	mu   sync.Mutex
	log  logrus.FieldLogger
}

// NewBroadcaster creates a new feed broadcaster.
func NewBroadcaster(info FeedInfo, log logrus.FieldLogger) *Broadcaster {
	return &Broadcaster{
		info: info,
		done: make(chan struct{}),
		log:  log.WithField("component", "discovery"),
	}
}

// UpdateStats refreshes the advertised score and level.
// Its signature matches game.Engine.OnChange.
func (b *Broadcaster) UpdateStats(snap game.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.info.Score = snap.Stats.Score
	b.info.Level = snap.Stats.Level
}

// UpdateWatchers refreshes the advertised watcher count.
func (b *Broadcaster) UpdateWatchers(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.info.Watchers = n
}

// Start begins broadcasting feed info via UDP.
func (b *Broadcaster) Start() error {
	// An unconnected socket; a DialUDP conn cannot write to broadcast addresses on Linux.
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("create broadcast socket: %w", err)
	}
	go b.broadcastLoop(conn)
	return nil
}

// Stop stops the broadcaster.
func (b *Broadcaster) Stop() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

func (b *Broadcaster) payload() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return json.Marshal(b.info)
}

func (b *Broadcaster) broadcastLoop(conn net.PacketConn) {
	defer conn.Close()

	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	// First advert goes out right away.
	b.send(conn)

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.send(conn)
		}
	}
}

func (b *Broadcaster) send(conn net.PacketConn) {
	data, err := b.payload()
	if err != nil {
		b.log.WithError(err).Warn("encoding feed info")
		return
	}

	// Loopback first: 255.255.255.255 is often dropped by Linux firewalls.
	targets := []net.IP{net.IPv4(127, 0, 0, 1), net.IPv4bcast}
	targets = append(targets, interfaceBroadcasts()...)

	for _, ip := range targets {
		if _, err := conn.WriteTo(data, &net.UDPAddr{IP: ip, Port: BroadcastPort}); err != nil {
			b.log.WithError(err).WithField("target", ip.String()).Debug("broadcast failed")
		}
	}
}

// interfaceBroadcasts returns the IPv4 broadcast address of every interface
// that is up and supports broadcast.
func interfaceBroadcasts() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			out = append(out, broadcastAddr(ipnet))
		}
	}
	return out
}

// broadcastAddr computes IP | ^mask for an IPv4 network.
func broadcastAddr(ipnet *net.IPNet) net.IP {
	ip4 := ipnet.IP.To4()
	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	out := make(net.IP, net.IPv4len)
	for i := range out {
		out[i] = ip4[i] | ^mask[i]
	}
	return out
}

// --- Listener ---

// seenFeed holds a feed and when it was last seen.
type seenFeed struct {
	Info     FeedInfo
	LastSeen time.Time
}

// Listener listens for UDP feed advertisements.
type Listener struct {
	feeds map[string]*seenFeed // keyed by Addr
	mu    sync.RWMutex
	conn  *net.UDPConn
	done  chan struct{}
	log   logrus.FieldLogger
}

// NewListener creates a new feed listener.
func NewListener(log logrus.FieldLogger) *Listener {
	return &Listener{
		feeds: make(map[string]*seenFeed),
		done:  make(chan struct{}),
		log:   log.WithField("component", "discovery"),
	}
}

// Start begins listening for feed broadcasts.
func (l *Listener) Start() error {
	var err error
	l.conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: BroadcastPort})
	if err != nil {
		return fmt.Errorf("listen UDP on port %d: %w (is another instance browsing?)", BroadcastPort, err)
	}

	go l.listenLoop()
	go l.cleanupLoop()
	return nil
}

// Stop stops the listener.
func (l *Listener) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	if l.conn != nil {
		l.conn.Close()
	}
}

// Feeds returns the currently visible feeds ordered by room then address.
func (l *Listener) Feeds() []FeedInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	feeds := make([]FeedInfo, 0, len(l.feeds))
	for _, f := range l.feeds {
		feeds = append(feeds, f.Info)
	}
	sort.Slice(feeds, func(i, j int) bool {
		if feeds[i].Room != feeds[j].Room {
			return feeds[i].Room < feeds[j].Room
		}
		return feeds[i].Addr < feeds[j].Addr
	})
	return feeds
}

// record stores an advertisement. from fills in the host when the feed
// listens on all interfaces.
func (l *Listener) record(data []byte, from *net.UDPAddr, now time.Time) error {
	var info FeedInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return err
	}

	host, port, err := net.SplitHostPort(info.Addr)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); (host == "" || (ip != nil && ip.IsUnspecified())) && from != nil {
		info.Addr = net.JoinHostPort(from.IP.String(), port)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.feeds[info.Addr] = &seenFeed{Info: info, LastSeen: now}
	return nil
}

// expire drops feeds not seen since now-FeedExpiry.
func (l *Listener) expire(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, f := range l.feeds {
		if now.Sub(f.LastSeen) > FeedExpiry {
			delete(l.feeds, addr)
		}
	}
}

func (l *Listener) listenLoop() {
	buf := make([]byte, maxAdvert)
	for {
		select {
		case <-l.done:
			return
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(readTimeout))
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		if err := l.record(buf[:n], from, time.Now()); err != nil {
			l.log.WithError(err).Debug("ignoring advertisement")
		}
	}
}

func (l *Listener) cleanupLoop() {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.expire(now)
		}
	}
}
