package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amalg/go-tetris/internal/config"
	"github.com/amalg/go-tetris/internal/discovery"
	"github.com/amalg/go-tetris/internal/game"
	"github.com/amalg/go-tetris/internal/network"
	"github.com/amalg/go-tetris/internal/ui"
)

type options struct {
	configPath string
	logPath    string
	name       string
	listen     string
	advertise  bool
	room       string
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:          "tetris",
		Short:        "Play tetris in the terminal",
		Long:         "Play tetris in the terminal. With --listen, others can watch the game with the watch command.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&opts.logPath, "log", "", "Log file path (default: discard logs)")
	f.StringVarP(&opts.name, "name", "n", "", "Your player name")
	f.StringVarP(&opts.listen, "listen", "l", "", "Serve a spectator feed on this address (e.g. :9999)")
	f.BoolVar(&opts.advertise, "advertise", false, "Announce the spectator feed on the LAN")
	f.StringVar(&opts.room, "room", "", "Room name shown to watchers browsing the LAN")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = opts.name
	}
	if f.Changed("listen") {
		cfg.Spectate.Listen = opts.listen
	}
	if f.Changed("advertise") {
		cfg.Spectate.Advertise = opts.advertise
	}
	if f.Changed("room") {
		cfg.Spectate.Room = opts.room
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Anything written to stderr would corrupt Bubbletea's rendering.
	logger, closeLog, err := config.NewLogger(opts.logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	keys, err := cfg.Bindings()
	if err != nil {
		return err
	}

	engine := game.NewEngine(game.WithLogger(logger))

	var modelOpts []ui.ModelOption
	if cfg.Spectate.Listen != "" {
		stop, status, err := startFeed(cfg, engine, logger)
		if err != nil {
			return err
		}
		defer stop()
		modelOpts = append(modelOpts, ui.WithStatus(status))

		// Small pause so the user can read the addresses
		time.Sleep(500 * time.Millisecond)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)

	p := tea.NewProgram(ui.NewModel(engine, keys, cfg.FrameRate, modelOpts...), tea.WithAltScreen())
	go func() {
		<-sigCh
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		logger.WithError(err).Error("running TUI")
		return fmt.Errorf("run TUI: %w", err)
	}
	logger.Info("exiting")
	return nil
}

// startFeed serves the spectator feed for engine and, when configured,
// advertises it on the LAN.
func startFeed(cfg config.Config, engine *game.Engine, logger logrus.FieldLogger) (func(), func() string, error) {
	server := network.NewServer(cfg.Spectate.Listen, cfg.Name, logger)
	if err := server.Start(); err != nil {
		return nil, nil, fmt.Errorf("start spectator feed: %w", err)
	}
	engine.OnChange(server.Publish)

	fmt.Printf("Spectator feed for %s on %s\n", cfg.Name, server.Addr())
	printLocalAddrs(server.Addr())

	var broadcaster *discovery.Broadcaster
	if cfg.Spectate.Advertise {
		room := cfg.Spectate.Room
		if room == "" {
			room = cfg.Name + "'s game"
		}
		broadcaster = discovery.NewBroadcaster(discovery.FeedInfo{
			Room:   room,
			Player: cfg.Name,
			Score:  engine.Stats().Score,
			Level:  engine.Stats().Level,
			Addr:   server.Addr().String(),
		}, logger)
		if err := broadcaster.Start(); err != nil {
			server.Stop()
			return nil, nil, fmt.Errorf("start broadcaster: %w", err)
		}
		engine.OnChange(func(snap game.Snapshot) {
			broadcaster.UpdateStats(snap)
			broadcaster.UpdateWatchers(server.WatcherCount())
		})
	}

	stop := func() {
		if broadcaster != nil {
			broadcaster.Stop()
		}
		server.Stop()
	}
	status := func() string {
		return fmt.Sprintf("%d watching", server.WatcherCount())
	}
	return stop, status, nil
}

// printLocalAddrs prints the addresses watchers can use to reach the feed.
func printLocalAddrs(addr net.Addr) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}
	if !tcp.IP.IsUnspecified() {
		fmt.Printf("  %s\n", tcp)
		return
	}

	fmt.Println("Watchers can connect using:")
	fmt.Printf("  127.0.0.1:%d (this machine)\n", tcp.Port)

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			fmt.Printf("  %s:%d\n", ipnet.IP, tcp.Port)
		}
	}
}
