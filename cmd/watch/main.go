package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amalg/go-tetris/internal/config"
	"github.com/amalg/go-tetris/internal/discovery"
	"github.com/amalg/go-tetris/internal/network"
	"github.com/amalg/go-tetris/internal/ui"
)

var errNoFeed = errors.New("no spectator feed found")

type options struct {
	addr     string
	name     string
	room     string
	logPath  string
	logLevel string
	wait     time.Duration
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch someone else's tetris game",
		Long: "Watch someone else's tetris game. Without --addr, feeds advertised on the LAN\n" +
			"are listed and the first one (or the one matching --room) is opened.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.addr, "addr", "a", "", "Feed address (e.g. 192.168.1.5:9999)")
	f.StringVarP(&opts.name, "name", "n", "Watcher", "Your name, shown in the player's log")
	f.StringVar(&opts.room, "room", "", "Pick the advertised feed with this room name")
	f.StringVar(&opts.logPath, "log", "", "Log file path (default: discard logs)")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level")
	f.DurationVar(&opts.wait, "wait", 2*time.Second, "How long to browse the LAN for feeds")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts options) error {
	logger, closeLog, err := config.NewLogger(opts.logPath, opts.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	addr := opts.addr
	if addr == "" {
		addr, err = browse(opts.room, opts.wait, logger)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Connecting to %s as %s...\n", addr, opts.name)
	client, err := network.Dial(addr, opts.name)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.WithFields(logrus.Fields{"addr": addr, "watcher": client.WatcherID()}).Info("watching")

	p := tea.NewProgram(ui.NewWatchModel(client, client.Player()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// browse listens for advertised feeds for wait and returns the address of
// the one to open.
func browse(room string, wait time.Duration, logger logrus.FieldLogger) (string, error) {
	listener := discovery.NewListener(logger)
	if err := listener.Start(); err != nil {
		return "", err
	}
	defer listener.Stop()

	fmt.Println("Looking for games on the LAN...")
	time.Sleep(wait)

	feeds := listener.Feeds()
	if len(feeds) == 0 {
		return "", errNoFeed
	}

	for _, feed := range feeds {
		fmt.Printf("  %-20s %-12s score %-6d level %-3d %d watching  %s\n",
			feed.Room, feed.Player, feed.Score, feed.Level, feed.Watchers, feed.Addr)
	}

	if room == "" {
		return feeds[0].Addr, nil
	}
	for _, feed := range feeds {
		if feed.Room == room {
			return feed.Addr, nil
		}
	}
	return "", fmt.Errorf("%w: room %q", errNoFeed, room)
}
