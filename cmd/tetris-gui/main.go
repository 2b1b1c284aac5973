package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/amalg/go-tetris/internal/config"
	"github.com/amalg/go-tetris/internal/game"
	"github.com/amalg/go-tetris/internal/gui"
)

func main() {
	var configPath, logPath string

	cmd := &cobra.Command{
		Use:          "tetris-gui",
		Short:        "Play tetris in a window",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, closeLog, err := config.NewLogger(logPath, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			w, h := gui.ScreenSize()
			ebiten.SetWindowSize(w*2, h*2)
			ebiten.SetWindowTitle("Tetris - " + cfg.Name)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

			engine := game.NewEngine(game.WithLogger(logger))
			if err := ebiten.RunGame(gui.NewGame(engine)); err != nil {
				logger.WithError(err).Error("running game")
				return fmt.Errorf("run game: %w", err)
			}
			logger.WithField("score", engine.Stats().Score).Info("exiting")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&logPath, "log", "", "Log file path (default: discard logs)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
