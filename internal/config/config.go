package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/amalg/go-tetris/internal/game"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings shared by the frontends. Board size and drop
// timing are fixed by the game package and are not configurable.
type Config struct {
	Name      string              `yaml:"name"`
	FrameRate int                 `yaml:"frame_rate"` // Frames per second for the terminal loop
	LogLevel  string              `yaml:"log_level"`
	Keys      map[string][]string `yaml:"keys"` // Action name -> key names
	Spectate  SpectateConfig      `yaml:"spectate"`
}

// SpectateConfig controls the read-only spectator feed of a local game.
type SpectateConfig struct {
	Listen    string `yaml:"listen"`    // Empty disables the feed
	Advertise bool   `yaml:"advertise"` // Announce the feed on the LAN
	Room      string `yaml:"room"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Name:      "Player",
		FrameRate: 60,
		LogLevel:  "info",
		Keys: map[string][]string{
			game.ActionMoveLeft.String():  {"left"},
			game.ActionMoveRight.String(): {"right"},
			game.ActionDrop.String():      {"down"},
			game.ActionRotateCCW.String(): {"q", "Q"},
			game.ActionRotateCW.String():  {"w", "W", "up"},
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the frontends cannot use.
func (c Config) Validate() error {
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return fmt.Errorf("%w: frame_rate %d out of range 1-240", ErrInvalidConfig, c.FrameRate)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	seen := make(map[string]string)
	for name, keys := range c.Keys {
		if _, err := game.ParseAction(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, k := range keys {
			if other, ok := seen[k]; ok && other != name {
				return fmt.Errorf("%w: key %q bound to both %s and %s", ErrInvalidConfig, k, other, name)
			}
			seen[k] = name
		}
	}

	if c.Spectate.Advertise && c.Spectate.Listen == "" {
		return fmt.Errorf("%w: spectate.advertise needs spectate.listen", ErrInvalidConfig)
	}
	return nil
}

// Bindings returns the key-to-action map described by Keys.
func (c Config) Bindings() (map[string]game.Action, error) {
	out := make(map[string]game.Action)
	for name, keys := range c.Keys {
		a, err := game.ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, k := range keys {
			out[k] = a
		}
	}
	return out, nil
}
