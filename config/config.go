// Package config loads game tuning, window, key binding, logging and debug settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Game    GameConfig    `toml:"game" yaml:"game"`
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Keys    KeysConfig    `toml:"keys" yaml:"keys"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Debug   DebugConfig   `toml:"debug" yaml:"debug"`
}

// GameConfig holds the simulation tuning. Speeds are in pixels per millisecond.
type GameConfig struct {
	SwarmSpeed      float64 `toml:"swarm_speed" yaml:"swarm_speed"`
	SwarmColumns    int     `toml:"swarm_columns" yaml:"swarm_columns"`
	SwarmRows       int     `toml:"swarm_rows" yaml:"swarm_rows"`
	SwarmSpacing    float64 `toml:"swarm_spacing" yaml:"swarm_spacing"`
	SwarmDescent    float64 `toml:"swarm_descent" yaml:"swarm_descent"`
	SwarmMinOffset  float64 `toml:"swarm_min_offset" yaml:"swarm_min_offset"` // from the left edge
	SwarmMaxOffset  float64 `toml:"swarm_max_offset" yaml:"swarm_max_offset"` // from the left edge
	AnchorInset     float64 `toml:"anchor_inset" yaml:"anchor_inset"`
	PlayerInset     float64 `toml:"player_inset" yaml:"player_inset"` // from the bottom edge
	PlayerThrust    float64 `toml:"player_thrust" yaml:"player_thrust"`
	ProjectileSpeed float64 `toml:"projectile_speed" yaml:"projectile_speed"`
	ProjectileSize  float64 `toml:"projectile_size" yaml:"projectile_size"`
	DroneSize       float64 `toml:"drone_size" yaml:"drone_size"`
	PlayerSize      float64 `toml:"player_size" yaml:"player_size"`
	CullEvery       int     `toml:"cull_every" yaml:"cull_every"` // out-of-bounds cadence in ticks
	Meshes          bool    `toml:"meshes" yaml:"meshes"`
}

type WindowConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
}

// KeysConfig binds actions to physical key codes ("ArrowLeft", "KeyV", ...).
type KeysConfig struct {
	West    string `toml:"west" yaml:"west"`
	East    string `toml:"east" yaml:"east"`
	Fire    string `toml:"fire" yaml:"fire"`
	Step    string `toml:"step" yaml:"step"`
	Start   string `toml:"start" yaml:"start"`
	Restart string `toml:"restart" yaml:"restart"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
	// Output is a file path or "stderr"; empty means stderr
	Output string `toml:"output" yaml:"output"`
}

type DebugConfig struct {
	PauseOnCollision bool `toml:"pause_on_collision" yaml:"pause_on_collision"`
	UI               bool `toml:"ui" yaml:"ui"`
	Outlines         bool `toml:"outlines" yaml:"outlines"`
}

// Load reads a TOML or YAML file (chosen by extension) over the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the tuning of the original arcade layout on an 800x600 canvas.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			SwarmSpeed:      0.01,
			SwarmColumns:    10,
			SwarmRows:       5,
			SwarmSpacing:    50,
			SwarmDescent:    50,
			SwarmMinOffset:  50,
			SwarmMaxOffset:  300,
			AnchorInset:     100,
			PlayerInset:     100,
			PlayerThrust:    1,
			ProjectileSpeed: 1,
			ProjectileSize:  5,
			DroneSize:       25,
			PlayerSize:      50,
			CullEvery:       1,
		},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "invaders",
		},
		Keys: KeysConfig{
			West:    "ArrowLeft",
			East:    "ArrowRight",
			Fire:    "KeyV",
			Step:    "Backslash",
			Start:   "KeyS",
			Restart: "KeyR",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every out-of-range field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	g := c.Game
	check(g.SwarmColumns > 0, "game.swarm_columns must be positive, got %d", g.SwarmColumns)
	check(g.SwarmRows > 0, "game.swarm_rows must be positive, got %d", g.SwarmRows)
	check(g.SwarmMinOffset < g.SwarmMaxOffset, "game.swarm_min_offset %v must be below swarm_max_offset %v", g.SwarmMinOffset, g.SwarmMaxOffset)
	check(g.CullEvery > 0, "game.cull_every must be positive, got %d", g.CullEvery)
	check(g.DroneSize > 0 && g.PlayerSize > 0 && g.ProjectileSize > 0, "game sizes must be positive")
	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)

	keys := map[string]string{}
	for action, code := range map[string]string{
		"west": c.Keys.West, "east": c.Keys.East, "fire": c.Keys.Fire,
		"step": c.Keys.Step, "start": c.Keys.Start, "restart": c.Keys.Restart,
	} {
		if code == "" {
			check(false, "keys.%s is empty", action)
			continue
		}
		keys[action] = code
	}
	// in-game actions share one listener and must not collide
	seen := map[string]string{}
	for _, action := range []string{"west", "east", "fire", "step"} {
		code, ok := keys[action]
		if !ok {
			continue
		}
		if prev, dup := seen[code]; dup {
			check(false, "keys.%s and keys.%s are both bound to %s", prev, action, code)
		}
		seen[code] = action
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		check(false, "logging.format must be json or console, got %q", c.Logging.Format)
	}
	return errors.Join(errs...)
}
