// Command invaders runs the game in a window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/invaders/audio"
	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs/debugui"
	debugui_ebiten "github.com/plus3/invaders/ecs/debugui/ebiten"
	"github.com/plus3/invaders/invaders"
	"github.com/plus3/invaders/render/canvas"
	"github.com/plus3/invaders/scene"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file. Defaults are used when empty.")
	debugUI := flag.Bool("debug-ui", false, "Show the ECS inspector overlay.")
	outlines := flag.Bool("outlines", false, "Draw bounding boxes.")
	meshes := flag.Bool("meshes", false, "Draw entities as mesh sprites.")
	mute := flag.Bool("mute", false, "Disable sound.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Debug.UI = cfg.Debug.UI || *debugUI
	cfg.Debug.Outlines = cfg.Debug.Outlines || *outlines
	cfg.Game.Meshes = cfg.Game.Meshes || *meshes

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if *configPath != "" {
		logger.Info("config loaded", zap.String("path", *configPath))
	}

	game := &Game{
		machine: scene.NewMachine(cfg, logger.Named("scene")),
		canvas:  canvas.New(cfg, logger.Named("canvas")),
		logger:  logger,
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
	}

	var sounds *audio.Sounds
	if !*mute {
		sounds, err = audio.Open(logger.Named("audio"))
		if err != nil {
			logger.Warn("sound disabled", zap.Error(err))
		} else {
			defer sounds.Close()
		}
	}

	game.machine.OnStart = func(sim *invaders.Simulation) {
		game.canvas.Attach(sim)
		if sounds != nil {
			sounds.Attach(sim)
		}
	}

	if cfg.Debug.UI {
		game.backend = debugui_ebiten.NewBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		game.overlay = debugui.NewOverlay()
		game.timer = debugui.NewFrameTimer()
	} else {
		ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
		ebiten.SetWindowTitle(cfg.Window.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := game.machine.Start(); err != nil {
		return err
	}
	defer game.machine.Stop()

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
