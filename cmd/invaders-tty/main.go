// Command invaders-tty runs the game in a terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/invaders/audio"
	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/invaders"
	"github.com/plus3/invaders/render/term"
	"github.com/plus3/invaders/scene"
	"go.uber.org/zap"
)

const frameInterval = 16 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file. Defaults are used when empty.")
	logPath := flag.String("log", "", "Write logs to this file; logging is off when empty since the terminal is taken.")
	release := flag.Duration("release", term.ReleaseAfter, "Treat a key as released after this long without a repeat.")
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

	logger := zap.NewNop()
	if *logPath != "" {
		cfg.Logging.Format = "json"
		cfg.Logging.Output = *logPath
		var err error
		if logger, err = config.NewLogger(cfg.Logging); err != nil {
			return fmt.Errorf("log file %s: %w", *logPath, err)
		}
		defer func() { _ = logger.Sync() }()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	var sounds *audio.Sounds
	if !*mute {
		if sounds, err = audio.Open(logger.Named("audio")); err != nil {
			logger.Warn("sound disabled", zap.Error(err))
		} else {
			defer sounds.Close()
		}
	}

	host := &Host{
		screen:   screen,
		term:     term.New(screen, cfg),
		machine:  scene.NewMachine(cfg, logger.Named("scene")),
		releaser: term.NewReleaser(*release, cfg.Keys.Fire, cfg.Keys.Step),
		logger:   logger,
	}
	host.machine.OnStart = func(sim *invaders.Simulation) {
		if sounds != nil {
			sounds.Attach(sim)
		}
	}
	return host.Run()
}
