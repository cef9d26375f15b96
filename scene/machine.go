package scene

import (
	"fmt"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/invaders"
	"go.uber.org/zap"
)

type Phase int

const (
	PhaseIntro Phase = iota
	PhasePlaying
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Machine owns the active scene and moves between Intro, Playing and Ended.
// Hosts feed it key events and frames; it is not safe for concurrent use.
type Machine struct {
	cfg    *config.Config
	logger *zap.Logger
	bus    *invaders.KeyBus

	// OnStart, when set, is called with every new simulation right after Setup.
	OnStart func(*invaders.Simulation)

	phase  Phase
	active Scene
	intro  *Intro
	game   *invaders.Simulation
	end    *EndScreen
	ended  *invaders.FinalState

	width, height float64
}

func NewMachine(cfg *config.Config, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		cfg:    cfg,
		logger: logger,
		bus:    invaders.NewKeyBus(),
		width:  float64(cfg.Window.Width),
		height: float64(cfg.Window.Height),
	}
}

// Start enters the intro.
func (m *Machine) Start() error {
	return m.enter(PhaseIntro, NewIntro(m.height))
}

// HandleKey routes a key event. The running game sees every event through the key
// bus; the start and restart keys move between screens.
func (m *Machine) HandleKey(ev invaders.KeyEvent) error {
	m.bus.Publish(ev)
	if !ev.Down {
		return nil
	}
	switch {
	case m.phase == PhaseIntro && ev.Code == m.cfg.Keys.Start:
		return m.StartGame()
	case m.phase == PhaseEnded && ev.Code == m.cfg.Keys.Restart:
		return m.Restart()
	}
	return nil
}

// Tick advances the active scene and applies a pending end of game.
func (m *Machine) Tick(frame invaders.FrameParams) {
	if frame.Width > 0 && frame.Height > 0 {
		m.width, m.height = frame.Width, frame.Height
	}
	if m.active == nil {
		return
	}
	m.active.Tick(frame)

	if m.ended != nil {
		final := *m.ended
		m.ended = nil
		m.finish(final)
	}
}

// StartGame leaves the intro for a fresh simulation.
func (m *Machine) StartGame() error {
	if m.phase != PhaseIntro {
		return fmt.Errorf("start game: in %s", m.phase)
	}
	opts := invaders.OptionsFrom(m.cfg)
	opts.Viewport = invaders.Viewport{Width: m.width, Height: m.height}
	opts.Bus = m.bus
	opts.Logger = m.logger.Named("game")
	opts.OnEnded = func(fs invaders.FinalState) { m.ended = &fs }

	game := invaders.NewSimulation(opts)
	if err := m.enter(PhasePlaying, game); err != nil {
		return err
	}
	if m.OnStart != nil {
		m.OnStart(game)
	}
	return nil
}

func (m *Machine) finish(final invaders.FinalState) {
	if err := m.enter(PhaseEnded, &EndScreen{Final: final}); err != nil {
		m.logger.Error("enter end screen", zap.Error(err))
	}
}

// Restart returns from the end screen to the intro.
func (m *Machine) Restart() error {
	if m.phase != PhaseEnded {
		return fmt.Errorf("restart: in %s", m.phase)
	}
	return m.Start()
}

// Stop tears down the active scene.
func (m *Machine) Stop() {
	if m.active != nil {
		m.active.Teardown()
		m.active = nil
	}
}

func (m *Machine) enter(phase Phase, next Scene) error {
	if err := next.Setup(); err != nil {
		return fmt.Errorf("enter %s: %w", phase, err)
	}
	if m.active != nil {
		m.active.Teardown()
	}
	m.logger.Debug("scene transition", zap.Stringer("from", m.phase), zap.Stringer("to", phase))

	m.phase = phase
	m.active = next
	m.intro, m.game, m.end = nil, nil, nil
	switch s := next.(type) {
	case *Intro:
		m.intro = s
	case *invaders.Simulation:
		m.game = s
	case *EndScreen:
		m.end = s
	}
	return nil
}

func (m *Machine) Phase() Phase               { return m.phase }
func (m *Machine) Intro() *Intro              { return m.intro }
func (m *Machine) Game() *invaders.Simulation { return m.game }
func (m *Machine) EndScreen() *EndScreen      { return m.end }
