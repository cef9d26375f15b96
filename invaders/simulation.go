package invaders

import (
	"errors"
	"fmt"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"go.uber.org/zap"
)

// ErrEnded is returned by input operations on a simulation that has ended.
var ErrEnded = errors.New("simulation ended")

// FrameParams is what the host supplies every frame.
type FrameParams struct {
	DeltaMs       float64
	Width, Height float64
}

type State int

const (
	Running State = iota
	Ended
)

func (s State) String() string {
	if s == Ended {
		return "ended"
	}
	return "running"
}

// FinalState summarizes a finished game for the next screen.
type FinalState struct {
	Reason      string
	Ticks       int
	ElapsedMs   float64
	Kills       int
	EnemiesLeft int
}

// Options configures a Simulation. Bus and Logger may be nil.
type Options struct {
	Game     config.GameConfig
	Keys     config.KeysConfig
	Debug    config.DebugConfig
	Viewport Viewport
	Bus      *KeyBus
	Logger   *zap.Logger
	OnEnded  func(FinalState)
}

// OptionsFrom builds Options from a loaded config with the window as initial viewport.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Game:     cfg.Game,
		Keys:     cfg.Keys,
		Debug:    cfg.Debug,
		Viewport: Viewport{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)},
	}
}

// Simulation owns one game: the world, its distinguished entities and the system
// pipeline. It is driven by the host through Setup, Tick and Teardown and is not
// safe for concurrent use.
type Simulation struct {
	opts   Options
	logger *zap.Logger
	bus    *KeyBus

	world     *ecs.World
	scheduler *ecs.Scheduler
	viewport  *ecs.Singleton[Viewport]
	enemies   *ecs.View[struct {
		*AABB
		IsEnemy
	}]
	projectiles *ecs.View[struct {
		*AABB
		IsProjectile
	}]

	anchor ecs.Entity
	player ecs.Entity

	state       State
	cancelInput func()
	final       FinalState

	ticks     int
	elapsedMs float64
	kills     int

	paused   bool
	stepping bool
}

func NewSimulation(opts Options) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = NewKeyBus()
	}
	return &Simulation{
		opts:   opts,
		logger: logger,
		bus:    bus,
	}
}

// Setup builds the world: the swarm anchor near the top-left corner, the drone grid
// hanging off it and the player near the bottom center. It also subscribes to the
// key bus.
func (s *Simulation) Setup() error {
	if s.world != nil {
		return errors.New("simulation already set up")
	}
	vp := s.opts.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("setup simulation: viewport %vx%v is empty", vp.Width, vp.Height)
	}
	g := s.opts.Game

	s.world = NewWorld()
	s.viewport = ecs.NewSingleton(s.world, vp)
	s.world.OnDestroy(s.countKill)

	s.anchor = SpawnSwarmAnchor(s.world, g, Position{
		PosX: -vp.Width/2 + g.AnchorInset,
		PosY: -vp.Height/2 + g.AnchorInset,
	})
	drones := SpawnSwarmGrid(s.world, g, s.anchor)
	s.player = SpawnPlayer(s.world, g, Position{PosX: 0, PosY: vp.Height/2 - g.PlayerInset})

	s.enemies = ecs.NewView[struct {
		*AABB
		IsEnemy
	}](s.world)
	s.projectiles = ecs.NewView[struct {
		*AABB
		IsProjectile
	}](s.world)

	s.scheduler = ecs.NewScheduler(s.world)
	s.scheduler.Register(&LossConditionSystem{OnLoss: func() { s.End("loss") }})
	s.scheduler.Register(&ProjectileEnemySystem{})
	s.scheduler.Register(&MotionSystem{})
	s.scheduler.Register(&FollowerSystem{})
	s.scheduler.Register(&ControlSystem{})
	s.scheduler.Register(&OutOfBoundsSystem{Every: g.CullEvery})
	s.scheduler.Register(&DestroyedCullingSystem{})
	s.scheduler.Register(&BoundsSyncSystem{})

	s.cancelInput = s.bus.Subscribe(s.handleKey)

	s.logger.Info("simulation started",
		zap.Int("drones", len(drones)),
		zap.Stringer("anchor", s.anchor),
		zap.Stringer("player", s.player),
		zap.Float64("width", vp.Width),
		zap.Float64("height", vp.Height),
	)
	return nil
}

// Tick advances the simulation by one frame. It does nothing once ended, and while
// paused by the collision debugger it only waits for a step.
func (s *Simulation) Tick(frame FrameParams) {
	if s.world == nil || s.state == Ended {
		return
	}
	*s.viewport.Get() = Viewport{Width: frame.Width, Height: frame.Height}

	if s.opts.Debug.PauseOnCollision {
		if s.collisionPending() {
			if !s.paused && !s.stepping {
				s.logger.Debug("paused on collision", zap.Int("tick", s.ticks))
			}
			s.paused = true
		}
		if s.paused && !s.stepping {
			return
		}
		s.stepping = false
	}

	// counted up front so an end reported from the frame's commands includes this tick
	s.ticks++
	s.elapsedMs += frame.DeltaMs
	minX, maxX := SwarmLimits(frame.Width, s.opts.Game.SwarmMinOffset, s.opts.Game.SwarmMaxOffset)
	SwarmBoundary(s.world, s.anchor, minX, maxX, s.opts.Game.SwarmDescent)
	s.scheduler.Once(frame.DeltaMs)
}

// Teardown detaches input and destroys every entity so renderers release their
// resources. A running simulation stops without reporting an end.
func (s *Simulation) Teardown() {
	if s.cancelInput != nil {
		s.cancelInput()
	}
	if s.world == nil {
		return
	}
	s.state = Ended
	var all []ecs.Entity
	for e := range s.world.Entities() {
		all = append(all, e)
	}
	for _, e := range all {
		s.world.Destroy(e)
	}
	s.logger.Debug("simulation torn down", zap.Int("ticks", s.ticks))
}

// End stops the simulation for reason and fires OnEnded once. Systems end the
// game through the frame's deferred commands, so a loss is reported only after
// the whole tick has run.
func (s *Simulation) End(reason string) {
	if s.state == Ended {
		return
	}
	s.state = Ended
	if s.cancelInput != nil {
		s.cancelInput()
	}
	s.final.Reason = reason
	s.final.Ticks = s.ticks
	s.final.ElapsedMs = s.elapsedMs
	s.final.Kills = s.kills
	s.final.EnemiesLeft = s.enemyCount()

	s.logger.Info("simulation ended",
		zap.String("reason", s.final.Reason),
		zap.Int("ticks", s.final.Ticks),
		zap.Int("kills", s.final.Kills),
		zap.Int("enemies_left", s.final.EnemiesLeft),
	)
	if s.opts.OnEnded != nil {
		s.opts.OnEnded(s.final)
	}
}

func (s *Simulation) handleKey(ev KeyEvent) {
	if s.state != Running {
		return
	}
	keys := s.opts.Keys

	if s.paused {
		if ev.Down && ev.Code == keys.Step {
			s.paused = false
			s.stepping = true
		}
		return
	}

	var err error
	switch ev.Code {
	case keys.West:
		err = s.SetControl(steer(ev, DirWest))
	case keys.East:
		err = s.SetControl(steer(ev, DirEast))
	case keys.Fire:
		if ev.Down {
			_, err = s.Fire()
		}
	}
	if err != nil {
		s.logger.Debug("key ignored", zap.String("code", ev.Code), zap.Bool("down", ev.Down), zap.Error(err))
	}
}

// steer maps a movement key transition to a control direction.
func steer(ev KeyEvent, dir Direction) Direction {
	if ev.Down {
		return dir
	}
	return DirNone
}

// SetControl sets the player's control direction. A destroyed player is ignored.
func (s *Simulation) SetControl(dir Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("set control: %w: %s", ErrUnknownDirection, dir)
	}
	if s.state == Ended {
		return ErrEnded
	}
	ecs.Update(s.world, s.player, func(c *TwoWayControl) { c.Dir = dir })
	return nil
}

// Fire spawns a projectile at the player's position. It returns ecs.Nil when the
// player no longer exists.
func (s *Simulation) Fire() (ecs.Entity, error) {
	if s.state == Ended {
		return ecs.Nil, ErrEnded
	}
	pos, ok := ecs.Get[Position](s.world, s.player)
	if !ok {
		return ecs.Nil, nil
	}
	return SpawnProjectile(s.world, s.opts.Game, *pos), nil
}

func (s *Simulation) collisionPending() bool {
	for enemy := range s.enemies.Values() {
		for projectile := range s.projectiles.Values() {
			if projectile.AABB.Overlaps(*enemy.AABB) {
				return true
			}
		}
	}
	return false
}

func (s *Simulation) countKill(e ecs.Entity) {
	if IsKill(s.world, e) {
		s.kills++
	}
}

// IsKill reports whether e is an enemy shot down by the player. It is meant for
// World.OnDestroy hooks, where the dying entity's components are still readable.
func IsKill(w *ecs.World, e ecs.Entity) bool {
	if !ecs.Has[IsEnemy](w, e) {
		return false
	}
	status, ok := ecs.Get[DestroyedStatus](w, e)
	return ok && status.IsDestroyed
}

func (s *Simulation) enemyCount() int {
	if s.enemies == nil {
		return 0
	}
	return s.enemies.Count()
}

func (s *Simulation) World() *ecs.World         { return s.world }
func (s *Simulation) Scheduler() *ecs.Scheduler { return s.scheduler }
func (s *Simulation) Bus() *KeyBus              { return s.bus }
func (s *Simulation) Player() ecs.Entity        { return s.player }
func (s *Simulation) Anchor() ecs.Entity        { return s.anchor }
func (s *Simulation) State() State              { return s.state }
func (s *Simulation) Ticks() int                { return s.ticks }
func (s *Simulation) Paused() bool              { return s.paused }
func (s *Simulation) Kills() int                { return s.kills }
func (s *Simulation) FinalState() FinalState    { return s.final }
