package invaders_test

import (
	"testing"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var frame = invaders.FrameParams{DeltaMs: 16, Width: 800, Height: 600}

func newSimulation(t *testing.T, mutate ...func(*invaders.Options)) (*invaders.Simulation, *[]invaders.FinalState) {
	t.Helper()
	var ended []invaders.FinalState
	opts := invaders.OptionsFrom(config.Default())
	opts.Logger = zaptest.NewLogger(t)
	opts.OnEnded = func(fs invaders.FinalState) { ended = append(ended, fs) }
	for _, m := range mutate {
		m(&opts)
	}
	sim := invaders.NewSimulation(opts)
	require.NoError(t, sim.Setup())
	return sim, &ended
}

func TestSimulationSetup(t *testing.T) {
	sim, _ := newSimulation(t)
	w := sim.World()

	assert.Equal(t, invaders.Position{PosX: -300, PosY: -200}, pos(w, sim.Anchor()))
	assert.Equal(t, invaders.Position{PosX: 0, PosY: 200}, pos(w, sim.Player()))
	assert.Equal(t, 0.01, ecs.MustGet[invaders.Velocity](w, sim.Anchor()).XVel)
	assert.Len(t, ecs.SourcesOf[invaders.FollowsTarget](w, sim.Anchor()), 50)
	assert.Equal(t, 52, w.Len())
	assert.Equal(t, invaders.Running, sim.State())
	assert.Equal(t, 1, sim.Bus().Len())

	t.Run("setup twice fails", func(t *testing.T) {
		assert.Error(t, sim.Setup())
	})

	t.Run("empty viewport fails", func(t *testing.T) {
		sim := invaders.NewSimulation(invaders.Options{Game: config.Default().Game})
		assert.Error(t, sim.Setup())
	})

	t.Run("tick before setup is ignored", func(t *testing.T) {
		sim := invaders.NewSimulation(invaders.Options{})
		assert.NotPanics(t, func() { sim.Tick(frame) })
	})
}

func TestSimulationInput(t *testing.T) {
	sim, _ := newSimulation(t)
	w := sim.World()
	bus := sim.Bus()
	keys := config.Default().Keys

	bus.Publish(invaders.KeyEvent{Code: keys.East, Down: true})
	sim.Tick(frame)
	assert.Equal(t, 1.0, ecs.MustGet[invaders.Velocity](w, sim.Player()).XVel)

	sim.Tick(frame)
	assert.InDelta(t, 16, pos(w, sim.Player()).PosX, 1e-9, "velocity applies from the next tick")

	bus.Publish(invaders.KeyEvent{Code: keys.East, Down: false})
	sim.Tick(frame)
	assert.Equal(t, 0.0, ecs.MustGet[invaders.Velocity](w, sim.Player()).XVel)

	bus.Publish(invaders.KeyEvent{Code: keys.West, Down: true})
	sim.Tick(frame)
	assert.Equal(t, -1.0, ecs.MustGet[invaders.Velocity](w, sim.Player()).XVel)

	t.Run("fire spawns a projectile at the player", func(t *testing.T) {
		before := w.Len()
		bus.Publish(invaders.KeyEvent{Code: keys.Fire, Down: true})
		bus.Publish(invaders.KeyEvent{Code: keys.Fire, Down: false})
		require.Equal(t, before+1, w.Len())

		shots := ecs.NewView[struct {
			ecs.Entity
			*invaders.Position
			invaders.IsProjectile
		}](w)
		for shot := range shots.Values() {
			assert.Equal(t, pos(w, sim.Player()), *shot.Position)
		}
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		before := w.Len()
		bus.Publish(invaders.KeyEvent{Code: "KeyQ", Down: true})
		assert.Equal(t, before, w.Len())
	})

	t.Run("invalid direction is rejected at assignment", func(t *testing.T) {
		err := sim.SetControl(invaders.Direction(7))
		assert.ErrorIs(t, err, invaders.ErrUnknownDirection)
		assert.Equal(t, invaders.DirWest, ecs.MustGet[invaders.TwoWayControl](w, sim.Player()).Dir)
	})
}

func TestSimulationProjectileFlight(t *testing.T) {
	sim, _ := newSimulation(t)
	w := sim.World()

	shot, err := sim.Fire()
	require.NoError(t, err)
	sim.Tick(frame)
	assert.InDelta(t, 184, pos(w, shot).PosY, 1e-9)
	assert.Equal(t, invaders.AABB{X: -2.5, Y: 181.5, Width: 5, Height: 5}, *ecs.MustGet[invaders.AABB](w, shot))

	for i := 0; i < 40 && w.Alive(shot); i++ {
		sim.Tick(frame)
	}
	assert.False(t, w.Alive(shot), "the shot leaves the top of the viewport or hits a drone")
}

func TestSimulationLoss(t *testing.T) {
	sim, ended := newSimulation(t)
	w := sim.World()
	bus := sim.Bus()

	sim.Tick(frame)
	require.Empty(t, *ended)

	ecs.Set(w, sim.Player(), invaders.Position{PosX: -390, PosY: -290})
	sim.Tick(frame)

	require.Len(t, *ended, 1)
	assert.Equal(t, invaders.Ended, sim.State())
	final := (*ended)[0]
	assert.Equal(t, "loss", final.Reason)
	assert.Equal(t, 2, final.Ticks)
	assert.Equal(t, 50, final.EnemiesLeft)
	assert.Equal(t, final, sim.FinalState())

	t.Run("input is detached", func(t *testing.T) {
		assert.Equal(t, 0, bus.Len())
		before := w.Len()
		bus.Publish(invaders.KeyEvent{Code: "KeyV", Down: true})
		assert.Equal(t, before, w.Len())

		_, err := sim.Fire()
		assert.ErrorIs(t, err, invaders.ErrEnded)
		assert.ErrorIs(t, sim.SetControl(invaders.DirEast), invaders.ErrEnded)
	})

	t.Run("ended is terminal", func(t *testing.T) {
		sim.Tick(frame)
		sim.End("again")
		assert.Len(t, *ended, 1)
		assert.Equal(t, 2, sim.Ticks())
	})
}

func TestSimulationInputLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sim, _ := newSimulation(t, func(o *invaders.Options) { o.Logger = zap.New(core) })
	keys := config.Default().Keys

	for _, code := range []string{keys.West, keys.East, keys.Fire} {
		sim.Bus().Publish(invaders.KeyEvent{Code: code, Down: true})
		sim.Bus().Publish(invaders.KeyEvent{Code: code, Down: false})
	}
	assert.Zero(t, logs.FilterMessage("key ignored").Len())
	assert.Equal(t, invaders.DirNone, ecs.MustGet[invaders.TwoWayControl](sim.World(), sim.Player()).Dir)
	assert.Equal(t, 1, logs.FilterMessage("simulation started").Len())
}

func TestSimulationEndBetweenTicks(t *testing.T) {
	sim, ended := newSimulation(t)
	sim.End("quit")
	require.Len(t, *ended, 1)
	assert.Equal(t, "quit", (*ended)[0].Reason)
	assert.Equal(t, 0, sim.Bus().Len())
}

func TestSimulationKillsAndTeardown(t *testing.T) {
	sim, ended := newSimulation(t)
	w := sim.World()

	drone := ecs.SourcesOf[invaders.FollowsTarget](w, sim.Anchor())[0]
	at := pos(w, drone)
	invaders.SpawnProjectile(w, config.Default().Game, at)

	var kills []ecs.Entity
	w.OnDestroy(func(e ecs.Entity) {
		if invaders.IsKill(w, e) {
			kills = append(kills, e)
		}
	})

	sim.Tick(invaders.FrameParams{DeltaMs: 0, Width: 800, Height: 600})
	assert.False(t, w.Alive(drone))
	assert.Equal(t, []ecs.Entity{drone}, kills, "spent projectiles are not kills")
	assert.Equal(t, 1, sim.Kills())

	released := 0
	w.OnDestroy(func(ecs.Entity) { released++ })
	remaining := w.Len()

	sim.End("quit")
	require.Len(t, *ended, 1)
	assert.Equal(t, 1, (*ended)[0].Kills)
	assert.Equal(t, 49, (*ended)[0].EnemiesLeft)

	sim.Teardown()
	assert.Equal(t, remaining, released)
	assert.Equal(t, 0, w.Len())
}

func TestSimulationSwarmSweep(t *testing.T) {
	sim, _ := newSimulation(t)
	w := sim.World()

	turned := 0
	lastY := pos(w, sim.Anchor()).PosY
	for i := 0; i < 2000 && turned == 0; i++ {
		sim.Tick(frame)
		if y := pos(w, sim.Anchor()).PosY; y != lastY {
			turned++
			lastY = y
		}
	}
	require.Equal(t, 1, turned)
	assert.Equal(t, -150.0, lastY)
	assert.Less(t, ecs.MustGet[invaders.Velocity](w, sim.Anchor()).XVel, 0.0)

	for _, d := range ecs.SourcesOf[invaders.FollowsTarget](w, sim.Anchor()) {
		off, _ := ecs.PayloadFor[invaders.FollowsTarget](w, d, sim.Anchor())
		assert.Equal(t, lastY+off.Offset.PosY, pos(w, d).PosY)
	}
}

func TestSimulationDebugPause(t *testing.T) {
	sim, _ := newSimulation(t, func(o *invaders.Options) {
		o.Debug.PauseOnCollision = true
	})
	w := sim.World()
	bus := sim.Bus()
	keys := config.Default().Keys

	drone := ecs.SourcesOf[invaders.FollowsTarget](w, sim.Anchor())[0]
	shot := invaders.SpawnProjectile(w, config.Default().Game, pos(w, drone))

	sim.Tick(frame)
	require.True(t, sim.Paused())
	assert.Equal(t, 0, sim.Ticks())
	assert.True(t, w.Alive(shot))

	t.Run("movement and fire are ignored while paused", func(t *testing.T) {
		before := w.Len()
		bus.Publish(invaders.KeyEvent{Code: keys.Fire, Down: true})
		bus.Publish(invaders.KeyEvent{Code: keys.East, Down: true})
		assert.Equal(t, before, w.Len())
		assert.Equal(t, invaders.DirNone, ecs.MustGet[invaders.TwoWayControl](w, sim.Player()).Dir)
	})

	t.Run("step runs exactly one tick", func(t *testing.T) {
		bus.Publish(invaders.KeyEvent{Code: keys.Step, Down: true})
		sim.Tick(frame)
		assert.Equal(t, 1, sim.Ticks())
		assert.False(t, w.Alive(shot))
		assert.False(t, w.Alive(drone))

		sim.Tick(frame)
		assert.Equal(t, 1, sim.Ticks(), "still paused after the step")
	})

	t.Run("step with no collision resumes", func(t *testing.T) {
		bus.Publish(invaders.KeyEvent{Code: keys.Step, Down: true})
		sim.Tick(frame)
		sim.Tick(frame)
		assert.False(t, sim.Paused())
		assert.Equal(t, 3, sim.Ticks())
	})
}
