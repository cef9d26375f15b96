package invaders_test

import (
	"errors"
	"testing"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameConfig() config.GameConfig {
	return config.Default().Game
}

// run executes the given systems once, in order, against w.
func run(w *ecs.World, dt float64, systems ...ecs.System) {
	scheduler := ecs.NewScheduler(w)
	for _, s := range systems {
		scheduler.Register(s)
	}
	scheduler.Once(dt)
}

type systemFunc func(*ecs.UpdateFrame)

func (f systemFunc) Execute(frame *ecs.UpdateFrame) { f(frame) }

func pos(w *ecs.World, e ecs.Entity) invaders.Position {
	return *ecs.MustGet[invaders.Position](w, e)
}

func TestMotionSystem(t *testing.T) {
	t.Run("zero delta leaves positions unchanged", func(t *testing.T) {
		w := invaders.NewWorld()
		e := w.Spawn(invaders.Position{PosX: 3, PosY: 4}, invaders.Velocity{XVel: 5, YVel: -2})
		run(w, 0, &invaders.MotionSystem{})
		assert.Equal(t, invaders.Position{PosX: 3, PosY: 4}, pos(w, e))
	})

	t.Run("projectile rises by delta times speed", func(t *testing.T) {
		w := invaders.NewWorld()
		p := invaders.SpawnProjectile(w, gameConfig(), invaders.Position{PosX: 0, PosY: 100})
		require.Equal(t, -1.0, ecs.MustGet[invaders.Velocity](w, p).YVel)

		run(w, 16, &invaders.MotionSystem{})
		assert.InDelta(t, 84, pos(w, p).PosY, 1e-9)
		assert.Equal(t, 0.0, pos(w, p).PosX)
	})

	t.Run("entities without velocity do not move", func(t *testing.T) {
		w := invaders.NewWorld()
		e := w.Spawn(invaders.Position{PosX: 1, PosY: 1})
		run(w, 16, &invaders.MotionSystem{})
		assert.Equal(t, invaders.Position{PosX: 1, PosY: 1}, pos(w, e))
	})
}

func TestFollowerSystem(t *testing.T) {
	w := invaders.NewWorld()
	cfg := gameConfig()
	anchor := invaders.SpawnSwarmAnchor(w, cfg, invaders.Position{PosX: -300, PosY: -200})
	drones := invaders.SpawnSwarmGrid(w, cfg, anchor)
	require.Len(t, drones, 50)

	scheduler := ecs.NewScheduler(w)
	scheduler.Register(&invaders.MotionSystem{})
	scheduler.Register(&invaders.FollowerSystem{})

	for tick := 0; tick < 500; tick++ {
		scheduler.Once(16.7)
		a := pos(w, anchor)
		for _, d := range drones {
			off, ok := ecs.PayloadFor[invaders.FollowsTarget](w, d, anchor)
			require.True(t, ok)
			p := pos(w, d)
			if p.PosX != a.PosX+off.Offset.PosX || p.PosY != a.PosY+off.Offset.PosY {
				t.Fatalf("tick %d: drone %s at %+v, anchor %+v offset %+v", tick, d, p, a, off.Offset)
			}
		}
	}

	t.Run("grid is column major", func(t *testing.T) {
		off, _ := ecs.PayloadFor[invaders.FollowsTarget](w, drones[1], anchor)
		assert.Equal(t, invaders.RelativePosition{PosX: 0, PosY: 50}, off.Offset)
		off, _ = ecs.PayloadFor[invaders.FollowsTarget](w, drones[5], anchor)
		assert.Equal(t, invaders.RelativePosition{PosX: 50, PosY: 0}, off.Offset)
	})

	t.Run("target with no position is an invariant violation", func(t *testing.T) {
		w := invaders.NewWorld()
		target := w.Spawn(invaders.Velocity{})
		w.Spawn(invaders.Position{}, ecs.Pair(target, invaders.FollowsTarget{}))
		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ecs.ErrInvariant)
		}()
		run(w, 1, &invaders.FollowerSystem{})
	})
}

func TestProjectileEnemySystem(t *testing.T) {
	cfg := gameConfig()
	setup := func(projectileAt invaders.Position) (*ecs.World, ecs.Entity, ecs.Entity) {
		w := invaders.NewWorld()
		anchor := invaders.SpawnSwarmAnchor(w, cfg, invaders.Position{})
		drone := invaders.SpawnEnemyDrone(w, cfg, invaders.Position{PosX: 100, PosY: 100}, invaders.RelativePosition{}, anchor)
		projectile := invaders.SpawnProjectile(w, cfg, projectileAt)
		return w, drone, projectile
	}
	destroyed := func(w *ecs.World, e ecs.Entity) bool {
		return ecs.MustGet[invaders.DestroyedStatus](w, e).IsDestroyed
	}

	t.Run("overlap destroys both", func(t *testing.T) {
		w, drone, projectile := setup(invaders.Position{PosX: 105, PosY: 110})
		run(w, 16, &invaders.ProjectileEnemySystem{})
		assert.True(t, destroyed(w, drone))
		assert.True(t, destroyed(w, projectile))
	})

	t.Run("no overlap changes nothing", func(t *testing.T) {
		w, drone, projectile := setup(invaders.Position{PosX: 150, PosY: 100})
		run(w, 16, &invaders.ProjectileEnemySystem{})
		assert.False(t, destroyed(w, drone))
		assert.False(t, destroyed(w, projectile))
	})

	t.Run("touching edges do not collide", func(t *testing.T) {
		// drone box spans [87.5, 112.5], projectile box [112.5, 117.5]
		w, drone, _ := setup(invaders.Position{PosX: 115, PosY: 100})
		run(w, 16, &invaders.ProjectileEnemySystem{})
		assert.False(t, destroyed(w, drone))
	})

	t.Run("already destroyed projectile is inert", func(t *testing.T) {
		w, drone, projectile := setup(invaders.Position{PosX: 100, PosY: 100})
		ecs.Update(w, projectile, func(d *invaders.DestroyedStatus) { d.IsDestroyed = true })
		run(w, 16, &invaders.ProjectileEnemySystem{})
		assert.False(t, destroyed(w, drone))
	})

	t.Run("one projectile destroys one enemy", func(t *testing.T) {
		w, drone, projectile := setup(invaders.Position{PosX: 100, PosY: 100})
		anchor, _ := ecs.TargetFor[invaders.FollowsTarget](w, drone)
		other := invaders.SpawnEnemyDrone(w, cfg, invaders.Position{PosX: 102, PosY: 100}, invaders.RelativePosition{}, anchor)
		run(w, 16, &invaders.ProjectileEnemySystem{})
		assert.True(t, destroyed(w, projectile))
		assert.NotEqual(t, destroyed(w, drone), destroyed(w, other))
	})
}

func TestDestroyedCullingSystem(t *testing.T) {
	w := invaders.NewWorld()
	cfg := gameConfig()
	keep := invaders.SpawnProjectile(w, cfg, invaders.Position{})
	drop := invaders.SpawnProjectile(w, cfg, invaders.Position{PosX: 10})
	ecs.Update(w, drop, func(d *invaders.DestroyedStatus) { d.IsDestroyed = true })

	run(w, 16, &invaders.DestroyedCullingSystem{})
	assert.True(t, w.Alive(keep))
	assert.False(t, w.Alive(drop))

	view := ecs.NewView[struct{ *invaders.DestroyedStatus }](w)
	for item := range view.Values() {
		assert.False(t, item.DestroyedStatus.IsDestroyed)
	}

	t.Run("second run is a no-op", func(t *testing.T) {
		before := w.Len()
		run(w, 16, &invaders.DestroyedCullingSystem{})
		assert.Equal(t, before, w.Len())
	})
}

func TestOutOfBoundsSystem(t *testing.T) {
	viewport := invaders.Viewport{Width: 800, Height: 600}
	cases := []struct {
		name   string
		at     invaders.Position
		extras []any
		alive  bool
	}{
		{"inside", invaders.Position{PosX: 0, PosY: 0}, nil, true},
		{"on the edge", invaders.Position{PosX: 400, PosY: -300}, nil, true},
		{"left", invaders.Position{PosX: -401}, nil, false},
		{"right with velocity", invaders.Position{PosX: 401}, []any{invaders.Velocity{XVel: 1}}, false},
		{"above with box", invaders.Position{PosY: -301}, []any{invaders.AABB{Width: 5, Height: 5}}, false},
		{"below as enemy", invaders.Position{PosY: 301}, []any{invaders.IsEnemy{}, invaders.DestroyedStatus{}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := invaders.NewWorld()
			ecs.NewSingleton(w, viewport)
			e := w.Spawn(append([]any{tc.at}, tc.extras...)...)
			run(w, 16, &invaders.OutOfBoundsSystem{})
			assert.Equal(t, tc.alive, w.Alive(e))
		})
	}

	t.Run("cadence", func(t *testing.T) {
		w := invaders.NewWorld()
		ecs.NewSingleton(w, viewport)
		e := w.Spawn(invaders.Position{PosX: 1000})

		scheduler := ecs.NewScheduler(w)
		scheduler.Register(&invaders.OutOfBoundsSystem{Every: 3})
		scheduler.Once(16)
		scheduler.Once(16)
		assert.True(t, w.Alive(e))
		scheduler.Once(16)
		assert.False(t, w.Alive(e))
	})
}

func TestBoundsSyncSystem(t *testing.T) {
	w := invaders.NewWorld()
	p := invaders.SpawnProjectile(w, gameConfig(), invaders.Position{PosX: 10, PosY: 20})
	ecs.Update(w, p, func(pos *invaders.Position) { pos.PosY = -40 })

	run(w, 16, &invaders.BoundsSyncSystem{})
	assert.Equal(t, invaders.AABB{X: 7.5, Y: -42.5, Width: 5, Height: 5}, *ecs.MustGet[invaders.AABB](w, p))
}

func TestControlSystem(t *testing.T) {
	w := invaders.NewWorld()
	player := invaders.SpawnPlayer(w, gameConfig(), invaders.Position{PosY: 200})
	velocity := func() float64 { return ecs.MustGet[invaders.Velocity](w, player).XVel }
	steer := func(d invaders.Direction) {
		ecs.Update(w, player, func(c *invaders.TwoWayControl) { c.Dir = d })
	}

	steer(invaders.DirEast)
	run(w, 16, &invaders.ControlSystem{})
	assert.Equal(t, 1.0, velocity())

	steer(invaders.DirWest)
	run(w, 16, &invaders.ControlSystem{})
	assert.Equal(t, -1.0, velocity())

	steer(invaders.DirNone)
	run(w, 16, &invaders.ControlSystem{})
	assert.Equal(t, 0.0, velocity())

	t.Run("only players are steered", func(t *testing.T) {
		other := w.Spawn(invaders.TwoWayControl{Dir: invaders.DirEast}, invaders.ThrustVelocity{Magnitude: 1}, invaders.Velocity{})
		run(w, 16, &invaders.ControlSystem{})
		assert.Equal(t, 0.0, ecs.MustGet[invaders.Velocity](w, other).XVel)
	})

	t.Run("unknown direction panics", func(t *testing.T) {
		steer(invaders.Direction(9))
		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.True(t, errors.Is(err, invaders.ErrUnknownDirection))
		}()
		run(w, 16, &invaders.ControlSystem{})
	})
}

func TestLossConditionSystem(t *testing.T) {
	w := invaders.NewWorld()
	cfg := gameConfig()
	anchor := invaders.SpawnSwarmAnchor(w, cfg, invaders.Position{PosX: -300, PosY: -200})
	invaders.SpawnSwarmGrid(w, cfg, anchor)
	player := invaders.SpawnPlayer(w, cfg, invaders.Position{PosX: 0, PosY: 200})

	calls := 0
	loss := &invaders.LossConditionSystem{OnLoss: func() { calls++ }}
	run(w, 16, loss)
	assert.Equal(t, 0, calls, "swarm above the player")

	ecs.Set(w, player, invaders.Position{PosX: -390, PosY: -290})
	run(w, 16, loss)
	assert.Equal(t, 1, calls, "scan stops at the first qualifying pair")

	t.Run("right but not below is no loss", func(t *testing.T) {
		ecs.Set(w, player, invaders.Position{PosX: -390, PosY: 0})
		run(w, 16, loss)
		assert.Equal(t, 1, calls)
	})

	t.Run("loss is reported after the frame's systems", func(t *testing.T) {
		ecs.Set(w, player, invaders.Position{PosX: -390, PosY: -290})
		var order []string
		loss := &invaders.LossConditionSystem{OnLoss: func() { order = append(order, "loss") }}
		later := systemFunc(func(*ecs.UpdateFrame) { order = append(order, "later") })
		run(w, 16, loss, later)
		assert.Equal(t, []string{"later", "loss"}, order)
	})

	t.Run("nil callback is tolerated", func(t *testing.T) {
		ecs.Set(w, player, invaders.Position{PosX: -390, PosY: -290})
		assert.NotPanics(t, func() { run(w, 16, &invaders.LossConditionSystem{}) })
	})
}

func TestSwarmBoundary(t *testing.T) {
	w := invaders.NewWorld()
	cfg := gameConfig()
	anchor := invaders.SpawnSwarmAnchor(w, cfg, invaders.Position{PosX: -300, PosY: -200})
	minX, maxX := invaders.SwarmLimits(800, cfg.SwarmMinOffset, cfg.SwarmMaxOffset)
	require.Equal(t, -350.0, minX)
	require.Equal(t, -100.0, maxX)

	assert.False(t, invaders.SwarmBoundary(w, anchor, minX, maxX, cfg.SwarmDescent))
	assert.Equal(t, invaders.Position{PosX: -300, PosY: -200}, pos(w, anchor))

	ecs.Update(w, anchor, func(p *invaders.Position) { p.PosX = -99 })
	assert.True(t, invaders.SwarmBoundary(w, anchor, minX, maxX, cfg.SwarmDescent))
	assert.Equal(t, invaders.Position{PosX: -100, PosY: -150}, pos(w, anchor))
	assert.Equal(t, -0.01, ecs.MustGet[invaders.Velocity](w, anchor).XVel)

	t.Run("left bound", func(t *testing.T) {
		ecs.Update(w, anchor, func(p *invaders.Position) { p.PosX = -351 })
		assert.True(t, invaders.SwarmBoundary(w, anchor, minX, maxX, cfg.SwarmDescent))
		assert.Equal(t, invaders.Position{PosX: -350, PosY: -100}, pos(w, anchor))
		assert.Equal(t, 0.01, ecs.MustGet[invaders.Velocity](w, anchor).XVel)
	})

	t.Run("stale anchor is a no-op", func(t *testing.T) {
		w.Destroy(anchor)
		assert.False(t, invaders.SwarmBoundary(w, anchor, minX, maxX, cfg.SwarmDescent))
	})
}

func TestDrawList(t *testing.T) {
	w := invaders.NewWorld()
	cfg := gameConfig()
	anchor := invaders.SpawnSwarmAnchor(w, cfg, invaders.Position{})
	drone := invaders.SpawnEnemyDrone(w, cfg, invaders.Position{}, invaders.RelativePosition{}, anchor)
	player := invaders.SpawnPlayer(w, cfg, invaders.Position{PosY: 200})
	shot := invaders.SpawnProjectile(w, cfg, invaders.Position{PosY: 150})
	ecs.Update(w, shot, func(d *invaders.DestroyedStatus) { d.IsDestroyed = true })

	got := map[ecs.Entity]invaders.Drawable{}
	for d := range invaders.NewDrawList(w).Items() {
		got[d.Entity] = d
	}

	assert.Len(t, got, 2, "anchor has no render hint and the shot is destroyed")
	require.Contains(t, got, drone)
	require.Contains(t, got, player)
	assert.Equal(t, invaders.DroneColor, got[drone].Square.FillColor)
	assert.NotNil(t, got[drone].Box)
	assert.Nil(t, got[player].Box)
	assert.Nil(t, got[player].Mesh)
}

func TestMeshes(t *testing.T) {
	cfg := gameConfig()
	cfg.Meshes = true
	w := invaders.NewWorld()
	anchor := invaders.SpawnSwarmAnchor(w, cfg, invaders.Position{})
	a := invaders.SpawnEnemyDrone(w, cfg, invaders.Position{}, invaders.RelativePosition{}, anchor)
	b := invaders.SpawnEnemyDrone(w, cfg, invaders.Position{PosX: 50}, invaders.RelativePosition{PosX: 50}, anchor)

	meshA := ecs.MustGet[invaders.Mesh](w, a)
	meshB := ecs.MustGet[invaders.Mesh](w, b)
	assert.Equal(t, invaders.ModelDrone, meshA.Model)
	assert.NotEqual(t, meshA.Handle, meshB.Handle)
	assert.Equal(t, cfg.DroneSize, ecs.MustGet[invaders.AABB](w, a).Width)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]invaders.Direction{
		"none": invaders.DirNone,
		"e":    invaders.DirEast,
		"west": invaders.DirWest,
	} {
		got, err := invaders.ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := invaders.ParseDirection("north")
	assert.ErrorIs(t, err, invaders.ErrUnknownDirection)
	assert.False(t, invaders.Direction(3).Valid())
}
