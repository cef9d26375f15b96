package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestScriptDeterministic(t *testing.T) {
	keys := config.Default().Keys
	a, b := NewScript(keys, 7), NewScript(keys, 7)
	for tick := range 300 {
		require.Equal(t, a.Events(tick), b.Events(tick), "tick %d", tick)
	}
}

func TestScriptEvents(t *testing.T) {
	keys := config.Default().Keys
	s := NewScript(keys, 3)
	s.TurnEvery = 0

	assert.Equal(t, []invaders.KeyEvent{
		{Code: keys.Fire, Down: true},
		{Code: keys.Fire, Down: false},
	}, s.Events(0))
	assert.Empty(t, s.Events(1))

	t.Run("steering keys are released before switching", func(t *testing.T) {
		s := NewScript(keys, 3)
		s.FireEvery = 0
		held := ""
		for tick := 0; tick < 3000; tick += s.TurnEvery {
			for _, ev := range s.Events(tick) {
				if ev.Down {
					assert.Empty(t, held, "pressed %s while %s held", ev.Code, held)
					held = ev.Code
				} else {
					assert.Equal(t, held, ev.Code)
					held = ""
				}
			}
		}
	})
}

func TestRunGame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res, err := runGame(ctx, 0, RunOptions{
		Config:     config.Default(),
		Seed:       1,
		TickMs:     16,
		RoundTicks: 50,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	assert.Greater(t, res.Ticks, int64(0))
	assert.Equal(t, res.Ticks, res.TickTime.Count)
	assert.LessOrEqual(t, res.TickTime.Min, res.TickTime.Max)
	assert.GreaterOrEqual(t, res.Rounds, 1, "50 tick rounds finish well within the deadline")

	names := make([]string, 0)
	for _, sys := range res.Systems.Systems() {
		names = append(names, sys.Name)
	}
	assert.Equal(t, []string{
		"LossConditionSystem",
		"ProjectileEnemySystem",
		"MotionSystem",
		"FollowerSystem",
		"ControlSystem",
		"OutOfBoundsSystem",
		"DestroyedCullingSystem",
		"BoundsSyncSystem",
	}, names)
}

func TestSystemTotals(t *testing.T) {
	totals := NewSystemTotals()
	totals.Add(&ecs.SchedulerStats{Systems: []ecs.SystemStats{
		{Name: "A", ExecutionCount: 2, TotalDuration: 4 * time.Millisecond, MinDuration: time.Millisecond, MaxDuration: 3 * time.Millisecond},
		{Name: "Idle"},
	}})

	other := NewSystemTotals()
	other.Add(&ecs.SchedulerStats{Systems: []ecs.SystemStats{
		{Name: "B", ExecutionCount: 1, TotalDuration: time.Millisecond, MinDuration: time.Millisecond, MaxDuration: time.Millisecond},
		{Name: "A", ExecutionCount: 2, TotalDuration: 8 * time.Millisecond, MinDuration: 2 * time.Millisecond, MaxDuration: 6 * time.Millisecond},
	}})
	totals.Merge(other)

	systems := totals.Systems()
	require.Len(t, systems, 2, "systems that never ran are skipped")
	a := systems[0]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, int64(4), a.ExecutionCount)
	assert.Equal(t, 12*time.Millisecond, a.TotalDuration)
	assert.Equal(t, 3*time.Millisecond, a.AvgDuration)
	assert.Equal(t, time.Millisecond, a.MinDuration)
	assert.Equal(t, 6*time.Millisecond, a.MaxDuration)
	assert.Equal(t, "B", systems[1].Name)
}

func TestStats(t *testing.T) {
	var a, b Stats
	a.Add(4 * time.Millisecond)
	a.Add(2 * time.Millisecond)
	b.Add(time.Millisecond)
	b.Add(5 * time.Millisecond)

	t.Run("merging an empty summary changes nothing", func(t *testing.T) {
		before := a
		a.Merge(Stats{})
		assert.Equal(t, before, a)
	})

	var total Stats
	total.Merge(a)
	total.Merge(b)
	total.Finalize()
	assert.Equal(t, int64(4), total.Count)
	assert.Equal(t, time.Millisecond, total.Min)
	assert.Equal(t, 5*time.Millisecond, total.Max)
	assert.Equal(t, 3*time.Millisecond, total.Avg)
}

func TestReportGenerate(t *testing.T) {
	report := &Report{Duration: time.Second, Games: 2, TickMs: 16, RoundTicks: 100, Seed: 9}
	res := &GameResult{Rounds: 3, Losses: 1, Ticks: 3, Kills: 4, Systems: NewSystemTotals()}
	for _, d := range []time.Duration{time.Millisecond, 3 * time.Millisecond, 2 * time.Millisecond} {
		res.TickTime.Add(d)
	}
	res.Systems.Add(&ecs.SchedulerStats{Systems: []ecs.SystemStats{{Name: "MotionSystem", ExecutionCount: 3}}})
	report.Collect([]*GameResult{res, nil})

	assert.Equal(t, 2*time.Millisecond, report.TickTime.Avg)
	assert.Equal(t, time.Millisecond, report.TickTime.Min)
	assert.Equal(t, 3*time.Millisecond, report.TickTime.Max)

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Concurrent Games:** 2")
	assert.Contains(t, out, "**Rounds Finished:** 3 (1 lost)")
	assert.Contains(t, out, "**Enemies Destroyed:** 4")
	assert.Contains(t, out, "| MotionSystem | 3 |")
	assert.Contains(t, out, "**Round Limit:** 100 ticks")
	assert.NotContains(t, out, "GC Pause")
}
