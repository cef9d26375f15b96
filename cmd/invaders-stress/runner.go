package main

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"go.uber.org/zap"
)

// GameResult is what one headless game loop produced.
type GameResult struct {
	ID       int
	Rounds   int
	Losses   int
	Ticks    int64
	Kills    int
	TickTime Stats
	Systems  *SystemTotals
}

// RunOptions configures one headless game loop.
type RunOptions struct {
	Config     *config.Config
	Seed       uint64
	TickMs     float64
	RoundTicks int
	Logger     *zap.Logger
}

// runGame plays rounds back to back until ctx is done. A round ends on a loss
// or after RoundTicks ticks.
func runGame(ctx context.Context, id int, opts RunOptions) (*GameResult, error) {
	result := &GameResult{ID: id, Systems: NewSystemTotals()}
	script := NewScript(opts.Config.Keys, opts.Seed+uint64(id))
	bus := invaders.NewKeyBus()
	viewport := invaders.Viewport{Width: float64(opts.Config.Window.Width), Height: float64(opts.Config.Window.Height)}
	frame := invaders.FrameParams{DeltaMs: opts.TickMs, Width: viewport.Width, Height: viewport.Height}

	for ctx.Err() == nil {
		var final *invaders.FinalState
		simOpts := invaders.OptionsFrom(opts.Config)
		simOpts.Bus = bus
		simOpts.Logger = opts.Logger.With(zap.Int("game", id), zap.Int("round", result.Rounds))
		simOpts.OnEnded = func(fs invaders.FinalState) { final = &fs }

		sim := invaders.NewSimulation(simOpts)
		if err := sim.Setup(); err != nil {
			return result, fmt.Errorf("game %d round %d: %w", id, result.Rounds, err)
		}
		script.Reset()

		for tick := 0; final == nil; tick++ {
			if ctx.Err() != nil {
				break
			}
			if opts.RoundTicks > 0 && tick >= opts.RoundTicks {
				sim.End("round limit")
				break
			}
			for _, ev := range script.Events(tick) {
				bus.Publish(ev)
			}

			start := time.Now()
			sim.Tick(frame)
			result.TickTime.Add(time.Since(start))
			result.Ticks++
		}

		result.Systems.Add(sim.Scheduler().GetStats())
		if final != nil {
			result.Rounds++
			result.Kills += final.Kills
			if final.Reason == "loss" {
				result.Losses++
			}
		} else {
			result.Kills += sim.Kills()
		}
		sim.Teardown()
	}
	return result, nil
}

// SystemTotals accumulates scheduler statistics across rounds and games,
// keeping systems in first-seen order.
type SystemTotals struct {
	order  []string
	totals map[string]*ecs.SystemStats
}

func NewSystemTotals() *SystemTotals {
	return &SystemTotals{totals: make(map[string]*ecs.SystemStats)}
}

func (t *SystemTotals) Add(stats *ecs.SchedulerStats) {
	for _, sys := range stats.Systems {
		t.add(sys)
	}
}

func (t *SystemTotals) Merge(other *SystemTotals) {
	for _, sys := range other.Systems() {
		t.add(sys)
	}
}

func (t *SystemTotals) add(sys ecs.SystemStats) {
	if sys.ExecutionCount == 0 {
		return
	}
	total, ok := t.totals[sys.Name]
	if !ok {
		t.order = append(t.order, sys.Name)
		copied := sys
		t.totals[sys.Name] = &copied
		return
	}
	total.ExecutionCount += sys.ExecutionCount
	total.TotalDuration += sys.TotalDuration
	total.MinDuration = min(total.MinDuration, sys.MinDuration)
	total.MaxDuration = max(total.MaxDuration, sys.MaxDuration)
	total.LastDuration = sys.LastDuration
	total.AvgDuration = total.TotalDuration / time.Duration(total.ExecutionCount)
}

// Systems returns the accumulated stats in first-seen order
func (t *SystemTotals) Systems() []ecs.SystemStats {
	out := make([]ecs.SystemStats, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.totals[name])
	}
	return out
}
