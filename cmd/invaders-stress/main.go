// Command invaders-stress runs many headless games at once with scripted input
// and reports tick timings and per-system scheduler statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/plus3/invaders/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file. Defaults are used when empty.")
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	games := flag.Int("games", runtime.GOMAXPROCS(0), "The number of games to run concurrently.")
	tickMs := flag.Float64("tick", 16, "Simulated milliseconds per tick.")
	roundTicks := flag.Int("round-ticks", 20000, "End a round after this many ticks; 0 for no limit.")
	seed := flag.Uint64("seed", 1, "Seed for the scripted input.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *games < 1 {
		return fmt.Errorf("-games must be at least 1, got %d", *games)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting stress test",
		zap.Int("games", *games),
		zap.Duration("duration", *duration),
		zap.Float64("tick_ms", *tickMs),
	)

	report := &Report{
		Duration:       *duration,
		Games:          *games,
		TickMs:         *tickMs,
		RoundTicks:     *roundTicks,
		Seed:           *seed,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	opts := RunOptions{
		Config:     cfg,
		Seed:       *seed,
		TickMs:     *tickMs,
		RoundTicks: *roundTicks,
		// per-round lifecycle logs would drown the report
		Logger: logger.Named("game").WithOptions(zap.IncreaseLevel(zapcore.WarnLevel)),
	}

	startTime := time.Now()
	results := make([]*GameResult, *games)
	g, gctx := errgroup.WithContext(ctx)
	for i := range *games {
		g.Go(func() error {
			res, err := runGame(gctx, i, opts)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stress run: %w", err)
	}

	report.TotalTime = time.Since(startTime)
	report.Collect(results)
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("stress test finished",
		zap.Int64("ticks", report.TotalTicks),
		zap.Int("rounds", report.TotalRounds),
	)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}
