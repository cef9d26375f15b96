package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/invaders/ecs"
)

type Report struct {
	// Configuration
	Duration   time.Duration
	Games      int
	TickMs     float64
	RoundTicks int
	Seed       uint64

	// Results
	TotalTicks     int64
	TotalRounds    int
	TotalLosses    int
	TotalKills     int
	TotalTime      time.Duration
	TickTime       Stats
	Systems        []ecs.SystemStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// Stats is a running summary of durations. It keeps no samples, so it stays
// the same size however long the run.
type Stats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Total time.Duration
}

func (s *Stats) Add(d time.Duration) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
}

func (s *Stats) Merge(other Stats) {
	if other.Count == 0 {
		return
	}
	if s.Count == 0 || other.Min < s.Min {
		s.Min = other.Min
	}
	s.Max = max(s.Max, other.Max)
	s.Count += other.Count
	s.Total += other.Total
}

func (s *Stats) Finalize() {
	if s.Count > 0 {
		s.Avg = s.Total / time.Duration(s.Count)
	}
}

// Collect folds per-game results into the report
func (r *Report) Collect(results []*GameResult) {
	systems := NewSystemTotals()
	for _, res := range results {
		if res == nil {
			continue
		}
		r.TotalTicks += res.Ticks
		r.TotalRounds += res.Rounds
		r.TotalLosses += res.Losses
		r.TotalKills += res.Kills
		r.TickTime.Merge(res.TickTime)
		systems.Merge(res.Systems)
	}
	r.TickTime.Finalize()
	r.Systems = systems.Systems()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Invaders Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Concurrent Games:** {{.Games}}
- **Tick Length:** {{.TickMs}} ms
- **Round Limit:** {{if .RoundTicks}}{{.RoundTicks}} ticks{{else}}none{{end}}
- **Seed:** {{.Seed}}

## Game Results
- **Total Ticks:** {{.TotalTicks}}
- **Rounds Finished:** {{.TotalRounds}} ({{.TotalLosses}} lost)
- **Enemies Destroyed:** {{.TotalKills}}

## Performance Results
- **Total Test Time:** {{.TotalTime}}
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}

## Systems
| System | Runs | Avg | Min | Max |
|---|---|---|---|---|
{{- range .Systems}}
| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{- end}}

## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc)}}
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end) -> delta: {{mb (bsub .MemStatsEnd.Sys .MemStatsStart.Sys)}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
