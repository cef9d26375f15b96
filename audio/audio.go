// Package audio plays the game's sound effects through the system speaker.
// Sound is optional: hosts keep running when the speaker cannot be opened.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"go.uber.org/zap"
)

const (
	SampleRate = beep.SampleRate(44100)

	HitFrequency = 880
	HitDuration  = 50 * time.Millisecond
)

// Sounds renders effects and hands them to an output. The zero value is not
// usable; use Open or New.
type Sounds struct {
	rate   beep.SampleRate
	out    func(...beep.Streamer)
	close  func()
	logger *zap.Logger
}

// Open initializes the speaker with a 100 ms buffer.
func Open(logger *zap.Logger) (*Sounds, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	s := New(SampleRate, speaker.Play, logger)
	s.close = speaker.Close
	return s, nil
}

// New returns Sounds that render at rate and pass every effect to out.
func New(rate beep.SampleRate, out func(...beep.Streamer), logger *zap.Logger) *Sounds {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sounds{rate: rate, out: out, logger: logger}
}

// Tone returns a sine tone of the given frequency and length.
func Tone(rate beep.SampleRate, freq int, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, float64(freq))
	if err != nil {
		return nil, fmt.Errorf("tone %d Hz: %w", freq, err)
	}
	return beep.Take(rate.N(d), sine), nil
}

// Hit plays the enemy-destroyed blip.
func (s *Sounds) Hit() {
	tone, err := Tone(s.rate, HitFrequency, HitDuration)
	if err != nil {
		s.logger.Warn("hit sound", zap.Error(err))
		return
	}
	s.out(tone)
}

// Attach plays Hit for every enemy shot down in sim.
func (s *Sounds) Attach(sim *invaders.Simulation) {
	w := sim.World()
	w.OnDestroy(func(e ecs.Entity) {
		if invaders.IsKill(w, e) {
			s.Hit()
		}
	})
}

// Close releases the speaker, if Open acquired it.
func (s *Sounds) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}
