package main

import (
	"math/rand/v2"

	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/invaders"
)

// Script plays the game with pseudo-random input: it picks a new steering key
// every TurnEvery ticks and taps fire every FireEvery ticks.
type Script struct {
	TurnEvery int
	FireEvery int

	keys config.KeysConfig
	rng  *rand.Rand
	held string
}

func NewScript(keys config.KeysConfig, seed uint64) *Script {
	return &Script{
		TurnEvery: 30,
		FireEvery: 10,
		keys:      keys,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Events returns the key events to publish before the given tick.
func (s *Script) Events(tick int) []invaders.KeyEvent {
	var events []invaders.KeyEvent

	if s.TurnEvery > 0 && tick%s.TurnEvery == 0 {
		next := []string{"", s.keys.West, s.keys.East}[s.rng.IntN(3)]
		if next != s.held {
			if s.held != "" {
				events = append(events, invaders.KeyEvent{Code: s.held, Down: false})
			}
			if next != "" {
				events = append(events, invaders.KeyEvent{Code: next, Down: true})
			}
			s.held = next
		}
	}

	if s.FireEvery > 0 && tick%s.FireEvery == 0 {
		events = append(events,
			invaders.KeyEvent{Code: s.keys.Fire, Down: true},
			invaders.KeyEvent{Code: s.keys.Fire, Down: false},
		)
	}
	return events
}

// Reset forgets the held key, for a new round
func (s *Script) Reset() {
	s.held = ""
}
