package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/invaders/invaders"
	"github.com/plus3/invaders/render/term"
	"github.com/plus3/invaders/scene"
	"go.uber.org/zap"
)

// Host drives the scene machine from a tcell screen: terminal events become key
// events and a ticker paces the frames.
type Host struct {
	screen   tcell.Screen
	term     *term.Term
	machine  *scene.Machine
	releaser *term.Releaser
	logger   *zap.Logger
}

// Run blocks until Escape or Ctrl-C.
func (h *Host) Run() error {
	if err := h.machine.Start(); err != nil {
		return err
	}
	defer h.machine.Stop()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			if !h.handleEvent(ev, time.Now()) {
				return nil
			}

		case now := <-ticker.C:
			h.frame(now, now.Sub(last))
			last = now
		}
	}
}

// handleEvent reports false when the user asked to quit.
func (h *Host) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		code, ok := term.KeyCode(ev)
		if !ok {
			return true
		}
		for _, kev := range h.releaser.Press(code, now) {
			h.publish(kev)
		}

	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

func (h *Host) frame(now time.Time, elapsed time.Duration) {
	for _, kev := range h.releaser.Expire(now) {
		h.publish(kev)
	}

	width, height := h.term.Viewport()
	h.machine.Tick(invaders.FrameParams{
		DeltaMs: float64(elapsed) / float64(time.Millisecond),
		Width:   width,
		Height:  height,
	})
	h.term.Draw(h.machine)
}

func (h *Host) publish(ev invaders.KeyEvent) {
	if err := h.machine.HandleKey(ev); err != nil {
		h.logger.Warn("key", zap.String("code", ev.Code), zap.Error(err))
	}
}
