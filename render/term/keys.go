package term

import (
	"fmt"
	"slices"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/invaders/invaders"
)

// ReleaseAfter is how long a key counts as held after its last press or
// auto-repeat. Terminal auto-repeat usually fires every 30 to 50 ms after an
// initial delay of up to 500 ms.
const ReleaseAfter = 550 * time.Millisecond

var namedKeys = map[tcell.Key]string{
	tcell.KeyLeft:  "ArrowLeft",
	tcell.KeyRight: "ArrowRight",
	tcell.KeyUp:    "ArrowUp",
	tcell.KeyDown:  "ArrowDown",
	tcell.KeyEnter: "Enter",
}

// KeyCode translates a terminal key into the code a browser would report for
// it, so the same key bindings work for every host.
func KeyCode(ev *tcell.EventKey) (string, bool) {
	if name, ok := namedKeys[ev.Key()]; ok {
		return name, true
	}
	if ev.Key() != tcell.KeyRune {
		return "", false
	}

	r := ev.Rune()
	switch {
	case r == '\\':
		return "Backslash", true
	case r == ' ':
		return "Space", true
	case r >= '0' && r <= '9':
		return fmt.Sprintf("Digit%c", r), true
	case unicode.IsLetter(r) && r < unicode.MaxASCII:
		return fmt.Sprintf("Key%c", unicode.ToUpper(r)), true
	}
	return "", false
}

// Releaser turns a stream of terminal key presses into press and release
// events. Terminals report no key-up, so a key is released once it has not
// repeated for the timeout. A terminal only auto-repeats the most recent key,
// so pressing a new key releases every other held key first. Tap keys are
// pressed and released at once and never count as held.
type Releaser struct {
	timeout time.Duration
	taps    map[string]bool
	held    map[string]time.Time
}

func NewReleaser(timeout time.Duration, taps ...string) *Releaser {
	r := &Releaser{
		timeout: timeout,
		taps:    make(map[string]bool, len(taps)),
		held:    make(map[string]time.Time),
	}
	for _, code := range taps {
		r.taps[code] = true
	}
	return r
}

// Press records a press at now. A tap key yields a key-down and key-up pair.
// Any other key yields nothing when it repeats, and otherwise the key-ups of
// the keys it replaces followed by its own key-down.
func (r *Releaser) Press(code string, now time.Time) []invaders.KeyEvent {
	if r.taps[code] {
		return []invaders.KeyEvent{{Code: code, Down: true}, {Code: code, Down: false}}
	}
	if _, held := r.held[code]; held {
		r.held[code] = now
		return nil
	}

	events := r.release(func(string, time.Time) bool { return true })
	r.held[code] = now
	return append(events, invaders.KeyEvent{Code: code, Down: true})
}

// Expire returns key-up events for every key whose last press is older than
// the timeout, in code order.
func (r *Releaser) Expire(now time.Time) []invaders.KeyEvent {
	return r.release(func(_ string, last time.Time) bool {
		return now.Sub(last) >= r.timeout
	})
}

func (r *Releaser) release(match func(code string, last time.Time) bool) []invaders.KeyEvent {
	var released []string
	for code, last := range r.held {
		if match(code, last) {
			released = append(released, code)
		}
	}
	slices.Sort(released)

	events := make([]invaders.KeyEvent, 0, len(released))
	for _, code := range released {
		delete(r.held, code)
		events = append(events, invaders.KeyEvent{Code: code, Down: false})
	}
	return events
}

// Held reports whether code is currently considered down
func (r *Releaser) Held(code string) bool {
	_, ok := r.held[code]
	return ok
}
