// Package scene sequences the screens of the game: the intro crawl, the running
// simulation and the end screen.
package scene

import "github.com/plus3/invaders/invaders"

// Scene is what a host drives every frame.
type Scene interface {
	Setup() error
	Tick(frame invaders.FrameParams)
	Teardown()
}

var (
	_ Scene = (*invaders.Simulation)(nil)
	_ Scene = (*Intro)(nil)
	_ Scene = (*EndScreen)(nil)
)

const (
	IntroText = "Welcome to Space Invaders!"
	// CrawlSpeed is roughly one pixel per frame at 60 FPS.
	CrawlSpeed = 0.06
	// TextCeiling is where the crawl stops, in pixels from the top.
	TextCeiling = 16
)

// Intro is the opening text crawl. Text starts at the vertical center of the screen
// and rises until it reaches the ceiling. Coordinates are screen pixels, origin at
// the top-left corner.
type Intro struct {
	Text    string
	PosX    float64
	PosY    float64
	Ceiling float64
	Speed   float64 // pixels per millisecond

	height float64
}

func NewIntro(height float64) *Intro {
	return &Intro{
		Text:    IntroText,
		Ceiling: TextCeiling,
		Speed:   CrawlSpeed,
		height:  height,
	}
}

func (i *Intro) Setup() error {
	i.PosY = i.height / 2
	return nil
}

func (i *Intro) Tick(frame invaders.FrameParams) {
	if i.Done() {
		return
	}
	i.PosY -= i.Speed * frame.DeltaMs
}

func (i *Intro) Teardown() {}

// Done reports whether the crawl has reached the ceiling
func (i *Intro) Done() bool {
	return i.PosY <= i.Ceiling
}

// EndScreen shows the final state until the player restarts.
type EndScreen struct {
	Final invaders.FinalState
	Shown float64 // milliseconds on screen
}

func (e *EndScreen) Setup() error {
	e.Shown = 0
	return nil
}

func (e *EndScreen) Tick(frame invaders.FrameParams) { e.Shown += frame.DeltaMs }
func (e *EndScreen) Teardown()                       {}
