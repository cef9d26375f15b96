package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/invaders/ecs/debugui"
	debugui_ebiten "github.com/plus3/invaders/ecs/debugui/ebiten"
	"github.com/plus3/invaders/invaders"
	"github.com/plus3/invaders/render/canvas"
	"github.com/plus3/invaders/scene"
	"go.uber.org/zap"
)

// Game implements ebiten.Game on top of the scene machine.
type Game struct {
	machine *scene.Machine
	canvas  *canvas.Canvas
	logger  *zap.Logger

	// set when the debug overlay is enabled
	overlay *debugui.Overlay
	backend *debugui_ebiten.ImguiBackend
	timer   *debugui.FrameTimer

	pressed  []ebiten.Key
	released []ebiten.Key

	width, height int
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.backend != nil {
		g.backend.BeginFrame()
		defer g.backend.EndFrame()
	}

	if g.overlay == nil || !g.overlay.WantsKeyboard() {
		g.forwardKeys()
	}

	g.machine.Tick(invaders.FrameParams{
		DeltaMs: 1000 / float64(ebiten.TPS()),
		Width:   float64(g.width),
		Height:  float64(g.height),
	})

	if g.overlay != nil {
		if game := g.machine.Game(); game != nil {
			g.overlay.Render(game.World(), game.Scheduler(), g.timer.DeltaTime())
		}
	}
	return nil
}

func (g *Game) forwardKeys() {
	g.pressed = inpututil.AppendJustPressedKeys(g.pressed[:0])
	g.released = inpututil.AppendJustReleasedKeys(g.released[:0])

	for _, k := range g.released {
		g.handle(invaders.KeyEvent{Code: keyCode(k), Down: false})
	}
	for _, k := range g.pressed {
		g.handle(invaders.KeyEvent{Code: keyCode(k), Down: true})
	}
}

func (g *Game) handle(ev invaders.KeyEvent) {
	if err := g.machine.HandleKey(ev); err != nil {
		g.logger.Warn("key", zap.String("code", ev.Code), zap.Error(err))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.Draw(screen, g.machine)
	if g.backend != nil {
		g.backend.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	if g.backend != nil {
		g.backend.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
