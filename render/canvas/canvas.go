// Package canvas renders the game into an ebiten image. World coordinates have
// their origin at the center of the screen; the canvas shifts them by half the
// screen size.
package canvas

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"github.com/plus3/invaders/scene"
	"go.uber.org/zap"
)

const (
	// model units per unit of Mesh.Scale
	modelSize = 50
	// ebitenutil debug font cell
	glyphWidth  = 6
	glyphHeight = 16
)

var (
	background   = color.RGBA{0, 0, 0, 0xff}
	outlineColor = color.RGBA{0xff, 0xff, 0xff, 0xa0}
	modelColors  = map[string]string{
		invaders.ModelDrone:      invaders.DroneColor,
		invaders.ModelPlayer:     invaders.PlayerColor,
		invaders.ModelProjectile: invaders.ProjectileColor,
	}
)

// Canvas draws whatever scene the machine is showing. Attach it to every new
// simulation so mesh sprites are released with their entities.
type Canvas struct {
	// Outlines draws every AABB on top of the game.
	Outlines bool

	keys    config.KeysConfig
	logger  *zap.Logger
	sprites *spriteCache[*ebiten.Image]
	colors  map[string]color.RGBA

	world *ecs.World
	items *invaders.DrawList
}

func New(cfg *config.Config, logger *zap.Logger) *Canvas {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Canvas{
		Outlines: cfg.Debug.Outlines,
		keys:     cfg.Keys,
		logger:   logger,
		colors:   make(map[string]color.RGBA),
	}
	c.sprites = newSpriteCache(c.newSprite, (*ebiten.Image).Deallocate)
	return c
}

// Attach starts drawing sim's world. Sprites left over from an earlier world are
// released.
func (c *Canvas) Attach(sim *invaders.Simulation) {
	c.sprites.Clear()
	w := sim.World()
	c.world = w
	c.items = invaders.NewDrawList(w)
	w.OnDestroy(func(e ecs.Entity) {
		if mesh, ok := ecs.Get[invaders.Mesh](w, e); ok {
			c.sprites.Release(mesh.Handle)
		}
	})
}

// Draw renders the machine's current screen.
func (c *Canvas) Draw(screen *ebiten.Image, m *scene.Machine) {
	screen.Fill(background)

	switch m.Phase() {
	case scene.PhaseIntro:
		if intro := m.Intro(); intro != nil {
			c.drawIntro(screen, intro)
		}
	case scene.PhasePlaying:
		if game := m.Game(); game != nil {
			c.drawGame(screen, game)
		}
	case scene.PhaseEnded:
		if end := m.EndScreen(); end != nil {
			c.drawEnd(screen, end)
		}
	}
}

func (c *Canvas) drawIntro(screen *ebiten.Image, intro *scene.Intro) {
	width := screen.Bounds().Dx()
	x := (width - len(intro.Text)*glyphWidth) / 2
	ebitenutil.DebugPrintAt(screen, intro.Text, x, int(intro.PosY))
	if intro.Done() {
		hint := fmt.Sprintf("press %s to start", c.keys.Start)
		ebitenutil.DebugPrintAt(screen, hint, (width-len(hint)*glyphWidth)/2, int(intro.PosY)+2*glyphHeight)
	}
}

func (c *Canvas) drawEnd(screen *ebiten.Image, end *scene.EndScreen) {
	lines := []string{
		"GAME OVER: " + end.Final.Reason,
		fmt.Sprintf("kills: %d  enemies left: %d", end.Final.Kills, end.Final.EnemiesLeft),
		fmt.Sprintf("%d ticks, %.1fs", end.Final.Ticks, end.Final.ElapsedMs/1000),
		fmt.Sprintf("press %s to restart", c.keys.Restart),
	}
	width, height := screen.Bounds().Dx(), screen.Bounds().Dy()
	y := height/2 - len(lines)*glyphHeight/2
	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, (width-len(line)*glyphWidth)/2, y)
		y += glyphHeight
	}
}

func (c *Canvas) drawGame(screen *ebiten.Image, game *invaders.Simulation) {
	if game.World() != c.world {
		c.Attach(game)
	}

	originX := float32(screen.Bounds().Dx()) / 2
	originY := float32(screen.Bounds().Dy()) / 2

	for item := range c.items.Items() {
		x := float32(item.Position.PosX) + originX
		y := float32(item.Position.PosY) + originY

		switch {
		case item.Mesh != nil:
			sprite := c.sprites.Get(item)
			half := float64(sprite.Bounds().Dx()) / 2
			opts := &ebiten.DrawImageOptions{}
			opts.GeoM.Translate(float64(x)-half, float64(y)-half)
			screen.DrawImage(sprite, opts)
		case item.Square != nil:
			size := float32(item.Square.Size)
			vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, c.color(item.Square.FillColor), false)
		}

		if c.Outlines && item.Box != nil {
			vector.StrokeRect(screen,
				float32(item.Box.X)+originX, float32(item.Box.Y)+originY,
				float32(item.Box.Width), float32(item.Box.Height),
				1, outlineColor, false)
		}
	}

	status := fmt.Sprintf("kills: %d", game.Kills())
	if game.Paused() {
		status += "  PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, status, 4, 4)
}

func (c *Canvas) newSprite(d invaders.Drawable) *ebiten.Image {
	img := ebiten.NewImage(spriteSize(d), spriteSize(d))
	img.Fill(c.color(modelColors[d.Mesh.Model]))
	size := img.Bounds().Dx()
	vector.StrokeRect(img, 0, 0, float32(size), float32(size), 2, outlineColor, false)
	return img
}

// spriteSize is the square's size when the entity has one, else the model's
// extent at the mesh scale.
func spriteSize(d invaders.Drawable) int {
	size := modelSize * d.Mesh.Scale
	if d.Square != nil {
		size = d.Square.Size
	}
	return max(int(math.Round(size)), 1)
}

// color resolves a hex color once. Unparseable colors are logged and drawn white.
func (c *Canvas) color(hex string) color.RGBA {
	if clr, ok := c.colors[hex]; ok {
		return clr
	}
	clr, err := ParseHexColor(hex)
	if err != nil {
		c.logger.Warn("bad fill color", zap.Error(err))
		clr = color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	c.colors[hex] = clr
	return clr
}

// Sprites is the number of live mesh sprites
func (c *Canvas) Sprites() int {
	return c.sprites.Len()
}
