// Package term renders the game onto a terminal through tcell. Every cell stands
// for CellWidth x CellHeight world pixels, so the simulation keeps its pixel
// based tuning on a character grid.
package term

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
	"github.com/plus3/invaders/invaders"
	"github.com/plus3/invaders/scene"
)

const (
	CellWidth  = 8
	CellHeight = 16
)

var glyphs = map[string]rune{
	invaders.DroneColor:      'W',
	invaders.PlayerColor:     'A',
	invaders.ProjectileColor: '|',
}

// Term draws the machine's current screen onto a tcell screen.
type Term struct {
	screen tcell.Screen
	keys   config.KeysConfig

	world *ecs.World
	items *invaders.DrawList
}

func New(screen tcell.Screen, cfg *config.Config) *Term {
	return &Term{screen: screen, keys: cfg.Keys}
}

// Viewport returns the world size the terminal covers, in pixels.
func (t *Term) Viewport() (width, height float64) {
	cols, rows := t.screen.Size()
	return float64(cols * CellWidth), float64(rows * CellHeight)
}

// Cell maps a world position onto a terminal cell. ok is false outside the screen.
func (t *Term) Cell(pos invaders.Position) (col, row int, ok bool) {
	cols, rows := t.screen.Size()
	width, height := t.Viewport()
	col = int(math.Floor((pos.PosX + width/2) / CellWidth))
	row = int(math.Floor((pos.PosY + height/2) / CellHeight))
	return col, row, col >= 0 && col < cols && row >= 0 && row < rows
}

func (t *Term) Draw(m *scene.Machine) {
	t.screen.Clear()

	switch m.Phase() {
	case scene.PhaseIntro:
		if intro := m.Intro(); intro != nil {
			t.drawIntro(intro)
		}
	case scene.PhasePlaying:
		if game := m.Game(); game != nil {
			t.drawGame(game)
		}
	case scene.PhaseEnded:
		if end := m.EndScreen(); end != nil {
			t.drawEnd(end)
		}
	}

	t.screen.Show()
}

func (t *Term) drawIntro(intro *scene.Intro) {
	row := int(intro.PosY) / CellHeight
	t.centered(row, intro.Text, tcell.StyleDefault.Bold(true))
	if intro.Done() {
		t.centered(row+2, fmt.Sprintf("press %s to start", t.keys.Start), tcell.StyleDefault)
	}
}

func (t *Term) drawEnd(end *scene.EndScreen) {
	_, rows := t.screen.Size()
	lines := []string{
		"GAME OVER: " + end.Final.Reason,
		fmt.Sprintf("kills: %d  enemies left: %d", end.Final.Kills, end.Final.EnemiesLeft),
		fmt.Sprintf("press %s to restart", t.keys.Restart),
	}
	row := rows/2 - len(lines)/2
	for i, line := range lines {
		t.centered(row+i, line, tcell.StyleDefault)
	}
}

func (t *Term) drawGame(game *invaders.Simulation) {
	if game.World() != t.world {
		t.world = game.World()
		t.items = invaders.NewDrawList(t.world)
	}

	for item := range t.items.Items() {
		col, row, ok := t.Cell(item.Position)
		if !ok {
			continue
		}
		glyph, style := '#', tcell.StyleDefault
		if item.Square != nil {
			if g, ok := glyphs[item.Square.FillColor]; ok {
				glyph = g
			}
			style = style.Foreground(tcell.GetColor(item.Square.FillColor))
		}
		t.screen.SetContent(col, row, glyph, nil, style)
	}

	status := fmt.Sprintf("kills: %d", game.Kills())
	if game.Paused() {
		status += "  PAUSED"
	}
	t.text(0, 0, status, tcell.StyleDefault.Reverse(true))
}

func (t *Term) centered(row int, s string, style tcell.Style) {
	cols, _ := t.screen.Size()
	t.text((cols-len(s))/2, row, s, style)
}

func (t *Term) text(col, row int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		t.screen.SetContent(col+i, row, r, nil, style)
	}
}
