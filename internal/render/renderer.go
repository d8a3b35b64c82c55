package render

import (
	"bsp-mapgen/internal/gamemap"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// StatusRows is the number of screen rows reserved under the map.
const StatusRows = 3

// Renderer draws tile maps onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
	theme  Theme
}

// NewRenderer creates a Renderer for the given screen and theme.
func NewRenderer(screen tcell.Screen, theme Theme) *Renderer {
	r := &Renderer{screen: screen, theme: theme}
	r.Resize()
	return r
}

// Resize rebuilds the camera after a terminal size change, keeping its focus.
func (r *Renderer) Resize() {
	focus := gamemap.Point{}
	if r.camera != nil {
		focus = r.camera.Focus()
	}
	w, h := r.screen.Size()
	viewH := h - StatusRows
	if viewH < 1 {
		viewH = 1
	}
	r.camera = NewCamera(focus, w, viewH, r.theme.CellWidth())
}

// Theme returns the active theme.
func (r *Renderer) Theme() Theme { return r.theme }

// SetTheme switches glyphs, keeping the camera focus.
func (r *Renderer) SetTheme(t Theme) {
	r.theme = t
	r.Resize()
}

// Camera exposes the current camera.
func (r *Renderer) Camera() *Camera { return r.camera }

// CenterOn recenters the camera on p.
func (r *Renderer) CenterOn(p gamemap.Point) { r.camera.Center(p) }

// Pan moves the camera by (dx, dy) tiles.
func (r *Renderer) Pan(dx, dy int) { r.camera.Pan(dx, dy) }

// DrawMap clears the screen and draws every visible cell of m.
func (r *Renderer) DrawMap(m *gamemap.TileMap) {
	r.screen.Clear()
	if m == nil {
		return
	}
	size := m.Size()
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			p := gamemap.Point{X: x, Y: y}
			sx, sy, onScreen := r.camera.WorldToScreen(p)
			if !onScreen {
				continue
			}
			glyph, color := r.theme.Unpainted, r.theme.UnpaintedColor
			if t, ok := m.At(p); ok {
				switch t {
				case gamemap.TileFloor:
					glyph, color = r.theme.Floor, r.theme.FloorColor
				case gamemap.TileWall:
					glyph, color = r.theme.Wall, r.theme.WallColor
				}
			}
			r.putGlyph(sx, sy, glyph, base.Foreground(color))
		}
	}
}

// DrawStatus renders a separator and up to StatusRows-1 lines of text under
// the map, then shows the frame.
func (r *Renderer) DrawStatus(lines ...string) {
	_, screenH := r.screen.Size()
	top := screenH - StatusRows
	r.drawHLine(top, tcell.ColorGray)
	for i, line := range lines {
		if i >= StatusRows-1 {
			break
		}
		r.drawText(0, top+1+i, line, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}
	r.screen.Show()
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	mainc := runes[0]
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, mainc, combc, style)
	// Pad narrow glyphs so every cell spans the same columns.
	for col := runewidth.StringWidth(glyph); col < r.camera.CellWidth; col++ {
		r.screen.SetContent(x+col, y, ' ', nil, style)
	}
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += runewidth.RuneWidth(ch)
	}
}
