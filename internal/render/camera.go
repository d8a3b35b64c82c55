package render

import "bsp-mapgen/internal/gamemap"

// Camera translates between map coordinates and screen coordinates.
// Each map tile occupies CellWidth terminal columns.
type Camera struct {
	OffsetX    int
	OffsetY    int
	ViewWidth  int // in terminal columns
	ViewHeight int // in terminal rows
	CellWidth  int
}

// NewCamera creates a camera centered on c.
func NewCamera(c gamemap.Point, viewW, viewH, cellWidth int) *Camera {
	if cellWidth < 1 {
		cellWidth = 1
	}
	cam := &Camera{ViewWidth: viewW, ViewHeight: viewH, CellWidth: cellWidth}
	cam.Center(c)
	return cam
}

// Center repositions the camera so that c is in the middle of the view.
func (c *Camera) Center(p gamemap.Point) {
	c.OffsetX = p.X - (c.ViewWidth/c.CellWidth)/2
	c.OffsetY = p.Y - c.ViewHeight/2
}

// Pan moves the view by (dx, dy) tiles.
func (c *Camera) Pan(dx, dy int) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// Focus returns the map coordinate at the center of the view.
func (c *Camera) Focus() gamemap.Point {
	return gamemap.Point{
		X: c.OffsetX + (c.ViewWidth/c.CellWidth)/2,
		Y: c.OffsetY + c.ViewHeight/2,
	}
}

// WorldToScreen converts map coordinates to screen coordinates.
// visible is false when the result falls outside the viewport.
func (c *Camera) WorldToScreen(p gamemap.Point) (sx, sy int, visible bool) {
	sx = (p.X - c.OffsetX) * c.CellWidth
	sy = p.Y - c.OffsetY
	visible = sx >= 0 && sx+c.CellWidth <= c.ViewWidth && sy >= 0 && sy < c.ViewHeight
	return
}

// ScreenToWorld converts screen coordinates to map coordinates.
func (c *Camera) ScreenToWorld(sx, sy int) gamemap.Point {
	return gamemap.Point{X: sx/c.CellWidth + c.OffsetX, Y: sy + c.OffsetY}
}
