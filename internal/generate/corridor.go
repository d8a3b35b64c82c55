package generate

import (
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/rng"
)

// carveCorridor connects rooms a and b with one or two 1-tile-wide segments.
//
// One interior point is drawn per room, inset from every edge so the
// corridor never runs along a room's outer ring. The segments start just
// past the first point and end on the second, so they span exactly |dx| and
// |dy| tiles. Coinciding points yield no segment.
func carveCorridor(r *rng.Twister, a, b gamemap.Rect) []gamemap.Rect {
	p1 := interiorPoint(r, a)
	p2 := interiorPoint(r, b)
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y

	switch {
	case dx == 0 && dy == 0:
		return nil
	case dx == 0:
		if dy > 0 {
			return []gamemap.Rect{vertical(p1.X, p1.Y+1, p2.Y)}
		}
		return []gamemap.Rect{vertical(p1.X, p2.Y, p1.Y-1)}
	case dy == 0:
		if dx > 0 {
			return []gamemap.Rect{horizontal(p1.Y, p1.X+1, p2.X)}
		}
		return []gamemap.Rect{horizontal(p1.Y, p2.X, p1.X-1)}
	}

	// Bend at (p1.X, p2.Y): leave p1 vertically, arrive at p2 horizontally.
	if r.Bool() {
		switch {
		case dx > 0 && dy > 0:
			return []gamemap.Rect{
				vertical(p1.X, p1.Y+1, p2.Y),
				horizontal(p2.Y, p1.X+1, p2.X),
			}
		case dx > 0 && dy < 0:
			return []gamemap.Rect{
				vertical(p1.X, p2.Y, p1.Y-1),
				horizontal(p2.Y, p1.X+1, p2.X),
			}
		case dx < 0 && dy > 0:
			return []gamemap.Rect{
				vertical(p1.X, p1.Y+1, p2.Y),
				horizontal(p2.Y, p2.X, p1.X-1),
			}
		default:
			return []gamemap.Rect{
				vertical(p1.X, p2.Y, p1.Y-1),
				horizontal(p2.Y, p2.X, p1.X-1),
			}
		}
	}

	// Bend at (p2.X, p1.Y): leave p1 horizontally, arrive at p2 vertically.
	switch {
	case dx > 0 && dy > 0:
		return []gamemap.Rect{
			horizontal(p1.Y, p1.X+1, p2.X),
			vertical(p2.X, p1.Y+1, p2.Y),
		}
	case dx > 0 && dy < 0:
		return []gamemap.Rect{
			horizontal(p1.Y, p1.X+1, p2.X),
			vertical(p2.X, p2.Y, p1.Y-1),
		}
	case dx < 0 && dy > 0:
		return []gamemap.Rect{
			horizontal(p1.Y, p2.X, p1.X-1),
			vertical(p2.X, p1.Y+1, p2.Y),
		}
	default:
		return []gamemap.Rect{
			horizontal(p1.Y, p2.X, p1.X-1),
			vertical(p2.X, p2.Y, p1.Y-1),
		}
	}
}

// interiorPoint draws a point at least one tile away from every edge of room.
func interiorPoint(r *rng.Twister, room gamemap.Rect) gamemap.Point {
	x := r.Intn(room.Pos.X+1, room.Right()-2)
	y := r.Intn(room.Pos.Y+1, room.Bottom()-2)
	return gamemap.Point{X: x, Y: y}
}

// horizontal returns the 1-tall segment covering x0..x1 inclusive on row y.
func horizontal(y, x0, x1 int) gamemap.Rect {
	return gamemap.NewRect(x0, y, x1-x0+1, 1)
}

// vertical returns the 1-wide segment covering y0..y1 inclusive on column x.
func vertical(x, y0, y1 int) gamemap.Rect {
	return gamemap.NewRect(x, y0, 1, y1-y0+1)
}
