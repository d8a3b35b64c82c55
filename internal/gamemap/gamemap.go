package gamemap

import "maps"

// TileMap is a generated map: a sparse coordinate→tile mapping plus the
// parameters that produced it. A TileMap is read-only once built and may be
// shared between goroutines.
type TileMap struct {
	size      Size
	seed      uint32
	minRoom   Size
	maxRoom   Size
	tiles     map[Point]Tile
	rooms     []Rect
	corridors []Rect
}

// Builder accumulates tiles for a TileMap. It is single-use: Build hands the
// tiles over to the map and the builder must not be used afterwards.
type Builder struct {
	m *TileMap
}

// NewBuilder starts a map of the given size and generation parameters.
func NewBuilder(size Size, seed uint32, minRoom, maxRoom Size) *Builder {
	return &Builder{m: &TileMap{
		size:    size,
		seed:    seed,
		minRoom: minRoom,
		maxRoom: maxRoom,
		tiles:   make(map[Point]Tile, size.W*size.H),
	}}
}

// InBounds reports whether p is within the map being built.
func (b *Builder) InBounds(p Point) bool {
	return inBounds(b.m.size, p)
}

// Set paints p, overwriting any earlier tile. Out-of-bounds points are dropped.
func (b *Builder) Set(p Point, t Tile) {
	if !b.InBounds(p) {
		return
	}
	b.m.tiles[p] = t
}

// Has reports whether p is already painted.
func (b *Builder) Has(p Point) bool {
	_, ok := b.m.tiles[p]
	return ok
}

// Fill paints every cell of r with t.
func (b *Builder) Fill(r Rect, t Tile) {
	r.Points(func(p Point) { b.Set(p, t) })
}

// AddRoom records a room rectangle and paints it as floor.
func (b *Builder) AddRoom(r Rect) {
	b.Fill(r, TileFloor)
	b.m.rooms = append(b.m.rooms, r)
}

// AddCorridor records a corridor segment and paints it as floor.
func (b *Builder) AddCorridor(r Rect) {
	b.Fill(r, TileFloor)
	b.m.corridors = append(b.m.corridors, r)
}

// Painted returns a snapshot of the currently painted coordinates.
func (b *Builder) Painted() []Point {
	pts := make([]Point, 0, len(b.m.tiles))
	for p := range b.m.tiles {
		pts = append(pts, p)
	}
	return pts
}

// Build returns the finished map.
func (b *Builder) Build() *TileMap {
	m := b.m
	b.m = nil
	return m
}

// Size returns the map extent.
func (m *TileMap) Size() Size { return m.size }

// Seed returns the seed the map was generated from.
func (m *TileMap) Seed() uint32 { return m.seed }

// MinRoom returns the minimum room bound used for generation.
func (m *TileMap) MinRoom() Size { return m.minRoom }

// MaxRoom returns the maximum room bound used for generation.
func (m *TileMap) MaxRoom() Size { return m.maxRoom }

// Len returns the number of painted coordinates.
func (m *TileMap) Len() int { return len(m.tiles) }

// InBounds reports whether p is within the map.
func (m *TileMap) InBounds(p Point) bool { return inBounds(m.size, p) }

// At returns the tile at p and whether p is painted.
func (m *TileMap) At(p Point) (Tile, bool) {
	t, ok := m.tiles[p]
	return t, ok
}

// IsWalkable returns true when p is painted floor.
func (m *TileMap) IsWalkable(p Point) bool {
	t, ok := m.tiles[p]
	return ok && t.Walkable()
}

// Tiles returns a copy of the coordinate→tile mapping.
func (m *TileMap) Tiles() map[Point]Tile {
	return maps.Clone(m.tiles)
}

// Rooms returns the room rectangles in the order they were collected.
func (m *TileMap) Rooms() []Rect {
	return append([]Rect(nil), m.rooms...)
}

// Corridors returns the corridor segments in the order they were collected.
func (m *TileMap) Corridors() []Rect {
	return append([]Rect(nil), m.corridors...)
}

func inBounds(s Size, p Point) bool {
	return p.X >= 0 && p.X < s.W && p.Y >= 0 && p.Y < s.H
}
