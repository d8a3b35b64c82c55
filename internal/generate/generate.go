package generate

import (
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/rng"
)

var neighbours = [8]gamemap.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Generate validates cfg and builds its map. The result depends only on cfg:
// the same config always yields the same tiles.
//
// Generate panics if the partition or carving logic breaks one of its own
// invariants; configuration problems are returned as *ConfigError.
func Generate(cfg Config) (*gamemap.TileMap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := rng.New(cfg.Seed)
	root := newLeaf(gamemap.NewRect(0, 0, cfg.Size.W, cfg.Size.H))
	root.build(r, cfg.MinRoom, cfg.MaxRoom)
	root.createRooms(r)

	b := gamemap.NewBuilder(cfg.Size, cfg.Seed, cfg.MinRoom, cfg.MaxRoom)
	for n := range root.all() {
		if n.isLeaf() && n.room != nil {
			b.AddRoom(*n.room)
		}
		for _, c := range n.corridors {
			b.AddCorridor(c)
		}
	}

	addBorder(b, cfg.Size)
	inflateWalls(b)
	seal(b, cfg.Size)
	return b.Build(), nil
}

// addBorder paints the outer ring of the map as wall.
func addBorder(b *gamemap.Builder, size gamemap.Size) {
	for x := 0; x < size.W; x++ {
		b.Set(gamemap.Point{X: x, Y: 0}, gamemap.TileWall)
		b.Set(gamemap.Point{X: x, Y: size.H - 1}, gamemap.TileWall)
	}
	for y := 0; y < size.H; y++ {
		b.Set(gamemap.Point{X: 0, Y: y}, gamemap.TileWall)
		b.Set(gamemap.Point{X: size.W - 1, Y: y}, gamemap.TileWall)
	}
}

// inflateWalls makes one pass over the painted tiles and walls off every
// unpainted neighbour. Walls added by the pass are not themselves inflated,
// and neighbours outside the map are skipped.
func inflateWalls(b *gamemap.Builder) {
	var walls []gamemap.Point
	for _, p := range b.Painted() {
		for _, d := range neighbours {
			n := p.Add(d)
			if b.InBounds(n) && !b.Has(n) {
				walls = append(walls, n)
			}
		}
	}
	for _, p := range walls {
		b.Set(p, gamemap.TileWall)
	}
}

// seal walls off anything the inflation pass could not reach, such as the
// interior of a large gap between a room and its leaf border.
func seal(b *gamemap.Builder, size gamemap.Size) {
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			p := gamemap.Point{X: x, Y: y}
			if !b.Has(p) {
				b.Set(p, gamemap.TileWall)
			}
		}
	}
}
