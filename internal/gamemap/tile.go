package gamemap

// Tile is the kind of a painted map cell.
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
)

// String returns a readable tile name.
func (t Tile) String() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	}
	return "unknown"
}

// Walkable reports whether the tile can be stood on.
func (t Tile) Walkable() bool {
	return t == TileFloor
}
