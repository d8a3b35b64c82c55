package gamemap

import "github.com/zyedidia/generic/mapset"

var orthogonal = [4]Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// Reachable flood-fills walkable tiles from start using 4-way steps.
// The result is empty when start is not walkable.
func (m *TileMap) Reachable(start Point) mapset.Set[Point] {
	visited := mapset.New[Point]()
	if !m.IsWalkable(start) {
		return visited
	}
	visited.Put(start)
	queue := []Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range orthogonal {
			next := cur.Add(d)
			if visited.Has(next) || !m.IsWalkable(next) {
				continue
			}
			visited.Put(next)
			queue = append(queue, next)
		}
	}
	return visited
}

// Connected reports whether every room is reachable from the first one.
func (m *TileMap) Connected() bool {
	if len(m.rooms) == 0 {
		return true
	}
	seen := m.Reachable(m.rooms[0].Center())
	for _, r := range m.rooms[1:] {
		if !seen.Has(r.Center()) {
			return false
		}
	}
	return true
}
