package generate

import (
	"fmt"

	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/rng"
)

const (
	// minRoomSide is the smallest room edge carved into a leaf.
	minRoomSide = 3
	// roomInset is the gap kept between a room and its leaf's border.
	roomInset = 1
	// aspectPercent forces the cut across the longer axis once one side is
	// at least 125% of the other.
	aspectPercent = 125
)

// bspLeaf is a node in the partition tree. It owns either zero or two
// children; only childless nodes carry a room, only split nodes carry
// corridors.
type bspLeaf struct {
	region      gamemap.Rect
	left, right *bspLeaf
	room        *gamemap.Rect
	corridors   []gamemap.Rect
}

func newLeaf(region gamemap.Rect) *bspLeaf {
	return &bspLeaf{region: region}
}

func (l *bspLeaf) isLeaf() bool {
	return l.left == nil && l.right == nil
}

// splitAcrossHeight picks the cut axis. True stacks the children vertically
// (the height is divided), false places them side by side.
func (l *bspLeaf) splitAcrossHeight(r *rng.Twister) bool {
	w, h := l.region.Size.W, l.region.Size.H
	switch {
	case w > h && w*100/h >= aspectPercent:
		return false
	case h > w && h*100/w >= aspectPercent:
		return true
	default:
		return r.Bool()
	}
}

// split divides the leaf into two children, returning false when the leaf is
// already split or the drawn offset would leave a child under the minimum
// room bound.
func (l *bspLeaf) split(r *rng.Twister, minRoom, maxRoom gamemap.Size) bool {
	if !l.isLeaf() {
		return false
	}

	pos, size := l.region.Pos, l.region.Size
	if l.splitAcrossHeight(r) {
		at := r.Intn(minRoom.H, maxRoom.H)
		if at < minRoom.H || size.H-at < minRoom.H {
			return false
		}
		l.left = newLeaf(gamemap.NewRect(pos.X, pos.Y, size.W, at))
		l.right = newLeaf(gamemap.NewRect(pos.X, pos.Y+at, size.W, size.H-at))
		return true
	}

	at := r.Intn(minRoom.W, maxRoom.W)
	if at < minRoom.W || size.W-at < minRoom.W {
		return false
	}
	l.left = newLeaf(gamemap.NewRect(pos.X, pos.Y, at, size.H))
	l.right = newLeaf(gamemap.NewRect(pos.X+at, pos.Y, size.W-at, size.H))
	return true
}

// build splits the leaf and then each new child, depth-first, until no
// further split is accepted. Region sizes shrink on every accepted split and
// never drop under minRoom, so recursion is bounded.
func (l *bspLeaf) build(r *rng.Twister, minRoom, maxRoom gamemap.Size) {
	if l.isLeaf() && l.split(r, minRoom, maxRoom) {
		l.left.build(r, minRoom, maxRoom)
		l.right.build(r, minRoom, maxRoom)
	}
}

// createRooms fills the tree bottom-up: children first, then a room for a
// leaf or corridors between the two subtrees of a split node.
func (l *bspLeaf) createRooms(r *rng.Twister) {
	if l.left != nil {
		l.left.createRooms(r)
	}
	if l.right != nil {
		l.right.createRooms(r)
	}

	if l.isLeaf() {
		l.placeRoom(r)
		return
	}

	if l.left != nil && l.right != nil {
		a := l.left.representativeRoom(r)
		b := l.right.representativeRoom(r)
		if a != nil && b != nil {
			l.corridors = carveCorridor(r, *a, *b)
		}
	}
}

// placeRoom carves one room strictly inside the leaf region.
func (l *bspLeaf) placeRoom(r *rng.Twister) {
	size := l.region.Size
	if size.W < minRoomSide+2*roomInset || size.H < minRoomSide+2*roomInset {
		panic(fmt.Sprintf("generate: leaf %v too small to host a room", l.region))
	}

	w := r.Intn(minRoomSide, size.W-2*roomInset)
	h := r.Intn(minRoomSide, size.H-2*roomInset)
	x := r.Intn(roomInset, size.W-w-roomInset)
	y := r.Intn(roomInset, size.H-h-roomInset)

	room := gamemap.NewRect(l.region.Pos.X+x, l.region.Pos.Y+y, w, h)
	l.room = &room
}

// representativeRoom returns the room this subtree exposes to its parent.
// When both subtrees have one, the choice is drawn from r.
func (l *bspLeaf) representativeRoom(r *rng.Twister) *gamemap.Rect {
	if l.isLeaf() {
		return l.room
	}

	var lRoom, rRoom *gamemap.Rect
	if l.left != nil {
		lRoom = l.left.representativeRoom(r)
	}
	if l.right != nil {
		rRoom = l.right.representativeRoom(r)
	}
	switch {
	case lRoom != nil && rRoom != nil:
		if r.Bool() {
			return lRoom
		}
		return rRoom
	case lRoom != nil:
		return lRoom
	default:
		return rRoom
	}
}
