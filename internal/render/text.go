package render

import (
	"errors"
	"fmt"
	"strings"

	"bsp-mapgen/internal/gamemap"
)

// Single-character codes used by the text form of a map.
const (
	FloorCode     = '0'
	WallCode      = '1'
	UnpaintedCode = 'x'
)

// ErrMalformed is returned by Parse for text that is not a rectangular grid.
var ErrMalformed = errors.New("malformed map text")

// Text renders m as one line per row, top to bottom, each line terminated by
// a newline.
func Text(m *gamemap.TileMap) string {
	size := m.Size()
	var sb strings.Builder
	sb.Grow((size.W + 1) * size.H)
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			sb.WriteByte(code(m, gamemap.Point{X: x, Y: y}))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func code(m *gamemap.TileMap, p gamemap.Point) byte {
	t, ok := m.At(p)
	if !ok {
		return UnpaintedCode
	}
	if t == gamemap.TileFloor {
		return FloorCode
	}
	return WallCode
}

// Parse rebuilds a map from its text form. Cells other than the floor and
// wall codes are left unpainted. Room bounds and rooms are not recoverable
// from text and are left empty.
func Parse(text string, seed uint32) (*gamemap.TileMap, error) {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("%w: empty grid", ErrMalformed)
	}
	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformed, i, len(line), width)
		}
	}

	b := gamemap.NewBuilder(gamemap.Size{W: width, H: len(lines)}, seed, gamemap.Size{}, gamemap.Size{})
	for y, line := range lines {
		for x := 0; x < len(line); x++ {
			p := gamemap.Point{X: x, Y: y}
			switch line[x] {
			case FloorCode:
				b.Set(p, gamemap.TileFloor)
			case WallCode:
				b.Set(p, gamemap.TileWall)
			}
		}
	}
	return b.Build(), nil
}
