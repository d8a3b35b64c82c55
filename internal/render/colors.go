package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Theme holds the glyphs and colors used to draw one map.
// Emoji glyphs carry their own colors, so their color fields are ignored by
// most terminals.
type Theme struct {
	Name      string
	Floor     string
	Wall      string
	Unpainted string

	FloorColor     tcell.Color
	WallColor      tcell.Color
	UnpaintedColor tcell.Color
}

// CellWidth returns the widest glyph in the theme, in terminal columns.
func (t Theme) CellWidth() int {
	w := 1
	for _, g := range []string{t.Floor, t.Wall, t.Unpainted} {
		if gw := runewidth.StringWidth(g); gw > w {
			w = gw
		}
	}
	return w
}

// Themes lists the selectable themes. Index 0 mirrors the text form.
var Themes = []Theme{
	{
		// Digit codes, colored like the web gallery.
		Name:           "codes",
		Floor:          string(FloorCode),
		Wall:           string(WallCode),
		Unpainted:      string(UnpaintedCode),
		FloorColor:     tcell.ColorGreen,
		WallColor:      tcell.ColorOrange,
		UnpaintedColor: tcell.ColorNavy,
	},
	{
		Name:           "classic",
		Floor:          "·",
		Wall:           "#",
		Unpainted:      " ",
		FloorColor:     tcell.ColorGray,
		WallColor:      tcell.ColorSilver,
		UnpaintedColor: tcell.ColorDefault,
	},
	{
		Name:           "blocks",
		Floor:          " ",
		Wall:           "█",
		Unpainted:      "░",
		FloorColor:     tcell.ColorDefault,
		WallColor:      tcell.ColorSaddleBrown,
		UnpaintedColor: tcell.ColorDarkBlue,
	},
	{
		// Ice and frost.
		Name:      "crystal",
		Floor:     "❄️",
		Wall:      "🧊",
		Unpainted: "🌑",
	},
	{
		// Fungal growth, living walls.
		Name:      "warrens",
		Floor:     "🌿",
		Wall:      "🍄",
		Unpainted: "🌑",
	},
	{
		// Volcanic walls.
		Name:      "foundry",
		Floor:     "🟫",
		Wall:      "🌋",
		Unpainted: "🌑",
	},
}

// ThemeByName returns the named theme, or the first theme and false.
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Themes[0], false
}
