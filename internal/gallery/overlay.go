package gallery

import "github.com/gdamore/tcell/v2"

var helpLines = []string{
	"── Maps ──────────────────────────────",
	"  g / Space / Enter   Generate",
	"  ← / →  [ ]          Previous / next",
	"  Home / End          First / newest",
	"  c                   Clear archive",
	"",
	"── View ──────────────────────────────",
	"  hjkl / ↑ ↓          Pan",
	"  0                   Recenter",
	"  t                   Cycle theme",
	"",
	"  q / Esc             Quit",
	"",
	"  [any key to close]",
}

// drawBox draws a bordered box centred on the screen with a title in the top
// border and lines of body text.
func drawBox(screen tcell.Screen, title string, width int, lines []string) {
	hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	bodyStyle := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	screen.Clear()
	sw, sh := screen.Size()
	boxH := len(lines) + 2
	x0 := max(0, (sw-width)/2)
	y0 := max(0, (sh-boxH)/2)

	for col := x0; col < x0+width; col++ {
		screen.SetContent(col, y0, '─', nil, borderStyle)
		screen.SetContent(col, y0+boxH-1, '─', nil, borderStyle)
	}
	for row := y0; row < y0+boxH; row++ {
		screen.SetContent(x0, row, '│', nil, borderStyle)
		screen.SetContent(x0+width-1, row, '│', nil, borderStyle)
	}
	screen.SetContent(x0, y0, '┌', nil, borderStyle)
	screen.SetContent(x0+width-1, y0, '┐', nil, borderStyle)
	screen.SetContent(x0, y0+boxH-1, '└', nil, borderStyle)
	screen.SetContent(x0+width-1, y0+boxH-1, '┘', nil, borderStyle)

	hx := x0 + (width-len([]rune(title)))/2
	for i, r := range []rune(title) {
		screen.SetContent(hx+i, y0, r, nil, hdrStyle)
	}
	for i, line := range lines {
		x := x0 + 2
		for _, r := range line {
			screen.SetContent(x, y0+1+i, r, nil, bodyStyle)
			x++
		}
	}
	screen.Show()
}

// showHelp shows the key reference until any key is pressed. It returns
// false if the screen closed while it was open.
func (v *Viewer) showHelp(eventCh <-chan tcell.Event) bool {
	for {
		drawBox(v.screen, " Controls ", 42, helpLines)
		ev, ok := <-eventCh
		if !ok {
			return false
		}
		switch ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.renderer.Resize()
		case *tcell.EventKey:
			return true
		}
	}
}

// confirm shows a yes/no prompt. Anything but y counts as no.
func (v *Viewer) confirm(eventCh <-chan tcell.Event, prompt string) bool {
	for {
		drawBox(v.screen, "", len([]rune(prompt))+4, []string{prompt})
		ev, ok := <-eventCh
		if !ok {
			return false
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.renderer.Resize()
		case *tcell.EventKey:
			return ev.Rune() == 'y' || ev.Rune() == 'Y'
		}
	}
}
