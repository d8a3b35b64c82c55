package gallery

import "github.com/gdamore/tcell/v2"

// Action is a viewer command decoded from a key press.
type Action uint8

const (
	ActionNone Action = iota
	ActionGenerate
	ActionPrev
	ActionNext
	ActionFirst
	ActionLast
	ActionPanN
	ActionPanS
	ActionPanE
	ActionPanW
	ActionRecenter
	ActionTheme
	ActionClear
	ActionHelp
	ActionQuit
)

// keyToAction maps a tcell key event to a viewer action.
func keyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionPanN
	case tcell.KeyDown:
		return ActionPanS
	case tcell.KeyRight:
		return ActionNext
	case tcell.KeyLeft:
		return ActionPrev
	case tcell.KeyHome:
		return ActionFirst
	case tcell.KeyEnd:
		return ActionLast
	case tcell.KeyEnter:
		return ActionGenerate
	case tcell.KeyEscape:
		return ActionQuit
	}
	switch ev.Rune() {
	case 'g', 'G', ' ':
		return ActionGenerate
	case 'k', 'K':
		return ActionPanN
	case 'j', 'J':
		return ActionPanS
	case 'l', 'L':
		return ActionPanE
	case 'h', 'H':
		return ActionPanW
	case '[', ',', '<':
		return ActionPrev
	case ']', '.', '>':
		return ActionNext
	case '0':
		return ActionRecenter
	case 't', 'T':
		return ActionTheme
	case 'c', 'C':
		return ActionClear
	case '?':
		return ActionHelp
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}
