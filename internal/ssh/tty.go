// Package ssh turns gliderlabs SSH sessions into tcell screens.
package ssh

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// ErrNoPTY is returned by OpenScreen for sessions that did not request a PTY.
var ErrNoPTY = errors.New("session has no pty")

// DefaultTerm is used when the client does not send TERM.
const DefaultTerm = "xterm-256color"

// termMu serialises the TERM swap around screen creation; terminfo lookup
// reads the process environment.
var termMu sync.Mutex

// OpenScreen creates and initialises a tcell screen drawing to s.
func OpenScreen(s gossh.Session) (tcell.Screen, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	tty := NewSessionTty(s, pty, winCh)

	termMu.Lock()
	prev, hadPrev := os.LookupEnv("TERM")
	_ = os.Setenv("TERM", Term(s.Environ(), pty.Term))
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	if hadPrev {
		_ = os.Setenv("TERM", prev)
	} else {
		_ = os.Unsetenv("TERM")
	}
	termMu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// Term picks the terminal type: TERM from the session environment, then the
// PTY request, then DefaultTerm.
func Term(environ []string, ptyTerm string) string {
	for _, env := range environ {
		if v, ok := strings.CutPrefix(env, "TERM="); ok && v != "" {
			return v
		}
	}
	if ptyTerm != "" {
		return ptyTerm
	}
	return DefaultTerm
}

// SessionTty implements tcell.Tty over one SSH channel.
type SessionTty struct {
	session gossh.Session
	mu      sync.Mutex
	window  gossh.Window
	winCh   <-chan gossh.Window
	onSize  func()
}

// NewSessionTty wraps s. pty carries the initial window; winCh delivers resizes.
func NewSessionTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *SessionTty {
	return &SessionTty{session: s, window: pty.Window, winCh: winCh}
}

func (t *SessionTty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *SessionTty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *SessionTty) Close() error                { return t.session.Close() }

// Start, Stop and Drain are no-ops: the channel lifetime belongs to the
// server handler.
func (t *SessionTty) Start() error { return nil }
func (t *SessionTty) Stop() error  { return nil }
func (t *SessionTty) Drain() error { return nil }

// WindowSize returns the last size reported by the client.
func (t *SessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb and starts draining window changes until the
// session closes the channel.
func (t *SessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onSize = cb
	t.mu.Unlock()

	go func() {
		for win := range t.winCh {
			t.resize(win)
		}
	}()
}

func (t *SessionTty) resize(win gossh.Window) {
	t.mu.Lock()
	t.window = win
	cb := t.onSize
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}
