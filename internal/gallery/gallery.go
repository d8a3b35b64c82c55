// Package gallery is the interactive terminal browser over archived maps.
// Each viewer owns one tcell screen; several viewers can share one atlas
// service, and every viewer sees maps generated by the others.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gdamore/tcell/v2"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/render"
)

// PanStep is the number of tiles moved by one pan key press.
const PanStep = 4

// Viewer holds the browsing state for one screen.
type Viewer struct {
	Name string

	screen   tcell.Screen
	renderer *render.Renderer
	svc      *atlas.Service
	logger   *slog.Logger

	themeIdx int
	index    int // -1 when nothing is loaded
	count    int
	current  archive.Record
	tiles    *gamemap.TileMap
	// follow jumps to maps generated elsewhere while viewing the newest one.
	follow  bool
	message string
}

// New creates a viewer drawing to screen. An unknown theme name falls back to
// the first theme.
func New(screen tcell.Screen, svc *atlas.Service, theme string, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	th, ok := render.ThemeByName(theme)
	if !ok {
		logger.Warn("unknown theme", "theme", theme, "using", th.Name)
	}
	idx := slices.IndexFunc(render.Themes, func(t render.Theme) bool { return t.Name == th.Name })
	return &Viewer{
		Name:     "local",
		screen:   screen,
		renderer: render.NewRenderer(screen, th),
		svc:      svc,
		logger:   logger,
		themeIdx: idx,
		index:    -1,
		follow:   true,
	}
}

// Run shows the newest archived map and processes input until the user
// quits, the screen closes or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	events, unsubscribe := v.svc.Subscribe(16)
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	eventCh := make(chan tcell.Event, 32)
	go func() {
		defer close(eventCh)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventCh <- ev:
			case <-done:
				return
			}
		}
	}()

	if err := v.refresh(ctx); err != nil {
		return err
	}
	v.jump(ctx, v.count-1)
	v.draw()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventCh:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				v.screen.Sync()
				v.renderer.Resize()
			case *tcell.EventKey:
				action := keyToAction(ev)
				switch action {
				case ActionQuit:
					return nil
				case ActionHelp:
					if !v.showHelp(eventCh) {
						return nil
					}
				case ActionClear:
					if v.count > 0 && v.confirm(eventCh, fmt.Sprintf(" Clear all %d maps? (y/n) ", v.count)) {
						v.handle(ctx, action)
					}
				default:
					v.handle(ctx, action)
				}
			}
			v.draw()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			v.observe(ctx, ev)
			v.draw()
		}
	}
}

// handle applies one non-modal action.
func (v *Viewer) handle(ctx context.Context, a Action) {
	switch a {
	case ActionGenerate:
		res, err := v.svc.Generate(ctx, atlas.Params{})
		if err != nil {
			v.fail("generate", err)
			return
		}
		v.count = res.Record.Index + 1
		v.show(res.Record, res.Map)
		v.message = fmt.Sprintf("generated map %d from seed %d", res.Record.Index, res.Record.Seed)
	case ActionPrev:
		v.jump(ctx, v.index-1)
	case ActionNext:
		v.jump(ctx, v.index+1)
	case ActionFirst:
		v.jump(ctx, 0)
	case ActionLast:
		v.jump(ctx, v.count-1)
	case ActionPanN:
		v.renderer.Pan(0, -PanStep)
	case ActionPanS:
		v.renderer.Pan(0, PanStep)
	case ActionPanE:
		v.renderer.Pan(PanStep, 0)
	case ActionPanW:
		v.renderer.Pan(-PanStep, 0)
	case ActionRecenter:
		v.recenter()
	case ActionTheme:
		v.themeIdx = (v.themeIdx + 1) % len(render.Themes)
		v.renderer.SetTheme(render.Themes[v.themeIdx])
		v.message = "theme: " + render.Themes[v.themeIdx].Name
	case ActionClear:
		if err := v.svc.Clear(ctx); err != nil {
			v.fail("clear", err)
			return
		}
		v.reset()
		v.message = "archive cleared"
	}
}

// observe reacts to archive changes made by any viewer.
func (v *Viewer) observe(ctx context.Context, ev atlas.Event) {
	switch ev.Kind {
	case atlas.EventGenerated:
		if ev.Record.Index == v.index {
			return
		}
		following := v.follow && v.index == v.count-1
		if ev.Count > v.count {
			v.count = ev.Count
		}
		if following && ev.Record.Index > v.index {
			v.jump(ctx, ev.Record.Index)
		}
	case atlas.EventCleared:
		v.reset()
		v.message = "archive cleared"
	}
}

// jump loads the map at index, clamped to the archive.
func (v *Viewer) jump(ctx context.Context, index int) {
	if v.count == 0 {
		return
	}
	index = max(0, min(index, v.count-1))
	if index == v.index {
		return
	}
	rec, err := v.svc.Get(ctx, index)
	if errors.Is(err, archive.ErrNotFound) {
		// Another viewer cleared the archive underneath us.
		if rerr := v.refresh(ctx); rerr != nil {
			v.fail("count", rerr)
		}
		return
	}
	if err != nil {
		v.fail("load", err)
		return
	}
	m, err := rec.TileMap()
	if err != nil {
		v.fail("decode", err)
		return
	}
	v.show(rec, m)
}

func (v *Viewer) show(rec archive.Record, m *gamemap.TileMap) {
	v.current = rec
	v.tiles = m
	v.index = rec.Index
	v.follow = v.index == v.count-1
	v.message = ""
	v.recenter()
}

func (v *Viewer) recenter() {
	if v.tiles == nil {
		return
	}
	s := v.tiles.Size()
	v.renderer.CenterOn(gamemap.Point{X: s.W / 2, Y: s.H / 2})
}

func (v *Viewer) refresh(ctx context.Context) error {
	n, err := v.svc.Count(ctx)
	if err != nil {
		return fmt.Errorf("count maps: %w", err)
	}
	v.count = n
	if v.index >= n {
		v.reset()
		v.count = n
	}
	return nil
}

func (v *Viewer) reset() {
	v.count = 0
	v.index = -1
	v.tiles = nil
	v.current = archive.Record{}
	v.follow = true
}

func (v *Viewer) fail(op string, err error) {
	v.logger.Warn("gallery action failed", "viewer", v.Name, "op", op, "err", err)
	v.message = fmt.Sprintf("%s failed: %v", op, err)
}

func (v *Viewer) draw() {
	v.renderer.DrawMap(v.tiles)
	v.renderer.DrawStatus(v.statusLine(), v.hintLine())
}

func (v *Viewer) statusLine() string {
	if v.tiles == nil {
		return "no maps yet, press g to generate"
	}
	rec := v.current
	return fmt.Sprintf("map %d/%d  seed %d  %v  %d rooms  bounds %v..%v  [%s]",
		rec.Index+1, v.count, rec.Seed, rec.Size, rec.Rooms, rec.MinRoom, rec.MaxRoom,
		render.Themes[v.themeIdx].Name)
}

func (v *Viewer) hintLine() string {
	if v.message != "" {
		return v.message
	}
	return "g generate  ←/→ browse  hjkl pan  t theme  c clear  ? help  q quit"
}
