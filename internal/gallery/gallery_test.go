package gallery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/render"
)

func newTestService(t *testing.T) *atlas.Service {
	t.Helper()
	var next uint32
	return atlas.New(archive.NewMemory(), atlas.Params{
		Size:    gamemap.Size{W: 30, H: 20},
		MinRoom: gamemap.Size{W: 6, H: 6},
		MaxRoom: gamemap.Size{W: 10, H: 10},
	},
		atlas.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		atlas.WithSeedSource(func() (uint32, error) { next++; return next, nil }),
	)
}

func newTestViewer(t *testing.T, svc *atlas.Service) (*Viewer, tcell.SimulationScreen) {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	ss.SetSize(80, 24)
	if err := ss.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(ss.Fini)
	return New(ss, svc, "codes", slog.New(slog.NewTextHandler(io.Discard, nil))), ss
}

func TestKeyToAction(t *testing.T) {
	cases := []struct {
		name string
		ev   *tcell.EventKey
		want Action
	}{
		{"g generates", tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone), ActionGenerate},
		{"enter generates", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), ActionGenerate},
		{"left browses back", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), ActionPrev},
		{"right browses forward", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), ActionNext},
		{"up pans", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), ActionPanN},
		{"h pans west", tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone), ActionPanW},
		{"t cycles theme", tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone), ActionTheme},
		{"c clears", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), ActionClear},
		{"escape quits", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionQuit},
		{"unbound", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), ActionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := keyToAction(tc.ev); got != tc.want {
				t.Errorf("keyToAction() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGenerateAndBrowse(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	v, _ := newTestViewer(t, svc)

	for range 3 {
		v.handle(ctx, ActionGenerate)
	}
	if v.count != 3 || v.index != 2 {
		t.Fatalf("after 3 generates: count %d index %d", v.count, v.index)
	}
	if v.current.Seed != 3 {
		t.Errorf("current seed = %d, want 3", v.current.Seed)
	}

	v.handle(ctx, ActionPrev)
	v.handle(ctx, ActionPrev)
	v.handle(ctx, ActionPrev)
	if v.index != 0 {
		t.Errorf("index after browsing past the start = %d, want 0", v.index)
	}
	if v.current.Seed != 1 {
		t.Errorf("seed at index 0 = %d, want 1", v.current.Seed)
	}

	v.handle(ctx, ActionLast)
	if v.index != 2 {
		t.Errorf("ActionLast index = %d, want 2", v.index)
	}
	if render.Text(v.tiles) != v.current.Map {
		t.Error("loaded tiles do not match the archived text")
	}
}

func TestClearResetsViewer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	v, _ := newTestViewer(t, svc)

	v.handle(ctx, ActionGenerate)
	v.handle(ctx, ActionClear)
	if v.count != 0 || v.index != -1 || v.tiles != nil {
		t.Errorf("after clear: count %d index %d tiles %v", v.count, v.index, v.tiles)
	}
	if n, _ := svc.Count(ctx); n != 0 {
		t.Errorf("archive count = %d, want 0", n)
	}
	if got := v.statusLine(); got != "no maps yet, press g to generate" {
		t.Errorf("statusLine() = %q", got)
	}
}

func TestNewSelectsTheme(t *testing.T) {
	cases := []struct {
		theme string
		want  string
	}{
		{"crystal", "crystal"},
		{"codes", "codes"},
		{"no-such-theme", render.Themes[0].Name},
	}
	for _, tc := range cases {
		t.Run(tc.theme, func(t *testing.T) {
			ss := tcell.NewSimulationScreen("UTF-8")
			if err := ss.Init(); err != nil {
				t.Fatalf("init screen: %v", err)
			}
			defer ss.Fini()
			v := New(ss, newTestService(t), tc.theme, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if v.renderer.Theme().Name != tc.want {
				t.Errorf("renderer theme = %q, want %q", v.renderer.Theme().Name, tc.want)
			}
			if render.Themes[v.themeIdx].Name != tc.want {
				t.Errorf("themeIdx points at %q, want %q", render.Themes[v.themeIdx].Name, tc.want)
			}
		})
	}
}

func TestThemeCycles(t *testing.T) {
	v, _ := newTestViewer(t, newTestService(t))
	for range len(render.Themes) {
		v.handle(context.Background(), ActionTheme)
	}
	if v.themeIdx != 0 {
		t.Errorf("themeIdx after a full cycle = %d, want 0", v.themeIdx)
	}
	if v.renderer.Theme().Name != render.Themes[0].Name {
		t.Errorf("renderer theme = %q", v.renderer.Theme().Name)
	}
}

func TestObserveFollowsNewestMap(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	watcher, _ := newTestViewer(t, svc)
	other, _ := newTestViewer(t, svc)

	other.handle(ctx, ActionGenerate)
	res, err := svc.Get(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	watcher.observe(ctx, atlas.Event{Kind: atlas.EventGenerated, Record: res, Count: 1})
	if watcher.index != 0 {
		t.Fatalf("watcher index = %d, want 0", watcher.index)
	}

	// Browsing back stops following.
	other.handle(ctx, ActionGenerate)
	watcher.observe(ctx, atlas.Event{Kind: atlas.EventGenerated, Record: other.current, Count: 2})
	if watcher.index != 1 {
		t.Fatalf("watcher index = %d, want 1", watcher.index)
	}
	watcher.handle(ctx, ActionPrev)
	other.handle(ctx, ActionGenerate)
	watcher.observe(ctx, atlas.Event{Kind: atlas.EventGenerated, Record: other.current, Count: 3})
	if watcher.index != 0 || watcher.count != 3 {
		t.Errorf("watcher index %d count %d, want 0 and 3", watcher.index, watcher.count)
	}

	watcher.observe(ctx, atlas.Event{Kind: atlas.EventCleared})
	if watcher.index != -1 || watcher.count != 0 {
		t.Errorf("after cleared event: index %d count %d", watcher.index, watcher.count)
	}
}

func TestRunProcessesKeysUntilQuit(t *testing.T) {
	svc := newTestService(t)
	v, ss := newTestViewer(t, svc)

	ss.InjectKey(tcell.KeyRune, 'g', tcell.ModNone)
	ss.InjectKey(tcell.KeyRune, 'g', tcell.ModNone)
	ss.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	ss.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after q")
	}

	if n, _ := svc.Count(context.Background()); n != 2 {
		t.Errorf("archive count = %d, want 2", n)
	}
	if v.index != 0 {
		t.Errorf("index = %d, want 0 after one step back", v.index)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	v, _ := newTestViewer(t, newTestService(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run ignored cancellation")
	}
}
