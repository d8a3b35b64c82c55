package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/ws"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, *atlas.Service, *ws.Hub) {
	t.Helper()
	var next uint32 = 100
	svc := atlas.New(archive.NewMemory(), atlas.Params{
		Size:    gamemap.Size{W: 30, H: 20},
		MinRoom: gamemap.Size{W: 6, H: 6},
		MaxRoom: gamemap.Size{W: 10, H: 10},
	},
		atlas.WithLogger(quietLogger()),
		atlas.WithSeedSource(func() (uint32, error) { next++; return next, nil }),
	)
	hub := ws.NewHub(quietLogger())
	srv := httptest.NewServer(newHandler(svc, hub, quietLogger()))
	t.Cleanup(srv.Close)
	return srv, svc, hub
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGenerateThenFetch(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/maps?seed=42&width=20&height=20")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d", resp.StatusCode)
	}
	var rec archive.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Seed != 42 || rec.Size != (gamemap.Size{W: 20, H: 20}) || rec.Index != 0 {
		t.Fatalf("record = %+v", rec)
	}

	resp = do(t, http.MethodGet, srv.URL+"/maps/0")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != rec.Map {
		t.Error("served text differs from the generated record")
	}
	if got := resp.Header.Get("X-Map-Seed"); got != "42" {
		t.Errorf("X-Map-Seed = %q", got)
	}

	resp = do(t, http.MethodGet, srv.URL+"/maps/count")
	var count map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		t.Fatal(err)
	}
	if count["count"] != 1 {
		t.Errorf("count = %v", count)
	}
}

func TestListAndClear(t *testing.T) {
	srv, _, _ := newTestServer(t)
	for range 2 {
		if resp := do(t, http.MethodPost, srv.URL+"/maps"); resp.StatusCode != http.StatusCreated {
			t.Fatalf("POST status = %d", resp.StatusCode)
		}
	}

	resp := do(t, http.MethodGet, srv.URL+"/maps")
	var list []summary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Seed != 101 || list[1].Seed != 102 {
		t.Fatalf("list = %+v", list)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/maps"); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, srv.URL+"/maps")
	list = nil
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("list after clear = %+v", list)
	}
}

func TestHTTPErrors(t *testing.T) {
	srv, _, _ := newTestServer(t)
	cases := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"missing map", http.MethodGet, "/maps/3", http.StatusNotFound},
		{"bad index", http.MethodGet, "/maps/abc", http.StatusBadRequest},
		{"bad seed", http.MethodPost, "/maps?seed=-1", http.StatusBadRequest},
		{"bad width", http.MethodPost, "/maps?width=wide", http.StatusBadRequest},
		{"too small", http.MethodPost, "/maps?width=10&height=10", http.StatusUnprocessableEntity},
		{"too large", http.MethodPost, "/maps?seed=1&width=3000&height=3000", http.StatusBadRequest},
		{"too tall", http.MethodPost, "/maps?height=501", http.StatusBadRequest},
		{"wrong method", http.MethodPut, "/maps", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if resp := do(t, tc.method, srv.URL+tc.path); resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}

func TestParamsFromQueryRejectsOversizedMaps(t *testing.T) {
	defaults := atlas.Params{Size: gamemap.Size{W: 60, H: 30}}
	cases := []struct {
		name  string
		query string
		ok    bool
	}{
		{"at cap", "width=500&height=500", true},
		{"width over cap", "width=501", false},
		{"height over cap", "height=100000", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/maps?"+tc.query, nil)
			_, err := paramsFromQuery(r, defaults)
			if (err == nil) != tc.ok {
				t.Errorf("err = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestParamsFromQueryKeepsDefaultAxis(t *testing.T) {
	defaults := atlas.Params{Size: gamemap.Size{W: 60, H: 30}}
	r := httptest.NewRequest(http.MethodPost, "/maps?width=40", nil)
	p, err := paramsFromQuery(r, defaults)
	if err != nil {
		t.Fatal(err)
	}
	if p.Size != (gamemap.Size{W: 40, H: 30}) {
		t.Errorf("Size = %v, want 40x30", p.Size)
	}
	if p.HasSeed {
		t.Error("no seed was given")
	}

	r = httptest.NewRequest(http.MethodPost, "/maps?seed=9", nil)
	p, _ = paramsFromQuery(r, defaults)
	if p.Size != (gamemap.Size{}) || !p.HasSeed || p.Seed != 9 {
		t.Errorf("params = %+v", p)
	}
}

func TestStreamReceivesGeneratedMaps(t *testing.T) {
	srv, svc, hub := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, unsubscribe := svc.Subscribe(8)
	defer unsubscribe()
	go pump(ctx, events, hub, quietLogger())

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() ws.Envelope {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var env ws.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatal(err)
		}
		return env
	}
	if env := read(); env.Type != "hello" {
		t.Fatalf("first frame = %q, want hello", env.Type)
	}
	for hub.Len() == 0 {
		if ctx.Err() != nil {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := svc.Generate(ctx, atlas.Params{}.WithSeed(7)); err != nil {
		t.Fatal(err)
	}
	env := read()
	if env.Type != string(atlas.EventGenerated) {
		t.Fatalf("frame type = %q", env.Type)
	}
	payload, _ := json.Marshal(env.Payload)
	var ev atlas.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Record.Seed != 7 || ev.Count != 1 {
		t.Errorf("event = %+v", ev)
	}
}

func TestLoadOrCreateHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_key")

	first, err := loadOrCreateHostKey(path, quietLogger())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("key not persisted: %v", err)
	}
	second, err := loadOrCreateHostKey(path, quietLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, b := first.PublicKey().Marshal(), second.PublicKey().Marshal()
	if string(a) != string(b) {
		t.Error("reloaded key differs from the generated one")
	}
}
