package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return env
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", h.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandlerSendsHelloThenBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	hello := func(context.Context) (Envelope, error) {
		return Envelope{Type: "hello", Payload: map[string]int{"count": 2}}, nil
	}
	srv := httptest.NewServer(hub.Handler(hello))
	defer srv.Close()

	conn := dial(t, srv)
	if env := readEnvelope(t, conn); env.Type != "hello" {
		t.Fatalf("first frame type = %q, want hello", env.Type)
	}
	waitForClients(t, hub, 1)

	if err := hub.Publish("generated", map[string]uint32{"seed": 42}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	env := readEnvelope(t, conn)
	if env.Type != "generated" || env.Sequence != 1 {
		t.Errorf("envelope = %+v, want generated #1", env)
	}
	payload, ok := env.Payload.(map[string]any)
	if !ok || payload["seed"] != float64(42) {
		t.Errorf("payload = %#v", env.Payload)
	}
}

func TestPublishSequencesIncrease(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub.Handler(nil))
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, hub, 2)

	for range 3 {
		if err := hub.Publish("tick", nil); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	for _, conn := range []*websocket.Conn{a, b} {
		for want := uint64(1); want <= 3; want++ {
			if env := readEnvelope(t, conn); env.Sequence != want {
				t.Fatalf("sequence = %d, want %d", env.Sequence, want)
			}
		}
	}
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub.Handler(nil))
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, hub, 1)
	conn.Close(websocket.StatusNormalClosure, "bye")
	waitForClients(t, hub, 0)
}

func TestBroadcastDoesNotBlockRegistration(t *testing.T) {
	hub := NewHub(nil)
	hub.writeTimeout = 1500 * time.Millisecond
	srv := httptest.NewServer(hub.Handler(nil))
	defer srv.Close()

	// Never read from this client so a large frame fills the socket buffers.
	dial(t, srv)
	waitForClients(t, hub, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Broadcast(make([]byte, 64<<20))
	}()
	time.Sleep(100 * time.Millisecond)

	lenDone := make(chan int, 1)
	go func() { lenDone <- hub.Len() }()
	select {
	case <-lenDone:
	case <-time.After(time.Second):
		t.Fatal("Len blocked behind a stalled broadcast")
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("broadcast did not give up on the stalled client")
	}
	waitForClients(t, hub, 0)
}

func TestPublishRejectsUnencodablePayload(t *testing.T) {
	hub := NewHub(nil)
	if err := hub.Publish("bad", make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
}
