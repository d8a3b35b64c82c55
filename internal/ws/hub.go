// Package ws fans map events out to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// WriteTimeout bounds each write to a single client.
const WriteTimeout = 3 * time.Second

// Envelope is the frame sent to every client.
type Envelope struct {
	Sequence uint64 `json:"sequence"`
	Type     string `json:"type"`
	Payload  any    `json:"payload,omitempty"`
}

// Hub tracks connected clients and broadcasts envelopes to all of them.
// Clients whose writes fail are closed and dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	sequence atomic.Uint64
	logger   *slog.Logger

	// sendMu keeps broadcasts in order; mu is never held while writing.
	sendMu       sync.Mutex
	writeTimeout time.Duration
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:      make(map[*websocket.Conn]struct{}),
		logger:       logger,
		writeTimeout: WriteTimeout,
	}
}

func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish wraps payload in the next sequenced envelope and broadcasts it.
func (h *Hub) Publish(typ string, payload any) error {
	msg, err := json.Marshal(Envelope{Sequence: h.sequence.Add(1), Type: typ, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", typ, err)
	}
	h.Broadcast(msg)
	return nil
}

// Broadcast writes message to every client concurrently and waits for the
// writes to finish. A stalled client delays the broadcast by at most the
// write timeout.
func (h *Hub) Broadcast(message []byte) {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed []*websocket.Conn
	)
	for _, conn := range conns {
		wg.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.writeTimeout)
			defer cancel()
			if err := conn.Write(ctx, websocket.MessageText, message); err != nil {
				h.logger.Debug("dropping stream client", "err", err)
				failMu.Lock()
				failed = append(failed, conn)
				failMu.Unlock()
			}
		})
	}
	wg.Wait()

	for _, conn := range failed {
		h.Remove(conn)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

// Handler upgrades requests to websocket streams. hello, when non-nil,
// supplies the first envelope sent to each new client. The connection is
// held open until the client goes away; inbound frames are discarded.
func (h *Hub) Handler(hello func(context.Context) (Envelope, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			h.logger.Warn("stream upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		if hello != nil {
			env, err := hello(ctx)
			if err != nil {
				h.logger.Warn("stream hello failed", "err", err)
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}

		h.Add(conn)
		defer h.Remove(conn)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}
}
