package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/generate"
	"bsp-mapgen/internal/ws"
)

// summary is the list form of an archived map; the grid itself is served by
// GET /maps/{index}.
type summary struct {
	Index     int          `json:"index"`
	Seed      uint32       `json:"seed"`
	Size      gamemap.Size `json:"size"`
	Rooms     int          `json:"rooms"`
	CreatedAt time.Time    `json:"created_at"`
}

func summarize(rec archive.Record) summary {
	return summary{Index: rec.Index, Seed: rec.Seed, Size: rec.Size, Rooms: rec.Rooms, CreatedAt: rec.CreatedAt}
}

// newHandler routes the HTTP surface:
//
//	GET    /stream        websocket of archive events
//	GET    /maps          summaries of every archived map
//	GET    /maps/count    {"count": n}
//	GET    /maps/{index}  the map as text
//	POST   /maps          generate (optional seed, width, height query params)
//	DELETE /maps          clear the archive
func newHandler(svc *atlas.Service, hub *ws.Hub, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /stream", hub.Handler(func(ctx context.Context) (ws.Envelope, error) {
		n, err := svc.Count(ctx)
		if err != nil {
			return ws.Envelope{}, err
		}
		return ws.Envelope{Type: "hello", Payload: map[string]int{"count": n}}, nil
	}))

	mux.HandleFunc("GET /maps", func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.List(r.Context())
		if err != nil {
			serverError(w, logger, err)
			return
		}
		out := make([]summary, 0, len(recs))
		for _, rec := range recs {
			out = append(out, summarize(rec))
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /maps/count", func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Count(r.Context())
		if err != nil {
			serverError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": n})
	})

	mux.HandleFunc("GET /maps/{index}", func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(r.PathValue("index"))
		if err != nil {
			http.Error(w, "index must be an integer", http.StatusBadRequest)
			return
		}
		rec, err := svc.Get(r.Context(), index)
		if errors.Is(err, archive.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			serverError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Map-Seed", strconv.FormatUint(uint64(rec.Seed), 10))
		_, _ = w.Write([]byte(rec.Map))
	})

	mux.HandleFunc("POST /maps", func(w http.ResponseWriter, r *http.Request) {
		p, err := paramsFromQuery(r, svc.Defaults())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := svc.Generate(r.Context(), p)
		if errors.Is(err, generate.ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			serverError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, res.Record)
	})

	mux.HandleFunc("DELETE /maps", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			serverError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

// paramsFromQuery reads optional seed, width and height. A missing axis
// keeps the default size. Extents above generate.MaxMapSize are refused
// before any work is done.
func paramsFromQuery(r *http.Request, defaults atlas.Params) (atlas.Params, error) {
	var p atlas.Params
	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		s, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, errors.New("seed must be an unsigned 32-bit integer")
		}
		p = p.WithSeed(uint32(s))
	}
	size := defaults.Size
	for _, dim := range []struct {
		key string
		dst *int
	}{{"width", &size.W}, {"height", &size.H}} {
		v := q.Get(dim.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.New(dim.key + " must be an integer")
		}
		if n > generate.MaxMapSize {
			return p, fmt.Errorf("%s must be at most %d", dim.key, generate.MaxMapSize)
		}
		*dim.dst = n
	}
	if size != defaults.Size {
		p.Size = size
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func serverError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("request failed", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// pump forwards archive events to stream clients until ctx ends or the
// subscription closes.
func pump(ctx context.Context, events <-chan atlas.Event, hub *ws.Hub, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := hub.Publish(string(ev.Kind), ev); err != nil {
				logger.Warn("stream publish failed", "err", err)
			}
		}
	}
}
