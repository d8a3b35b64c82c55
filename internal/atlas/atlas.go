// Package atlas runs map generation for the host commands: it resolves
// seeds, archives every map it produces and notifies subscribers.
package atlas

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/generate"
	"bsp-mapgen/internal/seed"
	"bsp-mapgen/internal/telemetry"
)

// Params selects the map to generate.
type Params struct {
	Size    gamemap.Size
	MinRoom gamemap.Size
	MaxRoom gamemap.Size
	// Seed is used only when HasSeed is set; otherwise a fresh seed is drawn.
	Seed    uint32
	HasSeed bool
}

// WithSeed returns a copy of p pinned to s.
func (p Params) WithSeed(s uint32) Params {
	p.Seed, p.HasSeed = s, true
	return p
}

// Result is one freshly generated and archived map.
type Result struct {
	Record archive.Record
	Map    *gamemap.TileMap
}

// EventKind classifies subscriber notifications.
type EventKind string

const (
	EventGenerated EventKind = "generated"
	EventCleared   EventKind = "cleared"
)

// Event is delivered to subscribers after the archive changes.
type Event struct {
	Kind   EventKind      `json:"kind"`
	Record archive.Record `json:"record,omitzero"`
	Count  int            `json:"count"`
}

// Service generates maps on demand and keeps them in an archive.
type Service struct {
	store    archive.Store
	defaults Params
	logger   *slog.Logger
	tracer   trace.Tracer
	newSeed  func() (uint32, error)
	now      func() time.Time

	mu      sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithSeedSource replaces the random seed source.
func WithSeedSource(fn func() (uint32, error)) Option { return func(s *Service) { s.newSeed = fn } }

// WithClock replaces the clock used to stamp records.
func WithClock(fn func() time.Time) Option { return func(s *Service) { s.now = fn } }

// WithTracer replaces the tracer, which otherwise comes from the global
// provider.
func WithTracer(t trace.Tracer) Option { return func(s *Service) { s.tracer = t } }

// New creates a Service over store. defaults supplies the dimensions used by
// Generate when a request leaves them zero.
func New(store archive.Store, defaults Params, opts ...Option) *Service {
	s := &Service{
		store:    store,
		defaults: defaults,
		logger:   slog.Default(),
		tracer:   telemetry.Tracer(),
		newSeed:  seed.New,
		now:      time.Now,
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the parameters used to fill zero fields.
func (s *Service) Defaults() Params { return s.defaults }

// Generate builds a map, archives it and notifies subscribers. Zero size or
// room bounds fall back to the service defaults.
func (s *Service) Generate(ctx context.Context, p Params) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "atlas.Generate")
	defer span.End()

	p = s.fill(p)
	if !p.HasSeed {
		v, err := s.newSeed()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "seed")
			return Result{}, fmt.Errorf("draw seed: %w", err)
		}
		p.Seed = v
	}
	span.SetAttributes(
		attribute.Int64("map.seed", int64(p.Seed)),
		attribute.Int("map.width", p.Size.W),
		attribute.Int("map.height", p.Size.H),
	)

	start := s.now()
	m, err := generate.Generate(generate.Config{
		Size:    p.Size,
		Seed:    p.Seed,
		MinRoom: p.MinRoom,
		MaxRoom: p.MaxRoom,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate")
		return Result{}, fmt.Errorf("generate map: %w", err)
	}

	rec := archive.NewRecord(m, start)
	idx, err := s.store.Append(ctx, rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "archive")
		return Result{}, fmt.Errorf("archive map: %w", err)
	}
	rec.Index = idx
	connected := m.Connected()
	span.SetAttributes(
		attribute.Int("map.index", idx),
		attribute.Int("map.rooms", rec.Rooms),
		attribute.Bool("map.connected", connected),
	)

	s.logger.Info("map generated",
		"index", idx,
		"seed", p.Seed,
		"size", p.Size.String(),
		"rooms", rec.Rooms,
		"connected", connected,
		"elapsed", s.now().Sub(start),
	)
	if !connected {
		s.logger.Warn("map has unreachable rooms", "index", idx, "seed", p.Seed)
	}
	s.publish(Event{Kind: EventGenerated, Record: rec, Count: idx + 1})
	return Result{Record: rec, Map: m}, nil
}

func (s *Service) fill(p Params) Params {
	if p.Size == (gamemap.Size{}) {
		p.Size = s.defaults.Size
	}
	if p.MinRoom == (gamemap.Size{}) {
		p.MinRoom = s.defaults.MinRoom
	}
	if p.MaxRoom == (gamemap.Size{}) {
		p.MaxRoom = s.defaults.MaxRoom
	}
	return p
}

// Get returns the archived map at index.
func (s *Service) Get(ctx context.Context, index int) (archive.Record, error) {
	ctx, span := s.tracer.Start(ctx, "atlas.Get", trace.WithAttributes(attribute.Int("map.index", index)))
	defer span.End()
	rec, err := s.store.Get(ctx, index)
	if err != nil {
		span.RecordError(err)
		return archive.Record{}, fmt.Errorf("get map %d: %w", index, err)
	}
	return rec, nil
}

// Count returns the number of archived maps.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count maps: %w", err)
	}
	return n, nil
}

// List returns every archived map in index order.
func (s *Service) List(ctx context.Context) ([]archive.Record, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return recs, nil
}

// Clear empties the archive and notifies subscribers.
func (s *Service) Clear(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "atlas.Clear")
	defer span.End()
	if err := s.store.Clear(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("clear maps: %w", err)
	}
	s.logger.Info("archive cleared")
	s.publish(Event{Kind: EventCleared})
	return nil
}

// Subscribe registers for archive events. Delivery never blocks the
// publisher: when the buffer is full the event is dropped for that
// subscriber. The returned cancel function unregisters and closes the channel.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("subscriber lagging, event dropped", "subscriber", id, "kind", ev.Kind)
		}
	}
}
