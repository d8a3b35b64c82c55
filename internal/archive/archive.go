// Package archive stores generated maps so they can be browsed, counted and
// cleared later. Indexes are dense and start at 0; Clear resets them.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/render"
)

// ErrNotFound is returned when no map exists at the requested index.
var ErrNotFound = errors.New("archive: map not found")

// Record is one archived map with the parameters that produced it.
type Record struct {
	Index     int          `json:"index"`
	Seed      uint32       `json:"seed"`
	Size      gamemap.Size `json:"size"`
	MinRoom   gamemap.Size `json:"min_room"`
	MaxRoom   gamemap.Size `json:"max_room"`
	Rooms     int          `json:"rooms"`
	Map       string       `json:"map"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewRecord captures m and its text rendering. The index is assigned by the
// store on Append.
func NewRecord(m *gamemap.TileMap, at time.Time) Record {
	return Record{
		Seed:      m.Seed(),
		Size:      m.Size(),
		MinRoom:   m.MinRoom(),
		MaxRoom:   m.MaxRoom(),
		Rooms:     len(m.Rooms()),
		Map:       render.Text(m),
		CreatedAt: at.UTC(),
	}
}

// TileMap rebuilds the tile grid from the stored text.
func (r Record) TileMap() (*gamemap.TileMap, error) {
	m, err := render.Parse(r.Map, r.Seed)
	if err != nil {
		return nil, fmt.Errorf("decode map %d: %w", r.Index, err)
	}
	return m, nil
}

// Store is the persistence contract shared by every archive backend.
type Store interface {
	// Append stores rec and returns the index it was assigned.
	Append(ctx context.Context, rec Record) (int, error)
	Get(ctx context.Context, index int) (Record, error)
	Count(ctx context.Context) (int, error)
	// List returns every record in index order.
	List(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
}
