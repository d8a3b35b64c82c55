// Package sqlite provides a SQLite-backed map archive.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/archive/sqlite/migrations"
	"bsp-mapgen/internal/gamemap"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// FileName is the database file created inside the data directory.
const FileName = "maps.db"

// Store persists archived maps in SQLite.
type Store struct {
	sqlDB *sql.DB
	// Serializes index assignment.
	mu sync.Mutex
}

var _ archive.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite archive and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append inserts rec at the next free index.
func (s *Store) Append(ctx context.Context, rec archive.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var idx int
	err := s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO maps (
		   idx, seed, width, height,
		   min_room_w, min_room_h, max_room_w, max_room_h,
		   rooms, map, created_at
		 )
		 SELECT COALESCE(MAX(idx) + 1, 0), ?, ?, ?, ?, ?, ?, ?, ?, ?, ? FROM maps
		 RETURNING idx`,
		int64(rec.Seed), rec.Size.W, rec.Size.H,
		rec.MinRoom.W, rec.MinRoom.H, rec.MaxRoom.W, rec.MaxRoom.H,
		rec.Rooms, rec.Map, toMillis(createdAt),
	).Scan(&idx)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("append map: index already taken: %w", err)
		}
		return 0, fmt.Errorf("append map: %w", err)
	}
	return idx, nil
}

const selectColumns = `idx, seed, width, height, min_room_w, min_room_h, max_room_w, max_room_h, rooms, map, created_at`

// Get returns the map stored at index.
func (s *Store) Get(ctx context.Context, index int) (archive.Record, error) {
	if err := ctx.Err(); err != nil {
		return archive.Record{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM maps WHERE idx = ?`, index)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return archive.Record{}, archive.ErrNotFound
	}
	if err != nil {
		return archive.Record{}, fmt.Errorf("get map %d: %w", index, err)
	}
	return rec, nil
}

// Count returns the number of archived maps.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM maps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count maps: %w", err)
	}
	return n, nil
}

// List returns every archived map in index order.
func (s *Store) List(ctx context.Context) ([]archive.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+selectColumns+` FROM maps ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	var out []archive.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan map: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate maps: %w", err)
	}
	return out, nil
}

// Clear deletes every archived map.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM maps`); err != nil {
		return fmt.Errorf("clear maps: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (archive.Record, error) {
	var (
		rec       archive.Record
		seed      int64
		createdAt int64
		size      gamemap.Size
		minRoom   gamemap.Size
		maxRoom   gamemap.Size
	)
	if err := row.Scan(
		&rec.Index, &seed, &size.W, &size.H,
		&minRoom.W, &minRoom.H, &maxRoom.W, &maxRoom.H,
		&rec.Rooms, &rec.Map, &createdAt,
	); err != nil {
		return archive.Record{}, err
	}
	rec.Seed = uint32(seed)
	rec.Size, rec.MinRoom, rec.MaxRoom = size, minRoom, maxRoom
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
