package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the archive file created inside the data directory.
const FileName = "maps.jsonl"

// JSONL is a Store that appends each record as one JSON line to a file and
// keeps an in-memory copy for reads.
type JSONL struct {
	path string
	mem  Memory
}

// OpenJSONL loads the archive at path, creating parent directories as needed.
// Lines that fail to decode are skipped with a warning.
func OpenJSONL(path string, logger *slog.Logger) (*JSONL, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	s := &JSONL{path: path}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			logger.Warn("skipping archive line", "path", path, "line", line, "err", err)
			continue
		}
		s.mem.appendLocked(rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *JSONL) Path() string { return s.path }

func (s *JSONL) Append(ctx context.Context, rec Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	rec.Index = len(s.mem.records)
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode record: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return 0, fmt.Errorf("write archive: %w", err)
	}
	return s.mem.appendLocked(rec), nil
}

func (s *JSONL) Get(ctx context.Context, index int) (Record, error) {
	return s.mem.Get(ctx, index)
}

func (s *JSONL) Count(ctx context.Context) (int, error) {
	return s.mem.Count(ctx)
}

func (s *JSONL) List(ctx context.Context) ([]Record, error) {
	return s.mem.List(ctx)
}

// Clear truncates the file and forgets every record.
func (s *JSONL) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if err := os.Truncate(s.path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("truncate archive: %w", err)
	}
	s.mem.records = nil
	return nil
}

// DefaultDir returns the directory where archives are stored.
// Uses $XDG_DATA_HOME/bsp-mapgen,
// defaulting to ~/.local/share/bsp-mapgen.
func DefaultDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "bsp-mapgen"), nil
}
