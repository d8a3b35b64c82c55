// Package app assembles the pieces shared by every command: logger, archive
// store and atlas service.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/archive/sqlite"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/config"
	"bsp-mapgen/internal/gamemap"
)

// NewLogger returns a text logger writing to w at the named level. Unknown
// levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// OpenStore opens the archive backend selected by cfg. The returned close
// function releases it and is never nil.
func OpenStore(cfg config.Config, logger *slog.Logger) (archive.Store, func() error, error) {
	noop := func() error { return nil }
	kind := strings.ToLower(strings.TrimSpace(cfg.Archive))
	if kind == "memory" {
		return archive.NewMemory(), noop, nil
	}

	path := cfg.ArchivePath
	if path == "" {
		dir, err := archive.DefaultDir()
		if err != nil {
			return nil, noop, fmt.Errorf("resolve data dir: %w", err)
		}
		name := archive.FileName
		if kind == "sqlite" {
			name = sqlite.FileName
		}
		path = filepath.Join(dir, name)
	}

	switch kind {
	case "jsonl", "":
		s, err := archive.OpenJSONL(path, logger)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("archive opened", "kind", "jsonl", "path", path)
		return s, noop, nil
	case "sqlite":
		if err := ensureDir(path); err != nil {
			return nil, noop, err
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("archive opened", "kind", "sqlite", "path", path)
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown archive kind %q (want memory, jsonl or sqlite)", cfg.Archive)
}

// Defaults converts the configured dimensions into atlas parameters.
func Defaults(cfg config.Config) atlas.Params {
	return atlas.Params{
		Size:    gamemap.Size{W: cfg.Width, H: cfg.Height},
		MinRoom: gamemap.Size{W: cfg.MinRoomW, H: cfg.MinRoomH},
		MaxRoom: gamemap.Size{W: cfg.MaxRoomW, H: cfg.MaxRoomH},
	}
}
