package config

import (
	"strings"
	"testing"

	"bsp-mapgen/internal/gamemap"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 60 || cfg.Height != 30 {
		t.Errorf("size = %dx%d, want 60x30", cfg.Width, cfg.Height)
	}
	if cfg.Archive != "jsonl" {
		t.Errorf("Archive = %q, want jsonl", cfg.Archive)
	}
	if cfg.OTelEndpoint != "" {
		t.Errorf("OTelEndpoint = %q, want empty", cfg.OTelEndpoint)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAPGEN_WIDTH", "40")
	t.Setenv("MAPGEN_MAX_ROOM_H", "9")
	t.Setenv("MAPGEN_ARCHIVE", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 40 {
		t.Errorf("Width = %d, want 40", cfg.Width)
	}
	if cfg.MaxRoomH != 9 {
		t.Errorf("MaxRoomH = %d, want 9", cfg.MaxRoomH)
	}
	if cfg.Archive != "sqlite" {
		t.Errorf("Archive = %q, want sqlite", cfg.Archive)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("MAPGEN_WIDTH", "wide")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestGeneration(t *testing.T) {
	cfg := Config{Width: 20, Height: 22, MinRoomW: 6, MinRoomH: 7, MaxRoomW: 10, MaxRoomH: 11}
	g := cfg.Generation(42)
	if g.Size != (gamemap.Size{W: 20, H: 22}) {
		t.Errorf("Size = %v", g.Size)
	}
	if g.MinRoom != (gamemap.Size{W: 6, H: 7}) || g.MaxRoom != (gamemap.Size{W: 10, H: 11}) {
		t.Errorf("room bounds = %v..%v", g.MinRoom, g.MaxRoom)
	}
	if g.Seed != 42 {
		t.Errorf("Seed = %d, want 42", g.Seed)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
