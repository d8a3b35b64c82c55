// Package config loads runtime settings from MAPGEN_* environment variables.
// Commands override individual fields with flags after loading.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"bsp-mapgen/internal/gamemap"
	"bsp-mapgen/internal/generate"
)

// Config holds settings shared by every command.
type Config struct {
	Width    int    `env:"MAPGEN_WIDTH" envDefault:"60"`
	Height   int    `env:"MAPGEN_HEIGHT" envDefault:"30"`
	MinRoomW int    `env:"MAPGEN_MIN_ROOM_W" envDefault:"6"`
	MinRoomH int    `env:"MAPGEN_MIN_ROOM_H" envDefault:"6"`
	MaxRoomW int    `env:"MAPGEN_MAX_ROOM_W" envDefault:"12"`
	MaxRoomH int    `env:"MAPGEN_MAX_ROOM_H" envDefault:"10"`
	Theme    string `env:"MAPGEN_THEME" envDefault:"codes"`

	// Archive selects the map store: "memory", "jsonl" or "sqlite".
	Archive     string `env:"MAPGEN_ARCHIVE" envDefault:"jsonl"`
	ArchivePath string `env:"MAPGEN_ARCHIVE_PATH"`

	SSHAddr  string `env:"MAPGEN_SSH_ADDR" envDefault:":2222"`
	HTTPAddr string `env:"MAPGEN_HTTP_ADDR" envDefault:":8080"`
	HostKey  string `env:"MAPGEN_HOST_KEY" envDefault:"mapgen_host_key"`

	OTelEndpoint string `env:"MAPGEN_OTEL_ENDPOINT"`
	LogLevel     string `env:"MAPGEN_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Generation returns the generator parameters described by c for seed.
func (c Config) Generation(seed uint32) generate.Config {
	return generate.Config{
		Size:    gamemap.Size{W: c.Width, H: c.Height},
		Seed:    seed,
		MinRoom: gamemap.Size{W: c.MinRoomW, H: c.MinRoomH},
		MaxRoom: gamemap.Size{W: c.MaxRoomW, H: c.MaxRoomH},
	}
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
