package generate

import (
	"errors"
	"fmt"

	"bsp-mapgen/internal/gamemap"
)

const (
	// MinMapSize is the smallest accepted map extent on either axis.
	MinMapSize = 20
	// MaxMapSize is the largest accepted map extent on either axis.
	MaxMapSize = 500
	// MinRoomBound is the smallest accepted minimum room size on either axis.
	MinRoomBound = 6
)

// ErrInvalidConfig is wrapped by every *ConfigError.
var ErrInvalidConfig = errors.New("invalid map config")

// ConfigError reports a generation parameter that violates a construction rule.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Config drives generation of one map.
type Config struct {
	Size    gamemap.Size
	Seed    uint32
	MinRoom gamemap.Size
	MaxRoom gamemap.Size
}

// Validate checks the construction rules in a fixed order and returns the
// first violation.
func (c Config) Validate() error {
	if c.Size.W < MinMapSize || c.Size.H < MinMapSize {
		return &ConfigError{
			Field:  "size",
			Reason: fmt.Sprintf("map size %v must be at least %dx%d", c.Size, MinMapSize, MinMapSize),
		}
	}
	if c.Size.W > MaxMapSize || c.Size.H > MaxMapSize {
		return &ConfigError{
			Field:  "size",
			Reason: fmt.Sprintf("map size %v must be at most %dx%d", c.Size, MaxMapSize, MaxMapSize),
		}
	}
	if c.MinRoom.W < MinRoomBound || c.MinRoom.H < MinRoomBound {
		return &ConfigError{
			Field:  "min_room",
			Reason: fmt.Sprintf("minimum room size %v must be at least %dx%d", c.MinRoom, MinRoomBound, MinRoomBound),
		}
	}
	if c.MinRoom.W >= c.MaxRoom.W {
		return &ConfigError{
			Field:  "min_room.w",
			Reason: fmt.Sprintf("minimum room width %d must be less than maximum room width %d", c.MinRoom.W, c.MaxRoom.W),
		}
	}
	if c.MinRoom.H >= c.MaxRoom.H {
		return &ConfigError{
			Field:  "min_room.h",
			Reason: fmt.Sprintf("minimum room height %d must be less than maximum room height %d", c.MinRoom.H, c.MaxRoom.H),
		}
	}
	if c.MaxRoom.W >= c.Size.W {
		return &ConfigError{
			Field:  "max_room.w",
			Reason: fmt.Sprintf("maximum room width %d must be less than map width %d", c.MaxRoom.W, c.Size.W),
		}
	}
	if c.MaxRoom.H >= c.Size.H {
		return &ConfigError{
			Field:  "max_room.h",
			Reason: fmt.Sprintf("maximum room height %d must be less than map height %d", c.MaxRoom.H, c.Size.H),
		}
	}
	return nil
}
