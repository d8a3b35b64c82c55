package app

import (
	"fmt"
	"os"
	"path/filepath"
)

func ensureDir(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	return nil
}
