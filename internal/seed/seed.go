// Package seed draws fresh map seeds.
package seed

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// New returns a random 32-bit seed read from crypto/rand.
func New() (uint32, error) {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
