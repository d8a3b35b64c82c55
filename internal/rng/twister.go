// Package rng provides the seeded pseudo-random engine used by map generation.
//
// The engine is a Mersenne-style twister whose output sequence is fixed for a
// given seed. Stored maps are re-derived from their seed, so the recurrence,
// twist, tempering and range reduction below must never change.
package rng

import "fmt"

const (
	stateSize = 624

	initMultiplier = 0x6c078965
	twistMatrix    = 0x9908b0df
	upperMask      = 0x80000000
	lowerMask      = 0x7fffffff

	temperB = 0x9d2c5680
	temperC = 0xefc60000
)

// Twister is a deterministic generator of 32-bit values.
// A Twister is not safe for concurrent use; each map generation owns one.
type Twister struct {
	state [stateSize]uint32
	index int
}

// New seeds a Twister.
func New(seed uint32) *Twister {
	t := &Twister{}
	t.state[0] = seed
	for i := 1; i < stateSize; i++ {
		prev := t.state[i-1]
		t.state[i] = (prev^(prev>>30))*initMultiplier + uint32(i)
	}
	return t
}

// Next returns the next tempered 32-bit value.
func (t *Twister) Next() uint32 {
	if t.index == 0 {
		t.twist()
	}

	y := t.state[t.index]
	y ^= y >> 11
	y ^= (y << 7) & temperB
	y ^= (y << 15) & temperC
	y ^= y >> 18

	t.index = (t.index + 1) % stateSize
	return y
}

// Range returns a value in [min, max] using a plain modulo reduction.
// The slight bias for spans that do not divide 2^32 is part of the sequence
// contract. Range panics when max < min.
func (t *Twister) Range(min, max uint32) uint32 {
	if max < min {
		panic(fmt.Sprintf("rng: invalid range [%d, %d]", min, max))
	}
	span := uint64(max-min) + 1
	return min + uint32(uint64(t.Next())%span)
}

// Intn draws an int in [min, max]. Both bounds must be non-negative.
func (t *Twister) Intn(min, max int) int {
	if min < 0 || max < min {
		panic(fmt.Sprintf("rng: invalid range [%d, %d]", min, max))
	}
	return int(t.Range(uint32(min), uint32(max)))
}

// Bool draws Range(0, 1) and reports whether it came up 1.
func (t *Twister) Bool() bool {
	return t.Range(0, 1) == 1
}

func (t *Twister) twist() {
	for i := 0; i < stateSize; i++ {
		x := (t.state[i] & upperMask) + (t.state[(i+1)%stateSize] & lowerMask)
		next := x >> 1
		if x%2 != 0 {
			next ^= twistMatrix
		}
		t.state[i] = next
	}
}
