package chart

import (
	"encoding/binary"
	"math/bits"

	"github.com/google/uuid"
)

// IDGenerator produces element identifiers.
type IDGenerator interface {
	NewID() uuid.UUID
	// Fork returns an independent generator in the same state, so that a clone
	// keeps producing the same sequence as its source.
	Fork() IDGenerator
}

type randomIDs struct{}

func (randomIDs) NewID() uuid.UUID  { return uuid.New() }
func (randomIDs) Fork() IDGenerator { return randomIDs{} }

// RandomIDs returns the default generator (random version 4 UUIDs).
func RandomIDs() IDGenerator {
	return randomIDs{}
}

const repeatableMask = 0x9E3779B97F4A7C15

// RepeatableIDs is a deterministic generator: the state is seeded from a base
// value, then rotated and XORed on every draw. Two generators built from the
// same seed yield identical id sequences.
type RepeatableIDs struct {
	state uint64
	calls uint64
}

// NewRepeatableIDs creates a deterministic generator for seed.
func NewRepeatableIDs(seed uint64) *RepeatableIDs {
	return &RepeatableIDs{state: seed ^ repeatableMask}
}

func (g *RepeatableIDs) next() uint64 {
	g.calls++
	g.state = bits.RotateLeft64(g.state, 23) ^ (repeatableMask + g.calls)
	return g.state
}

// Read fills p from the generator stream. It never fails.
func (g *RepeatableIDs) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], g.next())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// NewID draws sixteen bytes and stamps them as a version 4 UUID.
func (g *RepeatableIDs) NewID() uuid.UUID {
	return uuid.Must(uuid.NewRandomFromReader(g))
}

func (g *RepeatableIDs) Fork() IDGenerator {
	cp := *g
	return &cp
}
