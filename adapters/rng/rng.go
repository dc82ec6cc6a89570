// Package rng implements seeded random stream generation. Each named
// operation gets its own deterministic stream so concurrent consumers do not
// share generator state.
package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"psimodal/ports"
)

type adapter struct{}

// NewAdapter creates the default RNG adapter
func NewAdapter() ports.RNGPort {
	return &adapter{}
}

// SeededStream derives a per-name generator from the base seed. The name is
// folded into the seed so distinct operations on the same base seed do not
// replay each other's draws.
func (a *adapter) SeededStream(_ context.Context, name string, seed int64) (*rand.Rand, error) {
	sum := sha256.Sum256([]byte(name))
	derived := seed ^ int64(binary.LittleEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(derived)), nil
}
