package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic
// operations. Bootstrap estimation draws its trial resamples from a named
// stream so the same seed replays the same trials.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
