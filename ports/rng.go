package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic trials.
// Each worker gets its own named stream so concurrent trial generation never
// shares a random source.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for a specific
	// (run, worker) pair, so a sweep re-run with the same base seed
	// reproduces every trial.
	Stream(ctx context.Context, runID string, worker int, baseSeed int64) (*rand.Rand, error)
}
