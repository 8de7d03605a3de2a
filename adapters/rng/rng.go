package rng

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"gollh/ports"
)

// SeededRNG implements ports.RNGPort by deriving independent deterministic
// streams from a name (or run/worker pair) and a base seed. The same inputs
// always yield the same stream, so sweeps reproduce exactly.
type SeededRNG struct{}

// New creates the default RNG adapter.
func New() *SeededRNG {
	return &SeededRNG{}
}

// SeededStream derives a stream from a named operation and seed.
func (s *SeededRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name == "" {
		return nil, fmt.Errorf("stream name cannot be empty")
	}
	return rand.New(rand.NewSource(mix(name, seed))), nil
}

// Stream derives a per-worker stream for a run, spacing workers apart in
// seed space so their sequences never coincide.
func (s *SeededRNG) Stream(ctx context.Context, runID string, worker int, baseSeed int64) (*rand.Rand, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}
	return rand.New(rand.NewSource(mix(fmt.Sprintf("%s/%d", runID, worker), baseSeed))), nil
}

func mix(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64()) ^ seed
}

var _ ports.RNGPort = (*SeededRNG)(nil)
