package sampling

import (
	"math"
	"math/rand"
	"sort"

	"gollh/domain/core"
)

// Sampler draws event indices from a fixed discrete probability distribution,
// sampling with replacement, with probability proportional to weight.
//
// The cumulative-sum array is cached and reused as long as the weight sequence
// passed to Draw is bit-identical to the one the cache was built from. The
// same distribution (e.g. per-event detector acceptance for a fixed source) is
// reused across thousands of trial repetitions with only the draw count
// changing, so skipping the O(N) recomputation dominates the amortized cost.
//
// A Sampler instance is not safe for concurrent use: concurrent draws with
// differing weight sequences would corrupt the cache. Use one instance per
// (dataset, weight-configuration) and per concurrent trial worker.
type Sampler struct {
	rng      *rand.Rand
	weights  []float64 // copy of the weights the cache was built from
	cum      []float64 // inclusive prefix sums
	total    float64
	rebuilds int
}

// New creates a sampler owning the given random source.
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// NewSeeded creates a sampler with its own source seeded from seed.
func NewSeeded(seed int64) *Sampler {
	return New(rand.New(rand.NewSource(seed)))
}

// Rebuilds returns how many times the cumulative sum has been recomputed.
// Exposed so tests can observe cache hits and invalidations.
func (s *Sampler) Rebuilds() int {
	return s.rebuilds
}

// Reseed replaces the random source. The cumulative cache is dropped as well,
// so a reseeded sampler never draws against state from before the reseed.
func (s *Sampler) Reseed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
	s.weights = nil
	s.cum = nil
	s.total = 0
}

// Draw produces k independent indices in [0, len(weights)), each drawn with
// probability weights[i] / sum(weights). Weights need not sum to one.
//
// k == 0 returns an empty slice without invoking the random source.
func (s *Sampler) Draw(weights []float64, k int) ([]int, error) {
	if len(weights) == 0 {
		return nil, core.ErrEmptyDistribution
	}
	if k == 0 {
		return []int{}, nil
	}
	if err := s.ensureCache(weights); err != nil {
		return nil, err
	}

	indices := make([]int, k)
	for i := 0; i < k; i++ {
		u := s.rng.Float64() * s.total
		// Smallest index with cum[idx] > u. Strict comparison skips
		// zero-weight prefixes when u lands exactly on a boundary.
		indices[i] = sort.Search(len(s.cum), func(j int) bool {
			return s.cum[j] > u
		})
		if indices[i] == len(s.cum) {
			indices[i] = len(s.cum) - 1
		}
	}
	return indices, nil
}

// DrawWithoutReplacement produces k distinct indices weighted by the given
// weights, for permutation-style scrambling where an event may enter a trial
// at most once. Uses the exponential-key reservoir order (Efraimidis and
// Spirakis), which needs no cumulative cache.
func (s *Sampler) DrawWithoutReplacement(weights []float64, k int) ([]int, error) {
	if len(weights) == 0 {
		return nil, core.ErrEmptyDistribution
	}
	if k == 0 {
		return []int{}, nil
	}

	type keyed struct {
		idx int
		key float64
	}
	candidates := make([]keyed, 0, len(weights))
	for i, w := range weights {
		if w < 0 {
			return nil, core.NewNegativeWeightError(i, w)
		}
		if w == 0 {
			continue
		}
		// key = -ln(u)/w; smallest keys win.
		u := s.rng.Float64()
		for u == 0 {
			u = s.rng.Float64()
		}
		candidates = append(candidates, keyed{idx: i, key: -math.Log(u) / w})
	}
	if len(candidates) == 0 {
		return nil, core.ErrDegenerateDistribution
	}
	if k > len(candidates) {
		return nil, core.ErrDegenerateDistribution
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].key < candidates[j].key })
	indices := make([]int, k)
	for i := 0; i < k; i++ {
		indices[i] = candidates[i].idx
	}
	return indices, nil
}

// ensureCache rebuilds the cumulative-sum array when the weight sequence
// differs from the cached one. Any single changed weight value invalidates the
// cache, even when the total stays equal.
func (s *Sampler) ensureCache(weights []float64) error {
	if s.sameWeights(weights) {
		return nil
	}

	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return core.NewNegativeWeightError(i, w)
		}
		total += w
		cum[i] = total
	}
	if total == 0 {
		return core.ErrDegenerateDistribution
	}

	s.weights = append(s.weights[:0:0], weights...)
	s.cum = cum
	s.total = total
	s.rebuilds++
	return nil
}

// sameWeights reports whether the weight sequence is bit-identical to the
// cached one.
func (s *Sampler) sameWeights(weights []float64) bool {
	if s.cum == nil || len(weights) != len(s.weights) {
		return false
	}
	for i, w := range weights {
		if math.Float64bits(w) != math.Float64bits(s.weights[i]) {
			return false
		}
	}
	return true
}
