package trial

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/sampling"
)

// randSource adapts math/rand to the source interface gonum's distributions
// draw from.
type randSource struct {
	r *rand.Rand
}

func (s randSource) Uint64() uint64 { return s.r.Uint64() }

// BackgroundConfig controls how one dataset's background sample is drawn.
type BackgroundConfig struct {
	// Mean is the expected background event count.
	Mean float64

	// Poisson draws the count from Poisson(Mean) instead of using the
	// rounded mean directly.
	Poisson bool

	// MeanAdjustment is added to Mean before drawing, for analyses that
	// scale the background expectation by a signal-dependent term.
	MeanAdjustment float64

	// WeightField names the per-event background weight column. Empty means
	// uniform weights over the pool.
	WeightField events.Field

	// WithoutReplacement draws each pool event at most once, for
	// permutation-style scrambling.
	WithoutReplacement bool

	// ScrambleField, when set, is overwritten per trial with uniform draws
	// in [0, 2 pi), destroying true correlations in that angular
	// coordinate while preserving all other per-event statistics.
	ScrambleField events.Field
}

// BackgroundGenerator synthesizes one dataset's background sample per trial
// by weighted draws from a fixed background pool.
type BackgroundGenerator struct {
	cfg     BackgroundConfig
	pool    *events.Sample
	weights []float64
	sampler *sampling.Sampler
	rng     *rand.Rand
}

// NewBackgroundGenerator validates the configuration against the pool. All
// misconfiguration surfaces here, before the first trial.
func NewBackgroundGenerator(cfg BackgroundConfig, pool *events.Sample, rng *rand.Rand) (*BackgroundGenerator, error) {
	if pool == nil || pool.Len() == 0 {
		return nil, fmt.Errorf("background pool: %w", core.ErrEmptyDistribution)
	}
	if cfg.Mean+cfg.MeanAdjustment < 0 {
		return nil, fmt.Errorf("%w: negative background mean %g",
			core.ErrInvalidBounds, cfg.Mean+cfg.MeanAdjustment)
	}

	var weights []float64
	if cfg.WeightField != "" {
		col, ok := pool.Column(cfg.WeightField)
		if !ok {
			return nil, core.NewMissingFieldError(string(cfg.WeightField))
		}
		weights = col
	} else {
		weights = make([]float64, pool.Len())
		for i := range weights {
			weights[i] = 1
		}
	}
	if cfg.ScrambleField != "" {
		if _, ok := pool.Column(cfg.ScrambleField); !ok {
			return nil, core.NewMissingFieldError(string(cfg.ScrambleField))
		}
	}

	return &BackgroundGenerator{
		cfg:     cfg,
		pool:    pool,
		weights: weights,
		sampler: sampling.New(rng),
		rng:     rng,
	}, nil
}

// Generate synthesizes one trial's background sample. Repeated calls reuse
// the sampler's cumulative cache since the pool weights never change.
func (g *BackgroundGenerator) Generate() (*events.Sample, error) {
	count := g.drawCount()

	var indices []int
	var err error
	if g.cfg.WithoutReplacement {
		if count > g.pool.Len() {
			count = g.pool.Len()
		}
		indices, err = g.sampler.DrawWithoutReplacement(g.weights, count)
	} else {
		indices, err = g.sampler.Draw(g.weights, count)
	}
	if err != nil {
		return nil, fmt.Errorf("background draw: %w", err)
	}

	sample, err := g.pool.Take(indices)
	if err != nil {
		return nil, fmt.Errorf("background take: %w", err)
	}

	if g.cfg.ScrambleField != "" && sample.Len() > 0 {
		scrambled := make([]float64, sample.Len())
		for i := range scrambled {
			scrambled[i] = g.rng.Float64() * 2 * math.Pi
		}
		if err := sample.SetColumn(g.cfg.ScrambleField, scrambled); err != nil {
			return nil, err
		}
	}
	return sample, nil
}

func (g *BackgroundGenerator) drawCount() int {
	mean := g.cfg.Mean + g.cfg.MeanAdjustment
	if !g.cfg.Poisson {
		return int(math.Round(mean))
	}
	if mean == 0 {
		return 0
	}
	poisson := distuv.Poisson{Lambda: mean, Src: randSource{g.rng}}
	return int(poisson.Rand())
}
