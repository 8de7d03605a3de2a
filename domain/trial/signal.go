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

// SignalConfig controls how one dataset's signal events are drawn.
type SignalConfig struct {
	// Poisson draws each source's count from Poisson(mean) instead of
	// using the rounded mean directly.
	Poisson bool
}

// SignalGenerator synthesizes signal events for one dataset by weighted
// draws from the Monte Carlo sample. Each source carries its own MC weight
// sequence (detector acceptance times the source's current flux model), and
// its own sampler so the cumulative cache stays valid per weight
// configuration.
type SignalGenerator struct {
	cfg      SignalConfig
	mc       *events.Sample
	weights  [][]float64
	samplers []*sampling.Sampler
	rng      *rand.Rand
}

// NewSignalGenerator validates the per-source weight sequences against the
// MC sample. weights holds one sequence per source, each of MC length.
func NewSignalGenerator(cfg SignalConfig, mc *events.Sample, weights [][]float64, rng *rand.Rand) (*SignalGenerator, error) {
	if mc == nil || mc.Len() == 0 {
		return nil, fmt.Errorf("signal MC sample: %w", core.ErrEmptyDistribution)
	}
	samplers := make([]*sampling.Sampler, len(weights))
	for src, w := range weights {
		if len(w) != mc.Len() {
			return nil, fmt.Errorf("%w: source %d has %d weights for %d MC events",
				core.ErrLengthMismatch, src, len(w), mc.Len())
		}
		samplers[src] = sampling.New(rng)
	}
	return &SignalGenerator{
		cfg:      cfg,
		mc:       mc,
		weights:  weights,
		samplers: samplers,
		rng:      rng,
	}, nil
}

// NumSources returns the number of sources this generator injects for.
func (g *SignalGenerator) NumSources() int {
	return len(g.weights)
}

// SetSourceWeights replaces one source's MC weight sequence, e.g. after the
// source's flux-model parameters changed. The source's sampler cache
// invalidates itself on the next draw.
func (g *SignalGenerator) SetSourceWeights(src int, weights []float64) error {
	if src < 0 || src >= len(g.weights) {
		return fmt.Errorf("source index %d out of range [0,%d)", src, len(g.weights))
	}
	if len(weights) != g.mc.Len() {
		return fmt.Errorf("%w: %d weights for %d MC events",
			core.ErrLengthMismatch, len(weights), g.mc.Len())
	}
	g.weights[src] = weights
	return nil
}

// Generate draws signal events for every source. means holds the expected
// signal count per source. The returned origins record the generating source
// index per drawn event, needed to compute per-source signal contributions.
func (g *SignalGenerator) Generate(means []float64) (*events.Sample, []int, error) {
	if len(means) != len(g.weights) {
		return nil, nil, fmt.Errorf("%w: %d means for %d sources",
			core.ErrLengthMismatch, len(means), len(g.weights))
	}

	var indices []int
	var origins []int
	for src, mean := range means {
		if mean < 0 {
			return nil, nil, fmt.Errorf("%w: negative signal mean %g for source %d",
				core.ErrInvalidBounds, mean, src)
		}
		count := g.drawCount(mean)
		drawn, err := g.samplers[src].Draw(g.weights[src], count)
		if err != nil {
			return nil, nil, fmt.Errorf("signal draw for source %d: %w", src, err)
		}
		indices = append(indices, drawn...)
		for range drawn {
			origins = append(origins, src)
		}
	}

	sample, err := g.mc.Take(indices)
	if err != nil {
		return nil, nil, fmt.Errorf("signal take: %w", err)
	}
	return sample, origins, nil
}

func (g *SignalGenerator) drawCount(mean float64) int {
	if !g.cfg.Poisson {
		return int(math.Round(mean))
	}
	if mean == 0 {
		return 0
	}
	poisson := distuv.Poisson{Lambda: mean, Src: randSource{g.rng}}
	return int(poisson.Rand())
}
