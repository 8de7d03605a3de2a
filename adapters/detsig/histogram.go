package detsig

import (
	"fmt"
	"math"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
	"gollh/domain/source"
	"gollh/domain/trial"
	"gollh/ports"
)

var _ ports.YieldBuilder = (*Builder)(nil)

// secondsPerDay converts the livetime in days into seconds, matching the
// units of a differential flux.
const secondsPerDay = 86400.0

// Builder constructs detector signal yields for power-law flux models from a
// Monte Carlo sample. The expensive part - binning the MC events in
// declination and summing the per-event weights against a spectral-index
// grid - happens once at construction and is shared by every yield the
// builder hands out, so building yields for many flux models never rebuilds
// the histograms.
type Builder struct {
	EnergyField events.Field
	DecField    events.Field
	WeightField events.Field

	livetime  float64 // days
	gammaGrid []float64
	decEdges  []float64
	// sums[bin][g] = sum over MC events in the declination bin of
	// mcWeight * energy^-gammaGrid[g].
	sums [][]float64
}

// NewBuilder precomputes the shared declination/spectral tables from the MC
// sample. gammaGrid must be strictly ascending.
func NewBuilder(mc *events.Sample, livetime float64, gammaGrid []float64, decBins int) (*Builder, error) {
	b := &Builder{
		EnergyField: "energy",
		DecField:    "dec",
		WeightField: "mc_weight",
		livetime:    livetime,
		gammaGrid:   gammaGrid,
	}
	if mc == nil || mc.Len() == 0 {
		return nil, fmt.Errorf("yield builder MC sample: %w", core.ErrEmptyDistribution)
	}
	if len(gammaGrid) < 2 {
		return nil, fmt.Errorf("%w: gamma grid needs at least 2 points", core.ErrInvalidBounds)
	}
	for i := 1; i < len(gammaGrid); i++ {
		if gammaGrid[i] <= gammaGrid[i-1] {
			return nil, fmt.Errorf("%w: gamma grid must be ascending", core.ErrInvalidBounds)
		}
	}
	if decBins < 1 {
		return nil, fmt.Errorf("%w: need at least one declination bin", core.ErrInvalidBounds)
	}

	energy, ok := mc.Column(b.EnergyField)
	if !ok {
		return nil, core.NewMissingFieldError(string(b.EnergyField))
	}
	dec, ok := mc.Column(b.DecField)
	if !ok {
		return nil, core.NewMissingFieldError(string(b.DecField))
	}
	weight, ok := mc.Column(b.WeightField)
	if !ok {
		return nil, core.NewMissingFieldError(string(b.WeightField))
	}

	b.decEdges = make([]float64, decBins+1)
	for i := range b.decEdges {
		b.decEdges[i] = -math.Pi/2 + math.Pi*float64(i)/float64(decBins)
	}
	b.sums = make([][]float64, decBins)
	for i := range b.sums {
		b.sums[i] = make([]float64, len(gammaGrid))
	}

	for ev := 0; ev < mc.Len(); ev++ {
		if energy[ev] <= 0 || weight[ev] <= 0 {
			continue
		}
		bin := b.decBin(dec[ev])
		logE := math.Log(energy[ev])
		for g, gamma := range b.gammaGrid {
			b.sums[bin][g] += weight[ev] * math.Exp(-gamma*logE)
		}
	}
	return b, nil
}

func (b *Builder) decBin(dec float64) int {
	bins := len(b.sums)
	bin := int((dec + math.Pi/2) / math.Pi * float64(bins))
	if bin < 0 {
		bin = 0
	}
	if bin >= bins {
		bin = bins - 1
	}
	return bin
}

// Build returns a yield for one flux model. Only power-law fluxes are
// supported by this builder; the shared tables are spanned by the spectral
// index alone.
func (b *Builder) Build(flux source.FluxModel) (trial.DetSigYield, error) {
	pl, ok := flux.(source.PowerLaw)
	if !ok {
		return nil, fmt.Errorf("histogram yield builder supports power-law fluxes, got %T", flux)
	}
	return &histogramYield{builder: b, flux: pl}, nil
}

// histogramYield is a cheap view over the builder's shared tables for one
// power-law flux model.
type histogramYield struct {
	builder *Builder
	flux    source.PowerLaw
}

// Mean evaluates the expected signal count for the source. When the local
// record carries a "gamma" parameter it overrides the flux model's spectral
// index and the yield reports d mean / d gamma.
func (y *histogramYield) Mean(src source.Hypothesis, local params.LocalParams) (float64, map[string]float64, error) {
	gamma := y.flux.Gamma
	fitGamma := false
	if g, ok := local["gamma"]; ok {
		gamma = g
		fitGamma = true
	}

	b := y.builder
	sum, dSum := b.interp(b.decBin(src.Dec), gamma)

	// yield = livetime * Phi0 * E0^gamma * sum(w * E^-gamma)
	scale := y.flux.Phi0 * b.livetime * secondsPerDay
	e0g := math.Pow(y.flux.E0, gamma)
	mean := scale * e0g * sum
	if mean < 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		mean = 0
	}

	if !fitGamma {
		return mean, nil, nil
	}
	grad := scale * (math.Log(y.flux.E0)*e0g*sum + e0g*dSum)
	return mean, map[string]float64{"gamma": grad}, nil
}

// interp linearly interpolates ln(sum) on the spectral grid and returns the
// sum and its derivative with respect to gamma. Outside the grid the edge
// value is used with zero slope.
func (b *Builder) interp(bin int, gamma float64) (sum, dSum float64) {
	grid := b.gammaGrid
	row := b.sums[bin]

	if gamma <= grid[0] {
		return row[0], 0
	}
	last := len(grid) - 1
	if gamma >= grid[last] {
		return row[last], 0
	}

	hi := 1
	for grid[hi] < gamma {
		hi++
	}
	lo := hi - 1
	if row[lo] <= 0 || row[hi] <= 0 {
		// Empty bin: fall back to linear interpolation.
		t := (gamma - grid[lo]) / (grid[hi] - grid[lo])
		sum = (1-t)*row[lo] + t*row[hi]
		dSum = (row[hi] - row[lo]) / (grid[hi] - grid[lo])
		return sum, dSum
	}
	slope := (math.Log(row[hi]) - math.Log(row[lo])) / (grid[hi] - grid[lo])
	sum = row[lo] * math.Exp(slope*(gamma-grid[lo]))
	dSum = sum * slope
	return sum, dSum
}
