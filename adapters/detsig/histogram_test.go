package detsig

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
	"gollh/domain/source"
)

func mcSample(t *testing.T, n int) *events.Sample {
	t.Helper()
	rng := rand.New(rand.NewSource(6))
	energy := make([]float64, n)
	dec := make([]float64, n)
	weight := make([]float64, n)
	for i := 0; i < n; i++ {
		// Energies spanning several decades on a log-uniform grid.
		energy[i] = math.Pow(10, 2+5*rng.Float64())
		dec[i] = math.Asin(2*rng.Float64() - 1)
		weight[i] = rng.Float64() * 1e-3
	}
	mc := events.NewSample(n)
	require.NoError(t, mc.SetColumn("energy", energy))
	require.NoError(t, mc.SetColumn("dec", dec))
	require.NoError(t, mc.SetColumn("mc_weight", weight))
	return mc
}

var testGrid = []float64{1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0}

func TestNewBuilder_Validation(t *testing.T) {
	mc := mcSample(t, 100)

	_, err := NewBuilder(events.NewSample(0), 365, testGrid, 10)
	assert.ErrorIs(t, err, core.ErrEmptyDistribution)

	_, err = NewBuilder(mc, 365, []float64{2.0}, 10)
	assert.ErrorIs(t, err, core.ErrInvalidBounds)

	_, err = NewBuilder(mc, 365, []float64{2.0, 1.0}, 10)
	assert.ErrorIs(t, err, core.ErrInvalidBounds)

	_, err = NewBuilder(mc, 365, testGrid, 0)
	assert.ErrorIs(t, err, core.ErrInvalidBounds)

	noWeight := events.NewSample(1)
	require.NoError(t, noWeight.SetColumn("energy", []float64{100}))
	require.NoError(t, noWeight.SetColumn("dec", []float64{0}))
	_, err = NewBuilder(noWeight, 365, testGrid, 10)
	assert.ErrorIs(t, err, core.ErrMissingField)
}

func TestBuilder_RejectsUnknownFlux(t *testing.T) {
	b, err := NewBuilder(mcSample(t, 100), 365, testGrid, 10)
	require.NoError(t, err)

	_, err = b.Build(fakeFlux{})
	assert.Error(t, err)
}

type fakeFlux struct{}

func (fakeFlux) Flux(energy float64) float64 { return 1 }

func TestYield_Mean(t *testing.T) {
	b, err := NewBuilder(mcSample(t, 5000), 365, testGrid, 10)
	require.NoError(t, err)

	flux := source.NewPowerLaw(1e-18, 2.0, 1e3)
	yield, err := b.Build(flux)
	require.NoError(t, err)

	src := source.NewPointSource("s", 1.0, 0.3)

	t.Run("positive and scales with flux norm", func(t *testing.T) {
		mean, grads, err := yield.Mean(src, params.LocalParams{})
		require.NoError(t, err)
		assert.Greater(t, mean, 0.0)
		assert.Nil(t, grads, "no gamma in the local record means no gradient")

		doubled, err := b.Build(source.NewPowerLaw(2e-18, 2.0, 1e3))
		require.NoError(t, err)
		mean2, _, err := doubled.Mean(src, params.LocalParams{})
		require.NoError(t, err)
		assert.InDelta(t, 2*mean, mean2, mean*1e-9)
	})

	t.Run("gamma override with gradient", func(t *testing.T) {
		for _, gamma := range []float64{1.7, 2.3, 3.1} {
			mean, grads, err := yield.Mean(src, params.LocalParams{"gamma": gamma})
			require.NoError(t, err)
			require.Contains(t, grads, "gamma")
			assert.Greater(t, mean, 0.0)

			const h = 1e-5
			lo, _, err := yield.Mean(src, params.LocalParams{"gamma": gamma - h})
			require.NoError(t, err)
			hi, _, err := yield.Mean(src, params.LocalParams{"gamma": gamma + h})
			require.NoError(t, err)
			fd := (hi - lo) / (2 * h)
			assert.InDelta(t, fd, grads["gamma"], math.Abs(fd)*1e-3+1e-12, "gamma=%g", gamma)
		}
	})

	t.Run("softer spectrum upweights events below the pivot", func(t *testing.T) {
		// With the pivot above the sample threshold, a softer index piles
		// expectation onto the low-energy events.
		hard, _, err := yield.Mean(src, params.LocalParams{"gamma": 1.5})
		require.NoError(t, err)
		soft, _, err := yield.Mean(src, params.LocalParams{"gamma": 3.5})
		require.NoError(t, err)
		assert.Greater(t, soft, hard)
	})

	t.Run("outside the grid clamps to the edge", func(t *testing.T) {
		edge, _, err := yield.Mean(src, params.LocalParams{"gamma": 4.0})
		require.NoError(t, err)
		beyond, grads, err := yield.Mean(src, params.LocalParams{"gamma": 5.0})
		require.NoError(t, err)
		// Only the E0^gamma prefactor changes past the grid edge.
		assert.InDelta(t, edge*math.Pow(1e3, 1.0), beyond, edge*math.Pow(1e3, 1.0)*1e-9)
		require.Contains(t, grads, "gamma")
	})
}

func TestBuilder_SharedTables(t *testing.T) {
	b, err := NewBuilder(mcSample(t, 1000), 365, testGrid, 10)
	require.NoError(t, err)

	// Many yields share the builder's tables; each carries its own flux.
	y1, err := b.Build(source.NewPowerLaw(1e-18, 2.0, 1e3))
	require.NoError(t, err)
	y2, err := b.Build(source.NewPowerLaw(1e-18, 2.7, 1e3))
	require.NoError(t, err)

	src := source.NewPointSource("s", 0.5, -0.4)
	m1, _, err := y1.Mean(src, params.LocalParams{})
	require.NoError(t, err)
	m2, _, err := y2.Mean(src, params.LocalParams{})
	require.NoError(t, err)
	assert.NotEqual(t, m1, m2)
}
