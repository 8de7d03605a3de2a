package trial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/domain/core"
	"gollh/domain/events"
)

func monteCarloSample(t *testing.T, n int) *events.Sample {
	t.Helper()
	rng := rand.New(rand.NewSource(2))
	energy := make([]float64, n)
	weight := make([]float64, n)
	for i := 0; i < n; i++ {
		energy[i] = 100 + rng.Float64()*1000
		weight[i] = rng.Float64()
	}
	mc := events.NewSample(n)
	require.NoError(t, mc.SetColumn("energy", energy))
	require.NoError(t, mc.SetColumn("mc_weight", weight))
	return mc
}

func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestSignalGenerator_OriginsPerSource(t *testing.T) {
	mc := monteCarloSample(t, 200)
	gen, err := NewSignalGenerator(SignalConfig{}, mc,
		[][]float64{uniformWeights(200), uniformWeights(200)},
		rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	require.Equal(t, 2, gen.NumSources())

	sample, origins, err := gen.Generate([]float64{5, 3})
	require.NoError(t, err)
	assert.Equal(t, 8, sample.Len())
	require.Len(t, origins, 8)

	counts := map[int]int{}
	for _, o := range origins {
		counts[o]++
	}
	assert.Equal(t, 5, counts[0])
	assert.Equal(t, 3, counts[1])
}

func TestSignalGenerator_ZeroMeans(t *testing.T) {
	mc := monteCarloSample(t, 50)
	gen, err := NewSignalGenerator(SignalConfig{}, mc,
		[][]float64{uniformWeights(50)}, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	sample, origins, err := gen.Generate([]float64{0})
	require.NoError(t, err)
	assert.Equal(t, 0, sample.Len())
	assert.Empty(t, origins)
}

func TestSignalGenerator_WeightedDrawsFavorHeavyEvents(t *testing.T) {
	mc := monteCarloSample(t, 3)
	weights := []float64{0, 0, 1}
	gen, err := NewSignalGenerator(SignalConfig{}, mc, [][]float64{weights},
		rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	_, origins, err := gen.Generate([]float64{20})
	require.NoError(t, err)
	assert.Len(t, origins, 20)
}

func TestSignalGenerator_Validation(t *testing.T) {
	mc := monteCarloSample(t, 10)
	rng := rand.New(rand.NewSource(1))

	t.Run("empty MC", func(t *testing.T) {
		_, err := NewSignalGenerator(SignalConfig{}, events.NewSample(0), nil, rng)
		assert.ErrorIs(t, err, core.ErrEmptyDistribution)
	})

	t.Run("weight length mismatch", func(t *testing.T) {
		_, err := NewSignalGenerator(SignalConfig{}, mc, [][]float64{uniformWeights(5)}, rng)
		assert.ErrorIs(t, err, core.ErrLengthMismatch)
	})

	t.Run("means length mismatch", func(t *testing.T) {
		gen, err := NewSignalGenerator(SignalConfig{}, mc, [][]float64{uniformWeights(10)}, rng)
		require.NoError(t, err)
		_, _, err = gen.Generate([]float64{1, 2})
		assert.ErrorIs(t, err, core.ErrLengthMismatch)
	})

	t.Run("negative mean", func(t *testing.T) {
		gen, err := NewSignalGenerator(SignalConfig{}, mc, [][]float64{uniformWeights(10)}, rng)
		require.NoError(t, err)
		_, _, err = gen.Generate([]float64{-1})
		assert.ErrorIs(t, err, core.ErrInvalidBounds)
	})
}

func TestSignalGenerator_SetSourceWeights(t *testing.T) {
	mc := monteCarloSample(t, 10)
	gen, err := NewSignalGenerator(SignalConfig{}, mc, [][]float64{uniformWeights(10)},
		rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.NoError(t, gen.SetSourceWeights(0, uniformWeights(10)))
	assert.Error(t, gen.SetSourceWeights(1, uniformWeights(10)))
	assert.ErrorIs(t, gen.SetSourceWeights(0, uniformWeights(4)), core.ErrLengthMismatch)
}
