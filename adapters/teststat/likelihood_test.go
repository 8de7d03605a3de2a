package teststat

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/adapters/selector"
	"gollh/domain/events"
	"gollh/domain/params"
	"gollh/domain/pdf"
	"gollh/domain/source"
	"gollh/domain/trial"
)

func fixtureCatalog() source.Catalog {
	return source.Catalog{source.NewPointSource("s", 1.0, 0.3)}
}

func fixtureStatistic(t *testing.T) *LikelihoodRatio {
	t.Helper()
	catalog := fixtureCatalog()

	set, err := params.NewSet(params.NewFitParameter("gamma", 2.0, 1.0, 4.0).Broadcast())
	require.NoError(t, err)
	mapper, err := params.NewModelMapper(set, []params.SourceMapping{
		{Requires: []string{"gamma"}},
	})
	require.NoError(t, err)

	manager := trial.NewDataManager(selector.AllEventsSelector{}, catalog,
		events.Schema{"ra", "dec", "ang_err", "energy"})

	signal := pdf.Product(
		pdf.NewGaussianSpatialPDF(catalog),
		pdf.NewPowerLawEnergyPDF(100, 1e6),
	)
	background := pdf.Product(
		pdf.UniformSpherePDF{},
		pdf.NewPowerLawEnergyPDF(100, 1e6),
	)

	ts := NewLikelihoodRatio(manager, mapper, signal, background)
	ts.BackgroundParams = params.LocalParams{"gamma": 3.7}
	return ts
}

// scatteredTrial builds a synthetic trial: nBg isotropic events plus nSig
// events clustered hard on the source.
func scatteredTrial(t *testing.T, nBg, nSig int) *trial.Trial {
	t.Helper()
	rng := rand.New(rand.NewSource(8))
	src := fixtureCatalog()[0]

	n := nBg + nSig
	ra := make([]float64, n)
	dec := make([]float64, n)
	angErr := make([]float64, n)
	energy := make([]float64, n)
	origins := make([]int, n)
	for i := 0; i < nBg; i++ {
		ra[i] = rng.Float64() * 2 * math.Pi
		dec[i] = math.Asin(2*rng.Float64() - 1)
		angErr[i] = 0.02
		energy[i] = 150 + rng.Float64()*500
		origins[i] = trial.BackgroundOrigin
	}
	for i := nBg; i < n; i++ {
		ra[i] = src.RA + rng.NormFloat64()*0.01
		dec[i] = src.Dec + rng.NormFloat64()*0.01
		angErr[i] = 0.02
		energy[i] = 1e4 + rng.Float64()*1e5
		origins[i] = 0
	}

	sample := events.NewSample(n)
	require.NoError(t, sample.SetColumn("ra", ra))
	require.NoError(t, sample.SetColumn("dec", dec))
	require.NoError(t, sample.SetColumn("ang_err", angErr))
	require.NoError(t, sample.SetColumn("energy", energy))

	return &trial.Trial{Datasets: []trial.DatasetTrial{
		{Name: "demo", Sample: sample, Origins: origins},
	}}
}

func TestLikelihoodRatio_SignalRaisesTS(t *testing.T) {
	ts := fixtureStatistic(t)

	nullTS, err := ts.Evaluate(scatteredTrial(t, 200, 0))
	require.NoError(t, err)

	signalTS, err := ts.Evaluate(scatteredTrial(t, 200, 20))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, nullTS, 0.0)
	assert.Greater(t, signalTS, nullTS,
		"a clustered injection must raise the test statistic")
	assert.Greater(t, signalTS, 10.0)
}

func TestLikelihoodRatio_EmptyDataset(t *testing.T) {
	ts := fixtureStatistic(t)

	empty := events.NewSample(0)
	for _, f := range []events.Field{"ra", "dec", "ang_err", "energy"} {
		require.NoError(t, empty.SetColumn(f, []float64{}))
	}
	value, err := ts.Evaluate(&trial.Trial{Datasets: []trial.DatasetTrial{
		{Name: "empty", Sample: empty, Origins: []int{}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestLikelihoodRatio_SchemaViolation(t *testing.T) {
	ts := fixtureStatistic(t)

	bad := events.NewSample(1)
	require.NoError(t, bad.SetColumn("ra", []float64{1}))
	_, err := ts.Evaluate(&trial.Trial{Datasets: []trial.DatasetTrial{
		{Name: "bad", Sample: bad},
	}})
	assert.Error(t, err)
}

func TestLikelihoodRatio_Deterministic(t *testing.T) {
	ts := fixtureStatistic(t)
	tr := scatteredTrial(t, 100, 10)

	a, err := ts.Evaluate(tr)
	require.NoError(t, err)
	b, err := ts.Evaluate(tr)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
