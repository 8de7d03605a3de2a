package app

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gollh/adapters/memory"
	seededrng "gollh/adapters/rng"
	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/trial"
	"gollh/ports"
)

// countingStatistic returns the trial's event count as the statistic, which
// makes the summary arithmetic easy to verify.
type countingStatistic struct{}

func (countingStatistic) Evaluate(t *trial.Trial) (float64, error) {
	return float64(t.TotalEvents()), nil
}

func testEngineFactory(t *testing.T, mean float64) EngineFactory {
	t.Helper()
	pool := events.NewSample(100)
	col := make([]float64, 100)
	for i := range col {
		col[i] = float64(i)
	}
	require.NoError(t, pool.SetColumn("ra", col))

	return func(workerRNG *rand.Rand) (*trial.MultiDatasetGenerator, ports.TestStatistic, error) {
		bg, err := trial.NewBackgroundGenerator(trial.BackgroundConfig{Mean: mean},
			pool, workerRNG)
		if err != nil {
			return nil, nil, err
		}
		gen := trial.NewMultiDatasetGenerator()
		if err := gen.Configure([]trial.DatasetConfig{{Name: "t", Background: bg}}); err != nil {
			return nil, nil, err
		}
		return gen, countingStatistic{}, nil
	}
}

func TestTrialSweepService_Run(t *testing.T) {
	repo := memory.NewSweepRepository()
	service := NewTrialSweepService(seededrng.New(), repo)

	result, err := service.Run(context.Background(), SweepRequest{
		SweepID:     "sweep-test",
		Trials:      50,
		Workers:     4,
		Seed:        7,
		NumDatasets: 1,
		NumSources:  0,
		NewEngine:   testEngineFactory(t, 20),
	})
	require.NoError(t, err)

	assert.Len(t, result.TSValues, 50)
	assert.Equal(t, 50, result.Summary.NumTrials)
	// Every trial draws exactly 20 events with a non-Poisson mean.
	assert.Equal(t, 20.0, result.Summary.TS.Mean)
	assert.Equal(t, 20.0, result.Summary.MeanEvents)
	assert.Equal(t, core.SweepID("sweep-test"), result.Summary.SweepID)
	assert.False(t, result.Summary.CreatedAt.IsZero())

	// The summary landed in the repository.
	stored, err := repo.GetSweep(context.Background(), "sweep-test")
	require.NoError(t, err)
	assert.Equal(t, 50, stored.NumTrials)
}

func TestTrialSweepService_Deterministic(t *testing.T) {
	service := NewTrialSweepService(seededrng.New(), nil)
	req := SweepRequest{
		SweepID:   "sweep-det",
		Trials:    20,
		Workers:   2,
		Seed:      11,
		NewEngine: testEngineFactory(t, 15),
	}

	a, err := service.Run(context.Background(), req)
	require.NoError(t, err)
	b, err := service.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a.TSValues, b.TSValues,
		"same sweep ID and seed must reproduce the trial sequence")
}

func TestTrialSweepService_Validation(t *testing.T) {
	service := NewTrialSweepService(seededrng.New(), nil)

	_, err := service.Run(context.Background(), SweepRequest{Trials: 0})
	assert.ErrorIs(t, err, core.ErrNotConfigured)

	_, err = service.Run(context.Background(), SweepRequest{Trials: 10})
	assert.ErrorIs(t, err, core.ErrNotConfigured)
}

func TestTrialSweepService_WorkersCappedByTrials(t *testing.T) {
	service := NewTrialSweepService(seededrng.New(), nil)

	result, err := service.Run(context.Background(), SweepRequest{
		SweepID:   "sweep-small",
		Trials:    3,
		Workers:   16,
		Seed:      1,
		NewEngine: testEngineFactory(t, 5),
	})
	require.NoError(t, err)
	assert.Len(t, result.TSValues, 3)
}

func TestTrialSweepService_Cancellation(t *testing.T) {
	service := NewTrialSweepService(seededrng.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Run(ctx, SweepRequest{
		SweepID:   "sweep-cancelled",
		Trials:    100000,
		Workers:   2,
		Seed:      1,
		NewEngine: testEngineFactory(t, 5),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
