package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"gollh/domain/core"
	"gollh/domain/run"
	"gollh/domain/trial"
	"gollh/internal/summary"
	"gollh/ports"
)

// EngineFactory builds one worker's private trial engine: a configured
// multi-dataset generator and the test statistic evaluated on its trials.
// Every worker gets its own engine because samplers and trial-data caches
// must never be shared across concurrent trials.
type EngineFactory func(workerRNG *rand.Rand) (*trial.MultiDatasetGenerator, ports.TestStatistic, error)

// SweepRequest defines one deterministic trial sweep.
type SweepRequest struct {
	SweepID    core.SweepID // optional, generated when empty
	Trials     int
	Workers    int // defaults to 4
	Seed       int64
	InjectedNS float64

	// Metadata recorded with the summary.
	NumDatasets int
	NumSources  int

	NewEngine EngineFactory
}

// SweepResult carries the persisted summary plus the raw test-statistic
// distribution for callers that want the full empirical reference.
type SweepResult struct {
	Summary  *run.SweepSummary
	TSValues []float64
}

// TrialSweepService runs batches of independent pseudo-experiments. The
// parallelism unit is one trial; workers never share generators, samplers or
// trial contexts, only the read-only configuration.
type TrialSweepService struct {
	rngPort ports.RNGPort
	repo    ports.SweepResultRepository // optional
}

// NewTrialSweepService creates a sweep service. repo may be nil when results
// are not persisted.
func NewTrialSweepService(rngPort ports.RNGPort, repo ports.SweepResultRepository) *TrialSweepService {
	return &TrialSweepService{rngPort: rngPort, repo: repo}
}

// Run executes the sweep. Cancellation is expressed as "do not schedule the
// next trial": a trial in progress always completes.
func (s *TrialSweepService) Run(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if req.Trials <= 0 {
		return nil, fmt.Errorf("%w: sweep needs a positive trial count", core.ErrNotConfigured)
	}
	if req.NewEngine == nil {
		return nil, fmt.Errorf("%w: sweep needs an engine factory", core.ErrNotConfigured)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > req.Trials {
		workers = req.Trials
	}
	sweepID := req.SweepID
	if sweepID == "" {
		sweepID = core.SweepID(core.NewID())
	}

	log.Printf("[TrialSweep] Starting sweep %s: %d trials on %d workers, seed %d",
		sweepID, req.Trials, workers, req.Seed)
	started := time.Now()

	type workerOutput struct {
		ts     []float64
		events int
	}
	outputs := make([]workerOutput, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		worker := w
		share := req.Trials / workers
		if worker < req.Trials%workers {
			share++
		}
		g.Go(func() error {
			workerRNG, err := s.rngPort.Stream(gctx, sweepID.String(), worker, req.Seed)
			if err != nil {
				return fmt.Errorf("worker %d rng: %w", worker, err)
			}
			generator, statistic, err := req.NewEngine(workerRNG)
			if err != nil {
				return fmt.Errorf("worker %d engine: %w", worker, err)
			}

			out := workerOutput{ts: make([]float64, 0, share)}
			for i := 0; i < share; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				t, err := generator.GenerateTrial()
				if err != nil {
					return fmt.Errorf("worker %d trial %d: %w", worker, i, err)
				}
				value, err := statistic.Evaluate(t)
				if err != nil {
					return fmt.Errorf("worker %d trial %d statistic: %w", worker, i, err)
				}
				out.ts = append(out.ts, value)
				out.events += t.TotalEvents()
			}
			outputs[worker] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tsValues []float64
	totalEvents := 0
	for _, out := range outputs {
		tsValues = append(tsValues, out.ts...)
		totalEvents += out.events
	}

	tsStats, err := summary.Summarize(tsValues)
	if err != nil {
		return nil, fmt.Errorf("summarizing sweep %s: %w", sweepID, err)
	}

	result := &SweepResult{
		TSValues: tsValues,
		Summary: &run.SweepSummary{
			SweepID:     sweepID,
			Seed:        req.Seed,
			NumTrials:   len(tsValues),
			NumDatasets: req.NumDatasets,
			NumSources:  req.NumSources,
			InjectedNS:  req.InjectedNS,
			MeanEvents:  float64(totalEvents) / float64(len(tsValues)),
			TS:          tsStats,
			RuntimeMs:   time.Since(started).Milliseconds(),
			CreatedAt:   core.Now(),
		},
	}

	if s.repo != nil {
		if err := s.repo.SaveSweep(ctx, result.Summary); err != nil {
			return nil, fmt.Errorf("persisting sweep %s: %w", sweepID, err)
		}
	}

	log.Printf("[TrialSweep] Finished sweep %s: %d trials, TS median %.4f, %d ms",
		sweepID, result.Summary.NumTrials, tsStats.Median, result.Summary.RuntimeMs)
	return result, nil
}
