package trial

import (
	"fmt"

	"gollh/domain/core"
	"gollh/domain/events"
)

// DatasetConfig wires one dataset's generators into a multi-dataset trial.
// Signal may be nil for background-only datasets; SignalMeans then stays
// empty.
type DatasetConfig struct {
	Name        string
	Background  *BackgroundGenerator
	Signal      *SignalGenerator
	SignalMeans []float64
}

// DatasetTrial is one dataset's synthesized sample within a trial, with the
// originating source per event (BackgroundOrigin for background draws).
type DatasetTrial struct {
	Name    string
	Sample  *events.Sample
	Origins []int
}

// Trial is one full pseudo-experiment: the union of all per-dataset
// synthesized samples. Trials are ephemeral, rebuilt per repetition, never
// persisted by the core.
type Trial struct {
	Datasets []DatasetTrial
}

// TotalEvents counts events across all datasets.
func (t *Trial) TotalEvents() int {
	total := 0
	for _, ds := range t.Datasets {
		total += ds.Sample.Len()
	}
	return total
}

// MultiDatasetGenerator composes one background generator and zero-or-more
// signal injections per dataset into a combined dataset-of-datasets trial.
//
// Lifecycle: Idle until Configure succeeds, then Ready; GenerateTrial is
// re-entrant and may be called an unbounded number of times. No state leaks
// across calls beyond the samplers' legitimate weight caches.
type MultiDatasetGenerator struct {
	datasets   []DatasetConfig
	configured bool
}

// NewMultiDatasetGenerator creates a generator in the Idle state.
func NewMultiDatasetGenerator() *MultiDatasetGenerator {
	return &MultiDatasetGenerator{}
}

// Configure validates the dataset wiring and moves the generator to Ready.
func (g *MultiDatasetGenerator) Configure(datasets []DatasetConfig) error {
	if len(datasets) == 0 {
		return fmt.Errorf("%w: no datasets", core.ErrNotConfigured)
	}
	for i, ds := range datasets {
		if ds.Background == nil {
			return fmt.Errorf("%w: dataset %d (%q) has no background generator",
				core.ErrNotConfigured, i, ds.Name)
		}
		if ds.Signal != nil && len(ds.SignalMeans) != ds.Signal.NumSources() {
			return fmt.Errorf("%w: dataset %d (%q) has %d signal means for %d sources",
				core.ErrLengthMismatch, i, ds.Name, len(ds.SignalMeans), ds.Signal.NumSources())
		}
	}
	g.datasets = datasets
	g.configured = true
	return nil
}

// SetSignalMeans replaces a dataset's expected per-source signal counts,
// e.g. when scanning injected signal strengths across trial batches.
func (g *MultiDatasetGenerator) SetSignalMeans(dataset int, means []float64) error {
	if !g.configured {
		return core.ErrNotConfigured
	}
	if dataset < 0 || dataset >= len(g.datasets) {
		return fmt.Errorf("dataset index %d out of range [0,%d)", dataset, len(g.datasets))
	}
	ds := &g.datasets[dataset]
	if ds.Signal == nil {
		return fmt.Errorf("%w: dataset %d has no signal generator", core.ErrNotConfigured, dataset)
	}
	if len(means) != ds.Signal.NumSources() {
		return fmt.Errorf("%w: %d means for %d sources",
			core.ErrLengthMismatch, len(means), ds.Signal.NumSources())
	}
	ds.SignalMeans = means
	return nil
}

// GenerateTrial synthesizes one full pseudo-experiment. A failed draw
// abandons the trial with the sampling error; the caller decides whether to
// retry, since the core cannot distinguish a legitimately empty result from
// a failure without caller context.
func (g *MultiDatasetGenerator) GenerateTrial() (*Trial, error) {
	if !g.configured {
		return nil, core.ErrNotConfigured
	}

	out := &Trial{Datasets: make([]DatasetTrial, len(g.datasets))}
	for i, ds := range g.datasets {
		bgSample, err := ds.Background.Generate()
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", ds.Name, err)
		}
		origins := make([]int, bgSample.Len())
		for j := range origins {
			origins[j] = BackgroundOrigin
		}

		sample := bgSample
		if ds.Signal != nil {
			sigSample, sigOrigins, err := ds.Signal.Generate(ds.SignalMeans)
			if err != nil {
				return nil, fmt.Errorf("dataset %q: %w", ds.Name, err)
			}
			merged, err := events.Append(bgSample, sigSample)
			if err != nil {
				return nil, fmt.Errorf("dataset %q: merging signal: %w", ds.Name, err)
			}
			sample = merged
			origins = append(origins, sigOrigins...)
		}

		out.Datasets[i] = DatasetTrial{Name: ds.Name, Sample: sample, Origins: origins}
	}
	return out, nil
}
