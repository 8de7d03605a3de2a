package teststat

import (
	"fmt"
	"math"

	"gollh/domain/params"
	"gollh/domain/pdf"
	"gollh/domain/trial"
	"gollh/ports"
)

// LikelihoodRatio is the classic one-parameter signal-strength scan:
//
//	TS = max over ns of 2 * sum_i ln(1 + ns/N * (S_i/B_i - 1))
//
// with per-event signal density S and background density B from the PDF
// evaluators, and the local parameter records held at the mapper's initial
// values. It is one pluggable choice behind ports.TestStatistic, not the
// prescribed formula.
type LikelihoodRatio struct {
	manager    *trial.DataManager
	mapper     *params.ModelMapper
	signal     pdf.Evaluator
	background pdf.Evaluator

	// NSMax bounds the scanned signal strength; NSSteps sets the grid
	// resolution.
	NSMax   float64
	NSSteps int

	// BackgroundParams is the local record the background evaluator sees,
	// e.g. a fixed atmospheric spectral index. Empty by default.
	BackgroundParams params.LocalParams
}

// NewLikelihoodRatio wires the scan. The manager must be dedicated to this
// statistic: Evaluate rebuilds it per dataset, superseding earlier contexts.
func NewLikelihoodRatio(manager *trial.DataManager, mapper *params.ModelMapper, signal, background pdf.Evaluator) *LikelihoodRatio {
	return &LikelihoodRatio{
		manager:    manager,
		mapper:     mapper,
		signal:     signal,
		background: background,
		NSMax:      100,
		NSSteps:    200,
	}
}

// Evaluate reduces one pseudo-experiment to the summed scan maximum across
// datasets.
func (ts *LikelihoodRatio) Evaluate(t *trial.Trial) (float64, error) {
	locals, err := ts.mapper.ToLocal(ts.mapper.Set().FitInitials())
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, ds := range t.Datasets {
		value, err := ts.evaluateDataset(ds, locals)
		if err != nil {
			return 0, fmt.Errorf("dataset %q: %w", ds.Name, err)
		}
		total += value
	}
	return total, nil
}

func (ts *LikelihoodRatio) evaluateDataset(ds trial.DatasetTrial, locals []params.LocalParams) (float64, error) {
	n := ds.Sample.Len()
	if n == 0 {
		return 0, nil
	}

	ctx, err := ts.manager.Rebuild(ds.Sample, ds.Origins)
	if err != nil {
		return 0, err
	}

	// Per-event signal density, summed over sources with equal source
	// weighting; events outside every source's selection keep S = 0.
	signal := make([]float64, n)
	numSources := ctx.NumSources()
	for src := 0; src < numSources; src++ {
		indices, err := ctx.SourceEvents(src)
		if err != nil {
			return 0, err
		}
		if len(indices) == 0 {
			continue
		}
		res, err := ts.signal.Evaluate(src, locals[src], ds.Sample, indices)
		if err != nil {
			return 0, err
		}
		for i, idx := range indices {
			signal[idx] += res.Densities[i] / float64(numSources)
		}
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	bgLocal := ts.BackgroundParams
	if bgLocal == nil {
		bgLocal = params.LocalParams{}
	}
	bgRes, err := ts.background.Evaluate(0, bgLocal, ds.Sample, all)
	if err != nil {
		return 0, err
	}

	// Scan the signal strength on a fixed grid.
	ratio := make([]float64, n)
	for i := 0; i < n; i++ {
		b := bgRes.Densities[i]
		if b <= 0 {
			b = 1e-300
		}
		ratio[i] = signal[i]/b - 1
	}

	best := 0.0
	for step := 1; step <= ts.NSSteps; step++ {
		ns := ts.NSMax * float64(step) / float64(ts.NSSteps)
		lambda := 0.0
		valid := true
		for i := 0; i < n; i++ {
			arg := 1 + ns/float64(n)*ratio[i]
			if arg <= 0 {
				valid = false
				break
			}
			lambda += math.Log(arg)
		}
		if valid && 2*lambda > best {
			best = 2 * lambda
		}
	}
	return best, nil
}

var _ ports.TestStatistic = (*LikelihoodRatio)(nil)
