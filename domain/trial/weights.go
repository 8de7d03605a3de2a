package trial

import (
	"fmt"

	"gollh/domain/core"
	"gollh/domain/params"
	"gollh/domain/source"
)

// DetSigYield gives the expected number of detected signal events for a
// source under its current local parameters, together with the partial
// derivatives with respect to the fit parameters the yield depends on, keyed
// by local parameter name. Yield construction from Monte Carlo histograms is
// external to the core.
type DetSigYield interface {
	Mean(src source.Hypothesis, local params.LocalParams) (float64, map[string]float64, error)
}

// YieldWeights computes the per-(dataset, source) signal yield weights
//
//	a[j][k] = sourceWeight_k * yield_jk(localParams_k)
//
// and from them the per-dataset signal weight factors f_j = sum_k a_jk / a.
type YieldWeights struct {
	sources source.Catalog
	yields  [][]DetSigYield // [dataset][source]
}

// NewYieldWeights validates the yield matrix shape against the catalog.
func NewYieldWeights(sources source.Catalog, yields [][]DetSigYield) (*YieldWeights, error) {
	if len(yields) == 0 {
		return nil, fmt.Errorf("%w: no datasets", core.ErrNotConfigured)
	}
	for j, row := range yields {
		if len(row) != len(sources) {
			return nil, fmt.Errorf("%w: dataset %d has %d yields for %d sources",
				core.ErrLengthMismatch, j, len(row), len(sources))
		}
	}
	return &YieldWeights{sources: sources, yields: yields}, nil
}

// NumDatasets returns the number of datasets the service was built with.
func (w *YieldWeights) NumDatasets() int {
	return len(w.yields)
}

// WeightTable holds one calculation's weights and their gradients keyed by
// local parameter name.
type WeightTable struct {
	AJK   [][]float64            // [dataset][source]
	Grads map[string][][]float64 // param -> [dataset][source]
}

// Calculate evaluates the weights for the current per-source local parameter
// records, one record per source.
func (w *YieldWeights) Calculate(locals []params.LocalParams) (*WeightTable, error) {
	if len(locals) != len(w.sources) {
		return nil, fmt.Errorf("%w: %d local records for %d sources",
			core.ErrLengthMismatch, len(locals), len(w.sources))
	}

	table := &WeightTable{
		AJK:   make([][]float64, len(w.yields)),
		Grads: make(map[string][][]float64),
	}
	for j, row := range w.yields {
		table.AJK[j] = make([]float64, len(w.sources))
		for k, yield := range row {
			mean, grads, err := yield.Mean(w.sources[k], locals[k])
			if err != nil {
				return nil, fmt.Errorf("yield for dataset %d source %d: %w", j, k, err)
			}
			table.AJK[j][k] = w.sources[k].Weight * mean
			for name, g := range grads {
				dst, ok := table.Grads[name]
				if !ok {
					dst = make([][]float64, len(w.yields))
					for dj := range dst {
						dst[dj] = make([]float64, len(w.sources))
					}
					table.Grads[name] = dst
				}
				dst[j][k] = w.sources[k].Weight * g
			}
		}
	}
	return table, nil
}

// SignalMeans returns one dataset's per-source expected signal counts scaled
// to a total injected signal strength ns: mean_k = ns * a_jk / a.
func (t *WeightTable) SignalMeans(dataset int, ns float64) ([]float64, error) {
	if dataset < 0 || dataset >= len(t.AJK) {
		return nil, fmt.Errorf("dataset index %d out of range [0,%d)", dataset, len(t.AJK))
	}
	total := 0.0
	for _, row := range t.AJK {
		for _, a := range row {
			total += a
		}
	}
	means := make([]float64, len(t.AJK[dataset]))
	if total == 0 {
		return means, nil
	}
	for k, a := range t.AJK[dataset] {
		means[k] = ns * a / total
	}
	return means, nil
}

// DatasetFactors returns the per-dataset signal weight factors
// f_j = sum_k a_jk / sum_jk a_jk and their gradients by the quotient rule.
func (t *WeightTable) DatasetFactors() ([]float64, map[string][]float64) {
	nDatasets := len(t.AJK)
	aj := make([]float64, nDatasets)
	a := 0.0
	for j, row := range t.AJK {
		for _, v := range row {
			aj[j] += v
		}
		a += aj[j]
	}

	fj := make([]float64, nDatasets)
	if a > 0 {
		for j := range fj {
			fj[j] = aj[j] / a
		}
	}

	grads := make(map[string][]float64, len(t.Grads))
	for name, gradTable := range t.Grads {
		ajGrad := make([]float64, nDatasets)
		aGrad := 0.0
		for j, row := range gradTable {
			for _, v := range row {
				ajGrad[j] += v
			}
			aGrad += ajGrad[j]
		}
		fjGrad := make([]float64, nDatasets)
		if a > 0 {
			for j := range fjGrad {
				fjGrad[j] = (ajGrad[j]*a - aj[j]*aGrad) / (a * a)
			}
		}
		grads[name] = fjGrad
	}
	return fj, grads
}
