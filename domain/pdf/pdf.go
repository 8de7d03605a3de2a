package pdf

import (
	"math"

	"gollh/domain/events"
	"gollh/domain/params"
)

// Result holds per-event probability densities and, optionally, the partial
// derivative of each density with respect to the fit parameters the evaluator
// depends on, keyed by local parameter name. Gradients are required by
// gradient-based optimizers and evaluated at the same parameter point.
type Result struct {
	Densities []float64
	Grads     map[string][]float64
}

// Evaluator turns a source's local parameter record plus selected events into
// per-event probability densities. Implementations must never return negative
// or non-finite densities: a domain value outside the modeled support yields
// density 0, not an error, so a test statistic degrades gracefully instead of
// aborting a trial.
type Evaluator interface {
	Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error)
}

// ClampDensity normalizes a raw density to the numeric policy: non-finite and
// negative values become 0.
func ClampDensity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func newResult(n int) Result {
	return Result{
		Densities: make([]float64, n),
		Grads:     make(map[string][]float64),
	}
}

func (r Result) gradFor(name string) []float64 {
	g, ok := r.Grads[name]
	if !ok {
		g = make([]float64, len(r.Densities))
		r.Grads[name] = g
	}
	return g
}
