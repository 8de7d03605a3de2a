package pdf

import (
	"fmt"
	"sort"

	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
)

// Product combines independent PDF factors (e.g. spatial x energy x time)
// into one evaluator obeying the same contract. Gradients follow the product
// rule across factors.
func Product(factors ...Evaluator) Evaluator {
	return &productPDF{factors: factors}
}

type productPDF struct {
	factors []Evaluator
}

func (p *productPDF) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	n := len(indices)
	out := newResult(n)
	if len(p.factors) == 0 {
		return out, nil
	}

	partial := make([]Result, len(p.factors))
	for fi, factor := range p.factors {
		res, err := factor.Evaluate(src, local, sample, indices)
		if err != nil {
			return Result{}, fmt.Errorf("product factor %d: %w", fi, err)
		}
		if len(res.Densities) != n {
			return Result{}, fmt.Errorf("%w: factor %d returned %d densities for %d events",
				core.ErrLengthMismatch, fi, len(res.Densities), n)
		}
		partial[fi] = res
	}

	for i := 0; i < n; i++ {
		prod := 1.0
		for fi := range partial {
			prod *= partial[fi].Densities[i]
		}
		out.Densities[i] = ClampDensity(prod)
	}

	// d(prod)/dtheta = sum over factors f of grad_f * prod of the others.
	for fi := range partial {
		for name, grad := range partial[fi].Grads {
			dst := out.gradFor(name)
			for i := 0; i < n; i++ {
				rest := 1.0
				for gi := range partial {
					if gi != fi {
						rest *= partial[gi].Densities[i]
					}
				}
				dst[i] += grad[i] * rest
			}
		}
	}
	return out, nil
}

// Sum combines evaluators as a fixed-coefficient mixture. Coefficients are
// constants of the composition, not fit parameters.
func Sum(coefficients []float64, terms ...Evaluator) (Evaluator, error) {
	if len(coefficients) != len(terms) {
		return nil, fmt.Errorf("%w: %d coefficients for %d terms",
			core.ErrLengthMismatch, len(coefficients), len(terms))
	}
	return &sumPDF{coefficients: coefficients, terms: terms}, nil
}

type sumPDF struct {
	coefficients []float64
	terms        []Evaluator
}

func (s *sumPDF) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	n := len(indices)
	out := newResult(n)
	for ti, term := range s.terms {
		res, err := term.Evaluate(src, local, sample, indices)
		if err != nil {
			return Result{}, fmt.Errorf("sum term %d: %w", ti, err)
		}
		c := s.coefficients[ti]
		for i := 0; i < n; i++ {
			out.Densities[i] += c * res.Densities[i]
		}
		for name, grad := range res.Grads {
			dst := out.gradFor(name)
			for i := 0; i < n; i++ {
				dst[i] += c * grad[i]
			}
		}
	}
	for i := range out.Densities {
		out.Densities[i] = ClampDensity(out.Densities[i])
	}
	return out, nil
}

// GridSet is a parameter-indexed evaluator set: one evaluator per grid point
// of a single local parameter (e.g. energy PDFs tabulated per spectral
// index). Evaluation interpolates linearly between the two bracketing grid
// evaluators and reports the derivative with respect to the grid parameter.
type GridSet struct {
	param string
	grid  []float64
	evals []Evaluator
}

// NewGridSet builds a grid-indexed evaluator set. The grid must be strictly
// ascending and carry one evaluator per point.
func NewGridSet(param string, grid []float64, evals []Evaluator) (*GridSet, error) {
	if len(grid) == 0 || len(grid) != len(evals) {
		return nil, fmt.Errorf("%w: %d grid points for %d evaluators",
			core.ErrLengthMismatch, len(grid), len(evals))
	}
	if !sort.Float64sAreSorted(grid) {
		return nil, fmt.Errorf("grid for %q must be ascending", param)
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] == grid[i-1] {
			return nil, fmt.Errorf("grid for %q has duplicate point %g", param, grid[i])
		}
	}
	return &GridSet{param: param, grid: grid, evals: evals}, nil
}

func (g *GridSet) Evaluate(src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	v, err := local.Get(g.param)
	if err != nil {
		return Result{}, err
	}

	// Clamp to the grid range; outside it the set degrades to the edge
	// evaluator with zero slope.
	if v <= g.grid[0] {
		return g.edge(0, src, local, sample, indices)
	}
	last := len(g.grid) - 1
	if v >= g.grid[last] {
		return g.edge(last, src, local, sample, indices)
	}

	hi := sort.SearchFloat64s(g.grid, v)
	if g.grid[hi] == v {
		return g.edge(hi, src, local, sample, indices)
	}
	lo := hi - 1

	resLo, err := g.evals[lo].Evaluate(src, local, sample, indices)
	if err != nil {
		return Result{}, fmt.Errorf("grid point %d: %w", lo, err)
	}
	resHi, err := g.evals[hi].Evaluate(src, local, sample, indices)
	if err != nil {
		return Result{}, fmt.Errorf("grid point %d: %w", hi, err)
	}

	span := g.grid[hi] - g.grid[lo]
	t := (v - g.grid[lo]) / span

	n := len(indices)
	out := newResult(n)
	slope := out.gradFor(g.param)
	for i := 0; i < n; i++ {
		out.Densities[i] = ClampDensity((1-t)*resLo.Densities[i] + t*resHi.Densities[i])
		slope[i] = (resHi.Densities[i] - resLo.Densities[i]) / span
	}
	for name := range resLo.Grads {
		if name == g.param {
			continue
		}
		dst := out.gradFor(name)
		gLo := resLo.Grads[name]
		gHi, ok := resHi.Grads[name]
		if !ok {
			gHi = make([]float64, n)
		}
		for i := 0; i < n; i++ {
			dst[i] = (1-t)*gLo[i] + t*gHi[i]
		}
	}
	return out, nil
}

func (g *GridSet) edge(idx, src int, local params.LocalParams, sample *events.Sample, indices []int) (Result, error) {
	res, err := g.evals[idx].Evaluate(src, local, sample, indices)
	if err != nil {
		return Result{}, fmt.Errorf("grid point %d: %w", idx, err)
	}
	if res.Grads == nil {
		res.Grads = make(map[string][]float64)
	}
	if _, ok := res.Grads[g.param]; !ok {
		res.Grads[g.param] = make([]float64, len(res.Densities))
	}
	return res, nil
}
