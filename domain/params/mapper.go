package params

import (
	"fmt"

	"gollh/domain/core"
)

// LocalParams is the per-source record of parameter name to concrete value a
// PDF evaluator consumes. It is a plain value record, rebuilt on every
// mapping call, never shared between sources.
type LocalParams map[string]float64

// Get returns a local parameter value or an error naming the missing binding.
func (lp LocalParams) Get(name string) (float64, error) {
	v, ok := lp[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q absent from local record", core.ErrUnresolvedParameter, name)
	}
	return v, nil
}

// SourceMapping declares, for one source, which local parameter names its
// PDFs require and how each resolves against the global parameter set.
type SourceMapping struct {
	// Requires lists every local parameter name the source's PDFs consume.
	Requires []string

	// Overrides maps a local name to a specific global parameter name,
	// taking precedence over broadcasting.
	Overrides map[string]string

	// Literals pins a local name to a fixed literal value with no global
	// parameter behind it.
	Literals map[string]float64
}

// binding is one precompiled resolution: either a position in the fit vector
// or a constant value.
type binding struct {
	name     string
	fitIndex int // -1 for constants
	value    float64
}

// ModelMapper maps the optimizer's flat fit-parameter vector onto one
// structured local-parameter record per source.
//
// All resolution happens at construction: a required local name with no
// override, no literal, and no broadcasting global of the same name fails
// immediately, so misconfiguration is caught before any trial runs.
type ModelMapper struct {
	set      *Set
	bindings [][]binding // [source][required param]
}

// NewModelMapper compiles the per-source resolution plans against the global
// parameter set.
func NewModelMapper(set *Set, sources []SourceMapping) (*ModelMapper, error) {
	if set == nil {
		return nil, fmt.Errorf("%w: nil parameter set", core.ErrUnresolvedParameter)
	}
	m := &ModelMapper{
		set:      set,
		bindings: make([][]binding, len(sources)),
	}
	for srcIdx, sm := range sources {
		plan := make([]binding, 0, len(sm.Requires))
		for _, local := range sm.Requires {
			b, err := m.resolve(srcIdx, local, sm)
			if err != nil {
				return nil, err
			}
			plan = append(plan, b)
		}
		m.bindings[srcIdx] = plan
	}
	return m, nil
}

// resolve applies the binding precedence for one (source, local name) pair:
// explicit override, then fixed literal, then a broadcasting global parameter
// of the same name.
func (m *ModelMapper) resolve(srcIdx int, local string, sm SourceMapping) (binding, error) {
	if global, ok := sm.Overrides[local]; ok {
		p, found := m.set.ByName(global)
		if !found {
			return binding{}, fmt.Errorf("%w: source %d maps %q to unknown global %q",
				core.ErrUnresolvedParameter, srcIdx, local, global)
		}
		return m.bind(local, p), nil
	}
	if value, ok := sm.Literals[local]; ok {
		return binding{name: local, fitIndex: -1, value: value}, nil
	}
	if p, found := m.set.ByName(local); found && p.BroadcastAll {
		return m.bind(local, p), nil
	}
	return binding{}, core.NewUnresolvedParameterError(srcIdx, local)
}

func (m *ModelMapper) bind(local string, p Parameter) binding {
	if p.Kind == Fit {
		return binding{name: local, fitIndex: m.set.FitIndex(p.Name)}
	}
	return binding{name: local, fitIndex: -1, value: p.Value}
}

// NumSources returns the number of sources the mapper was configured for.
func (m *ModelMapper) NumSources() int {
	return len(m.bindings)
}

// Set returns the global parameter set the mapper was compiled against.
func (m *ModelMapper) Set() *Set {
	return m.set
}

// ToLocal maps a flat fit-parameter vector onto one local record per source.
// Fixed parameters and literals come from the compiled plan; fit values come
// from the vector in the set's declared fit order. The call is pure: it never
// mutates the parameter set and yields identical records for identical input.
func (m *ModelMapper) ToLocal(globals []float64) ([]LocalParams, error) {
	if len(globals) != m.set.FitCount() {
		return nil, core.NewShapeMismatchError(len(globals), m.set.FitCount())
	}
	locals := make([]LocalParams, len(m.bindings))
	for srcIdx, plan := range m.bindings {
		record := make(LocalParams, len(plan))
		for _, b := range plan {
			if b.fitIndex >= 0 {
				record[b.name] = globals[b.fitIndex]
			} else {
				record[b.name] = b.value
			}
		}
		locals[srcIdx] = record
	}
	return locals, nil
}

// FitDependencies reports, per source, which local names track a fit
// parameter, keyed by local name with the fit-vector index as value. PDF
// gradient bookkeeping uses this to know which partials an optimizer needs.
func (m *ModelMapper) FitDependencies(srcIdx int) map[string]int {
	if srcIdx < 0 || srcIdx >= len(m.bindings) {
		return nil
	}
	deps := make(map[string]int)
	for _, b := range m.bindings[srcIdx] {
		if b.fitIndex >= 0 {
			deps[b.name] = b.fitIndex
		}
	}
	return deps
}
