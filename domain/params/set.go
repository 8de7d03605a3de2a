package params

import (
	"fmt"

	"gollh/domain/core"
)

// Set is an ordered collection of unique-named parameters, partitioned into
// fixed and fit subsets. The fit-parameter order is fixed at construction and
// stable for the lifetime of an analysis run, so optimizer vector indices stay
// meaningful across iterations.
type Set struct {
	parameters []Parameter
	byName     map[string]int
	fitOrder   []int // indices into parameters, in declaration order
}

// NewSet builds a parameter set. Duplicate names and inverted fit bounds are
// configuration errors.
func NewSet(parameters ...Parameter) (*Set, error) {
	s := &Set{
		byName: make(map[string]int, len(parameters)),
	}
	for _, p := range parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: empty name", core.ErrDuplicateParameter)
		}
		if _, exists := s.byName[p.Name]; exists {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateParameter, p.Name)
		}
		if p.Kind == Fit {
			if p.Min > p.Max {
				return nil, fmt.Errorf("%w: %q has min %g > max %g",
					core.ErrInvalidBounds, p.Name, p.Min, p.Max)
			}
			if p.Initial < p.Min || p.Initial > p.Max {
				return nil, fmt.Errorf("%w: %q initial %g outside [%g,%g]",
					core.ErrInvalidBounds, p.Name, p.Initial, p.Min, p.Max)
			}
		}
		s.byName[p.Name] = len(s.parameters)
		s.parameters = append(s.parameters, p)
		if p.Kind == Fit {
			s.fitOrder = append(s.fitOrder, len(s.parameters)-1)
		}
	}
	return s, nil
}

// Len returns the total number of parameters.
func (s *Set) Len() int {
	return len(s.parameters)
}

// FitCount returns the number of fit parameters, the length of the flat
// vector an optimizer operates on.
func (s *Set) FitCount() int {
	return len(s.fitOrder)
}

// ByName looks up a parameter by name.
func (s *Set) ByName(name string) (Parameter, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Parameter{}, false
	}
	return s.parameters[idx], true
}

// FitIndex returns the position of a fit parameter within the optimizer
// vector, or -1 when the name is unknown or fixed.
func (s *Set) FitIndex(name string) int {
	idx, ok := s.byName[name]
	if !ok || s.parameters[idx].Kind != Fit {
		return -1
	}
	for fi, pi := range s.fitOrder {
		if pi == idx {
			return fi
		}
	}
	return -1
}

// FitNames returns the fit-parameter names in vector order.
func (s *Set) FitNames() []string {
	names := make([]string, len(s.fitOrder))
	for i, pi := range s.fitOrder {
		names[i] = s.parameters[pi].Name
	}
	return names
}

// FitInitials returns the initial fit values in vector order, the starting
// point handed to an optimizer.
func (s *Set) FitInitials() []float64 {
	values := make([]float64, len(s.fitOrder))
	for i, pi := range s.fitOrder {
		values[i] = s.parameters[pi].Initial
	}
	return values
}

// FitBounds returns the lower and upper bounds in vector order.
func (s *Set) FitBounds() (lower, upper []float64) {
	lower = make([]float64, len(s.fitOrder))
	upper = make([]float64, len(s.fitOrder))
	for i, pi := range s.fitOrder {
		lower[i] = s.parameters[pi].Min
		upper[i] = s.parameters[pi].Max
	}
	return lower, upper
}

// Parameters returns a copy of all parameters in declaration order.
func (s *Set) Parameters() []Parameter {
	out := make([]Parameter, len(s.parameters))
	copy(out, s.parameters)
	return out
}
